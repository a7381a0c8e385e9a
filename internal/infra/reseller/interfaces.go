package reseller

import (
	"context"

	"esim-service/internal/domain"
)

type ClientInterface interface {
	CreateOrder(ctx context.Context, slug string, quantity int) (*domain.EsimOrder, error)
	ListPackages(ctx context.Context) ([]domain.ResellerPackage, error)
	ApplyEsim(ctx context.Context, esimID string) (*domain.EsimProfile, error)
}

var _ ClientInterface = (*Client)(nil)
