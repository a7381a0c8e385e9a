package catalog

import (
	"context"

	"esim-service/internal/domain"
)

type SnapshotInterface interface {
	Get(ctx context.Context) ([]domain.ResellerPackage, error)
	Refresh(ctx context.Context) ([]domain.ResellerPackage, error)
}

var _ SnapshotInterface = (*Snapshot)(nil)
