package repository

import (
	"context"

	"esim-service/internal/domain"
)

type PackageRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Package, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Package, error)
	Upsert(ctx context.Context, pkg *domain.Package) error
	ListVisible(ctx context.Context) ([]domain.Package, error)
	ListAll(ctx context.Context) ([]domain.Package, error)
}
