package mysql

import (
	"context"
	"errors"
	"log"

	"esim-service/internal/domain"
	"esim-service/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type packageRepo struct {
	db *gorm.DB
}

func NewPackageRepository(db *gorm.DB) repository.PackageRepository {
	return &packageRepo{db: db}
}

func (r *packageRepo) FindByID(ctx context.Context, id string) (*domain.Package, error) {
	var p domain.Package
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("package FindByID error: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *packageRepo) FindBySlug(ctx context.Context, slug string) (*domain.Package, error) {
	var p domain.Package
	if err := r.db.WithContext(ctx).First(&p, "reseller_slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("package FindBySlug error: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *packageRepo) Upsert(ctx context.Context, pkg *domain.Package) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(pkg).Error
	if err != nil {
		log.Printf("package upsert error: %v", err)
	}
	return err
}

func (r *packageRepo) ListVisible(ctx context.Context) ([]domain.Package, error) {
	var out []domain.Package
	err := r.db.WithContext(ctx).
		Where("visible = ? AND show_on_frontend = ?", true, true).
		Order("homepage_order ASC, data_amount_gb ASC").
		Find(&out).Error
	if err != nil {
		log.Printf("package ListVisible error: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *packageRepo) ListAll(ctx context.Context) ([]domain.Package, error) {
	var out []domain.Package
	if err := r.db.WithContext(ctx).Find(&out).Error; err != nil {
		log.Printf("package ListAll error: %v", err)
		return nil, err
	}
	return out, nil
}
