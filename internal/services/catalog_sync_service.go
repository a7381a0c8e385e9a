package services

import (
	"context"
	"log"

	"esim-service/internal/catalog"
	"esim-service/internal/domain"
	"esim-service/internal/fallback"
	"esim-service/internal/repository"
	"esim-service/internal/slug"
)

// SyncReport summarizes one reconciliation pass over the local catalog.
type SyncReport struct {
	Total       int `json:"total"`
	Verified    int `json:"verified"`
	Substituted int `json:"substituted"`
	Unresolved  int `json:"unresolved"`
}

// CatalogSyncService reconciles local packages against the upstream catalog:
// every package ends up with a reseller slug that is known to exist upstream,
// or is reported unresolved.
type CatalogSyncService struct {
	packages repository.PackageRepository
	snapshot catalog.SnapshotInterface
	resolver fallback.ResolverInterface
}

func NewCatalogSyncService(packages repository.PackageRepository, snapshot catalog.SnapshotInterface, resolver fallback.ResolverInterface) *CatalogSyncService {
	return &CatalogSyncService{packages: packages, snapshot: snapshot, resolver: resolver}
}

func (s *CatalogSyncService) Sync(ctx context.Context) (*SyncReport, error) {
	snap, err := s.snapshot.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	pkgs, err := s.packages.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{Total: len(pkgs)}
	for i := range pkgs {
		pkg := pkgs[i]

		derived, err := slug.Derive(&pkg)
		if err != nil {
			log.Printf("sync: package %s (%s): %v", pkg.ID, pkg.Name, err)
			report.Unresolved++
			continue
		}

		switch {
		case slug.Validate(derived, snap):
			pkg.ResellerSlug = derived
			report.Verified++
		default:
			alt, rerr := s.resolver.Resolve(&pkg, snap)
			if rerr != nil {
				log.Printf("sync: package %s (%s): no upstream match for %s", pkg.ID, pkg.Name, derived)
				report.Unresolved++
				continue
			}
			pkg.ResellerSlug = alt
			report.Substituted++
		}

		// Unlimited packages sort after every finite tier in a display
		// group.
		if pkg.Unlimited() {
			pkg.HomepageOrder = domain.HomepageOrderUnlimited
		}

		if err := s.packages.Upsert(ctx, &pkg); err != nil {
			return report, err
		}
	}

	log.Printf("catalog sync: %d packages, %d verified, %d substituted, %d unresolved",
		report.Total, report.Verified, report.Substituted, report.Unresolved)
	return report, nil
}

func (s *CatalogSyncService) ListVisiblePackages(ctx context.Context) ([]domain.Package, error) {
	return s.packages.ListVisible(ctx)
}
