package fallback

import "esim-service/internal/domain"

type ResolverInterface interface {
	Resolve(pkg *domain.Package, catalog []domain.ResellerPackage) (string, error)
}

var _ ResolverInterface = (*Resolver)(nil)
