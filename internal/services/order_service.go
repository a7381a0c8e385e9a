package services

import (
	"context"
	"errors"

	"esim-service/internal/domain"
	"esim-service/internal/repository"

	"github.com/google/uuid"
)

var ErrPackageNotFound = errors.New("package not found")

// OrderService creates the pending order records that the payment webhook
// later fulfills. It never touches fulfillment state.
type OrderService struct {
	orders   repository.OrderRepository
	packages repository.PackageRepository
}

func NewOrderService(orders repository.OrderRepository, packages repository.PackageRepository) *OrderService {
	return &OrderService{orders: orders, packages: packages}
}

func (s *OrderService) CreateOrder(ctx context.Context, packageID, email, name string) (*domain.Order, error) {
	pkg, err := s.packages.FindByID(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}

	order := &domain.Order{
		ID:            uuid.NewString(),
		PackageID:     packageID,
		CustomerEmail: email,
		CustomerName:  name,
		Amount:        pkg.SalePrice,
		Status:        domain.StatusPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}
