package repository

import (
	"context"

	"esim-service/internal/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	// CompareAndSetStatus atomically moves the order from expected to next.
	// False means another invocation already owns the order.
	CompareAndSetStatus(ctx context.Context, id string, expected, next domain.OrderStatus) (bool, error)
	SetResult(ctx context.Context, id string, status domain.OrderStatus, resellerOrderID, esimCode, qrPayload string) error
	SetFailure(ctx context.Context, id, reason string) error
}
