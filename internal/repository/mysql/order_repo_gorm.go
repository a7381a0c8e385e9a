package mysql

import (
	"context"
	"errors"
	"log"

	"esim-service/internal/domain"
	"esim-service/internal/repository"

	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		log.Printf("order create error: %v", err)
		return err
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("order FindByID error: %v", err)
		return nil, err
	}
	return &o, nil
}

// CompareAndSetStatus is the fulfillment lock: a single conditional UPDATE
// whose affected-row count decides ownership.
func (r *orderRepo) CompareAndSetStatus(ctx context.Context, id string, expected, next domain.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, expected).
		Update("status", next)
	if res.Error != nil {
		log.Printf("order CompareAndSetStatus error: %v", res.Error)
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *orderRepo) SetResult(ctx context.Context, id string, status domain.OrderStatus, resellerOrderID, esimCode, qrPayload string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":            status,
			"reseller_order_id": resellerOrderID,
			"esim_code":         esimCode,
			"qr_payload":        qrPayload,
		})
	if res.Error != nil {
		log.Printf("order SetResult error: %v", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("order not found for result update")
	}
	return nil
}

func (r *orderRepo) SetFailure(ctx context.Context, id, reason string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":            domain.StatusFailed,
			"fulfillment_error": reason,
		})
	if res.Error != nil {
		log.Printf("order SetFailure error: %v", res.Error)
		return res.Error
	}
	return nil
}
