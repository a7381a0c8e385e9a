package domain

import "time"

// OrderFulfilledEvent is published after a terminal success state is
// persisted.
type OrderFulfilledEvent struct {
	OrderID         string      `json:"orderId"`
	PackageID       string      `json:"packageId"`
	Status          OrderStatus `json:"status"`
	ResellerOrderID string      `json:"resellerOrderId"`
	Slug            string      `json:"slug"`
	Fallback        bool        `json:"fallback"`
	FulfilledAt     time.Time   `json:"fulfilledAt"`
}

// OrderFailedEvent is published when fulfillment reaches the failed state.
type OrderFailedEvent struct {
	OrderID   string    `json:"orderId"`
	PackageID string    `json:"packageId"`
	Reason    string    `json:"reason"`
	FailedAt  time.Time `json:"failedAt"`
}
