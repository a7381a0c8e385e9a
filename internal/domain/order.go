package domain

import "time"

type OrderStatus string

const (
	StatusPending           OrderStatus = "pending"
	StatusFulfilling        OrderStatus = "fulfilling"
	StatusFulfilled         OrderStatus = "fulfilled"
	StatusFallbackFulfilled OrderStatus = "fallback_fulfilled"
	StatusFailed            OrderStatus = "failed"
)

// IsTerminal reports whether no further automatic transition may occur.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusFulfilled || s == StatusFallbackFulfilled || s == StatusFailed
}

type Order struct {
	ID               string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	PackageID        string      `json:"packageId" gorm:"type:varchar(36);not null;index"`
	CustomerEmail    string      `json:"customerEmail" gorm:"not null"`
	CustomerName     string      `json:"customerName"`
	Amount           float64     `json:"amount" gorm:"not null"`
	Status           OrderStatus `json:"status" gorm:"type:enum('pending','fulfilling','fulfilled','fallback_fulfilled','failed');default:'pending';index"`
	ResellerOrderID  string      `json:"resellerOrderId,omitempty"`
	EsimCode         string      `json:"esimCode,omitempty"`
	QRPayload        string      `json:"qrPayload,omitempty" gorm:"type:text"`
	FulfillmentError string      `json:"fulfillmentError,omitempty"`
	CreatedAt        time.Time   `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt        time.Time   `json:"updatedAt" gorm:"autoUpdateTime"`
}
