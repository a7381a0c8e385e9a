package domain

import "time"

// HomepageOrderUnlimited is the reserved ordering slot for unlimited-data
// packages so they always sort after every finite tier in a display group.
const HomepageOrderUnlimited = 998

// Package is a locally curated sellable eSIM package. DataAmountGB == 0 is
// the "unlimited" sentinel.
type Package struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name           string    `json:"name" gorm:"not null"`
	CountryName    string    `json:"countryName" gorm:"not null;index"`
	CountryCode    string    `json:"countryCode" gorm:"not null"`
	DataAmountGB   float64   `json:"dataAmountGb" gorm:"column:data_amount_gb;not null"`
	ValidityDays   int       `json:"validityDays" gorm:"not null"`
	PlanType       string    `json:"planType"`
	SalePrice      float64   `json:"salePrice" gorm:"not null"`
	BasePrice      float64   `json:"basePrice" gorm:"not null"`
	Visible        bool      `json:"visible" gorm:"default:true"`
	ShowOnFrontend bool      `json:"showOnFrontend" gorm:"default:true"`
	HomepageOrder  int       `json:"homepageOrder"`
	ResellerSlug   string    `json:"resellerSlug,omitempty" gorm:"index"`
	CreatedAt      time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (p *Package) Unlimited() bool {
	return p.DataAmountGB == 0
}
