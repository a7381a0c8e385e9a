package domain

// ResellerPackage is one entry of the upstream catalog snapshot. Read-only;
// only the slug is ever copied into a local Package.
type ResellerPackage struct {
	Slug         string  `json:"slug"`
	Country      string  `json:"country"`
	CountryCode  string  `json:"countryCode"`
	Region       string  `json:"region"`
	DataAmountGB float64 `json:"dataAmountGb"`
	ValidityDays int     `json:"validityDays"`
	Price        float64 `json:"price"`
	PlanType     string  `json:"planType"`
}

func (p *ResellerPackage) Unlimited() bool {
	return p.DataAmountGB == 0
}

// EsimOrder is the result of a successful upstream order creation.
type EsimOrder struct {
	OrderID string
	EsimID  string
}

// EsimProfile is the activation payload fetched after order creation.
type EsimProfile struct {
	LPACode        string `json:"lpaCode"`
	QRCodeURL      string `json:"qrCodeUrl"`
	ActivationCode string `json:"activationCode"`
}

// EsimDelivery is everything the confirmation email needs.
type EsimDelivery struct {
	ActivationCode string
	QRPayload      string
	PackageName    string
	DataAmountGB   float64
	ValidityDays   int
}
