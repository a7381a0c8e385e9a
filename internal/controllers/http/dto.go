package http

type CreateOrderRequest struct {
	PackageID     string `json:"packageId" binding:"required"`
	CustomerEmail string `json:"customerEmail" binding:"required,email"`
	CustomerName  string `json:"customerName"`
}

type CreateOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type PaymentWebhookRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}
