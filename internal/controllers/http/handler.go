package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"esim-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

type Handler struct {
	fulfillment *services.FulfillmentService
	orders      *services.OrderService
	catalog     *services.CatalogSyncService
	rdb         *redis.Client
}

func NewHandler(f *services.FulfillmentService, o *services.OrderService, c *services.CatalogSyncService, rdb *redis.Client) *Handler {
	return &Handler{fulfillment: f, orders: o, catalog: c, rdb: rdb}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/orders", h.CreateOrder)
	r.GET("/orders/:id", h.GetOrder)
	r.GET("/packages", h.ListPackages)
	r.POST("/webhooks/payment", h.PaymentConfirmed)
	r.POST("/admin/catalog/sync", h.SyncCatalog)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	order, err := h.orders.CreateOrder(ctx, req.PackageID, req.CustomerEmail, req.CustomerName)
	if err != nil {
		if errors.Is(err, services.ErrPackageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, CreateOrderResponse{ID: order.ID, Status: string(order.Status)})
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrderByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

// PaymentConfirmed is the trigger boundary for the payment webhook layer.
// Duplicate deliveries for an already-claimed order still get a 200 so the
// sender stops redelivering.
func (h *Handler) PaymentConfirmed(c *gin.Context) {
	var req PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.fulfillment.OnPaymentConfirmed(c.Request.Context(), req.OrderID); err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *Handler) SyncCatalog(c *gin.Context) {
	report, err := h.catalog.Sync(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) ListPackages(c *gin.Context) {
	const cacheKey = "packages:visible"

	ctx := c.Request.Context()
	if h.rdb != nil {
		b, err := h.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var cached []map[string]any
			_ = json.Unmarshal([]byte(b), &cached)
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	pkgs, err := h.catalog.ListVisiblePackages(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if h.rdb != nil {
		data, _ := json.Marshal(pkgs)
		h.rdb.Set(ctx, cacheKey, data, 10*time.Second)
	}

	c.JSON(http.StatusOK, pkgs)
}
