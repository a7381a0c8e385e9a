package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"esim-service/internal/catalog"
	"esim-service/internal/domain"
	"esim-service/internal/fallback"
	"esim-service/internal/infra/mailer"
	rabbit "esim-service/internal/infra/rabbitmq"
	"esim-service/internal/infra/reseller"
	"esim-service/internal/repository"
	"esim-service/internal/slug"
)

var ErrOrderNotFound = errors.New("order not found")

// Each slug path gets at most this many upstream attempts. The bound exists
// because the reseller offers no idempotency key: a lost response may still
// have created an order upstream.
const maxUpstreamAttempts = 2

const lpaProvider = "esimfly.al"

// FulfillmentService drives a paid order from pending to a terminal state.
// It is the sole writer of order status and eSIM payload fields.
type FulfillmentService struct {
	orders     repository.OrderRepository
	packages   repository.PackageRepository
	client     reseller.ClientInterface
	snapshot   catalog.SnapshotInterface
	resolver   fallback.ResolverInterface
	publisher  rabbit.PublisherInterface
	sink       mailer.SinkInterface
	retryDelay time.Duration
}

func NewFulfillmentService(
	orders repository.OrderRepository,
	packages repository.PackageRepository,
	client reseller.ClientInterface,
	snapshot catalog.SnapshotInterface,
	resolver fallback.ResolverInterface,
	publisher rabbit.PublisherInterface,
	sink mailer.SinkInterface,
) *FulfillmentService {
	return &FulfillmentService{
		orders:     orders,
		packages:   packages,
		client:     client,
		snapshot:   snapshot,
		resolver:   resolver,
		publisher:  publisher,
		sink:       sink,
		retryDelay: 2 * time.Second,
	}
}

// SetRetryDelay overrides the transient-retry backoff base.
func (s *FulfillmentService) SetRetryDelay(d time.Duration) {
	s.retryDelay = d
}

// OnPaymentConfirmed is the trigger boundary. It is safe to call more than
// once for the same order: duplicates observe a non-pending status and no-op,
// so at most one upstream order is ever created per local order.
func (s *FulfillmentService) OnPaymentConfirmed(ctx context.Context, orderID string) error {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.Status != domain.StatusPending {
		log.Printf("order %s already %s, ignoring duplicate trigger", orderID, order.Status)
		return nil
	}

	// The conditional update is the fulfillment lock. Losing it means a
	// concurrent invocation owns the order; exit without side effects.
	won, err := s.orders.CompareAndSetStatus(ctx, orderID, domain.StatusPending, domain.StatusFulfilling)
	if err != nil {
		return err
	}
	if !won {
		log.Printf("order %s claimed by another invocation, ignoring", orderID)
		return nil
	}

	pkg, err := s.packages.FindByID(ctx, order.PackageID)
	if err != nil {
		return s.fail(ctx, order, fmt.Sprintf("load package: %v", err))
	}
	if pkg == nil {
		return s.fail(ctx, order, fmt.Sprintf("package %s not found", order.PackageID))
	}

	primary := pkg.ResellerSlug
	if primary == "" {
		primary, err = slug.Derive(pkg)
		if err != nil {
			return s.fail(ctx, order, err.Error())
		}
	}

	// The snapshot is advisory here: when available, a slug missing from it
	// skips the doomed upstream attempt and goes straight to fallback.
	snap, snapErr := s.snapshot.Get(ctx)
	if snapErr != nil {
		log.Printf("order %s: catalog snapshot unavailable, skipping pre-validation: %v", orderID, snapErr)
	}
	needFallback := snapErr == nil && !slug.Validate(primary, snap)

	var result *domain.EsimOrder
	usedSlug := primary
	status := domain.StatusFulfilled

	if !needFallback {
		result, err = s.createWithRetry(ctx, primary)
		if err != nil {
			var rejection *domain.RejectionError
			if !errors.As(err, &rejection) {
				return s.fail(ctx, order, err.Error())
			}
			log.Printf("order %s: slug %s rejected upstream: %v", orderID, primary, err)
			needFallback = true
		}
	}

	if needFallback {
		if snap == nil {
			if snap, snapErr = s.snapshot.Get(ctx); snapErr != nil {
				return s.fail(ctx, order, fmt.Sprintf("catalog unavailable for fallback: %v", snapErr))
			}
		}
		alt, rerr := s.resolver.Resolve(pkg, snap)
		if rerr != nil {
			return s.fail(ctx, order, fmt.Sprintf("slug %s invalid and %v", primary, rerr))
		}
		usedSlug = alt
		status = domain.StatusFallbackFulfilled
		result, err = s.createWithRetry(ctx, alt)
		if err != nil {
			return s.fail(ctx, order, err.Error())
		}
	}

	esimCode, qrPayload := s.activationPayload(ctx, result.EsimID, pkg.Name)

	// The terminal state must be durable before anyone is notified: a
	// customer must never hold a QR code for an order not recorded as
	// fulfilled.
	if err := s.orders.SetResult(ctx, order.ID, status, result.OrderID, esimCode, qrPayload); err != nil {
		return err
	}

	go s.publishFulfilled(context.Background(), order, status, result.OrderID, usedSlug)

	delivery := domain.EsimDelivery{
		ActivationCode: esimCode,
		QRPayload:      qrPayload,
		PackageName:    pkg.Name,
		DataAmountGB:   pkg.DataAmountGB,
		ValidityDays:   pkg.ValidityDays,
	}
	if err := s.sink.SendEsimDelivery(ctx, order.CustomerEmail, delivery); err != nil {
		// Logged only: a fulfilled order never reverts because the email
		// failed.
		log.Printf("order %s: delivery email failed: %v", order.ID, err)
	}

	return nil
}

func (s *FulfillmentService) createWithRetry(ctx context.Context, packageSlug string) (*domain.EsimOrder, error) {
	var lastErr error
	for attempt := 1; attempt <= maxUpstreamAttempts; attempt++ {
		result, err := s.client.CreateOrder(ctx, packageSlug, 1)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var transient *domain.TransientError
		if !errors.As(err, &transient) {
			return nil, err
		}
		if attempt < maxUpstreamAttempts {
			log.Printf("transient error creating order for %s (attempt %d): %v", packageSlug, attempt, err)
			select {
			case <-time.After(s.retryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

// activationPayload fetches the real LPA profile; when the profile endpoint
// is unavailable the LPA string is synthesized locally so the customer still
// receives an installable payload.
func (s *FulfillmentService) activationPayload(ctx context.Context, esimID, packageName string) (string, string) {
	profile, err := s.client.ApplyEsim(ctx, esimID)
	if err != nil {
		log.Printf("esim %s: profile fetch failed, synthesizing LPA payload: %v", esimID, err)
		return esimID, fmt.Sprintf("LPA:1$%s$%s$$%s", lpaProvider, esimID, packageName)
	}
	code := profile.ActivationCode
	if code == "" {
		code = esimID
	}
	payload := profile.LPACode
	if payload == "" {
		payload = fmt.Sprintf("LPA:1$%s$%s$$%s", lpaProvider, esimID, packageName)
	}
	return code, payload
}

func (s *FulfillmentService) fail(ctx context.Context, order *domain.Order, reason string) error {
	log.Printf("order %s failed: %s", order.ID, reason)
	if err := s.orders.SetFailure(ctx, order.ID, reason); err != nil {
		return err
	}
	go func() {
		evt := domain.OrderFailedEvent{
			OrderID:   order.ID,
			PackageID: order.PackageID,
			Reason:    reason,
			FailedAt:  time.Now(),
		}
		if err := s.publisher.Publish(context.Background(), "order.failed", evt); err != nil {
			log.Printf("failed to publish order.failed for %s: %v", order.ID, err)
		}
	}()
	return nil
}

func (s *FulfillmentService) publishFulfilled(ctx context.Context, order *domain.Order, status domain.OrderStatus, resellerOrderID, usedSlug string) {
	evt := domain.OrderFulfilledEvent{
		OrderID:         order.ID,
		PackageID:       order.PackageID,
		Status:          status,
		ResellerOrderID: resellerOrderID,
		Slug:            usedSlug,
		Fallback:        status == domain.StatusFallbackFulfilled,
		FulfilledAt:     time.Now(),
	}
	if err := s.publisher.Publish(ctx, "order.fulfilled", evt); err != nil {
		log.Printf("failed to publish order.fulfilled for %s: %v", order.ID, err)
	}
}
