package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"esim-service/internal/domain"
	"esim-service/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testOrderID   = "order-1"
	testPackageID = "pkg-1"
)

type fulfillmentMocks struct {
	orders    *mocks.MockOrderRepository
	packages  *mocks.MockPackageRepository
	client    *mocks.MockResellerClient
	snapshot  *mocks.MockSnapshot
	resolver  *mocks.MockResolver
	publisher *mocks.MockPublisher
	sink      *mocks.MockSink
}

func newFulfillmentMocks() *fulfillmentMocks {
	return &fulfillmentMocks{
		orders:    new(mocks.MockOrderRepository),
		packages:  new(mocks.MockPackageRepository),
		client:    new(mocks.MockResellerClient),
		snapshot:  new(mocks.MockSnapshot),
		resolver:  new(mocks.MockResolver),
		publisher: new(mocks.MockPublisher),
		sink:      new(mocks.MockSink),
	}
}

func (m *fulfillmentMocks) service() *FulfillmentService {
	s := NewFulfillmentService(m.orders, m.packages, m.client, m.snapshot, m.resolver, m.publisher, m.sink)
	s.SetRetryDelay(time.Millisecond)
	return s
}

func (m *fulfillmentMocks) assertAll(t *testing.T) {
	// Event publishing happens on a goroutine.
	time.Sleep(50 * time.Millisecond)
	m.orders.AssertExpectations(t)
	m.packages.AssertExpectations(t)
	m.client.AssertExpectations(t)
	m.snapshot.AssertExpectations(t)
	m.resolver.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
	m.sink.AssertExpectations(t)
}

func pendingOrder() *domain.Order {
	return &domain.Order{
		ID:            testOrderID,
		PackageID:     testPackageID,
		CustomerEmail: "buyer@example.com",
		Amount:        9.9,
		Status:        domain.StatusPending,
	}
}

func greecePackage() *domain.Package {
	return &domain.Package{
		ID:           testPackageID,
		Name:         "Greece 1GB",
		CountryName:  "Greece",
		CountryCode:  "GR",
		DataAmountGB: 1,
		ValidityDays: 30,
	}
}

const greeceSlug = "esim-greece-30days-1gb-all"

func greeceCatalog() []domain.ResellerPackage {
	return []domain.ResellerPackage{
		{Slug: greeceSlug, Country: "Greece", DataAmountGB: 1, ValidityDays: 30},
		{Slug: "esim-greece-30days-3gb-all", Country: "Greece", DataAmountGB: 3, ValidityDays: 30},
	}
}

func TestOnPaymentConfirmedPrimarySuccess(t *testing.T) {
	m := newFulfillmentMocks()

	m.orders.On("FindByID", mock.Anything, testOrderID).Return(pendingOrder(), nil)
	m.orders.On("CompareAndSetStatus", mock.Anything, testOrderID, domain.StatusPending, domain.StatusFulfilling).Return(true, nil)
	m.packages.On("FindByID", mock.Anything, testPackageID).Return(greecePackage(), nil)
	m.snapshot.On("Get", mock.Anything).Return(greeceCatalog(), nil)
	m.client.On("CreateOrder", mock.Anything, greeceSlug, 1).Return(&domain.EsimOrder{OrderID: "ro-1", EsimID: "esim-1"}, nil).Once()
	m.client.On("ApplyEsim", mock.Anything, "esim-1").Return(&domain.EsimProfile{LPACode: "LPA:1$x$esim-1", ActivationCode: "esim-1"}, nil)
	m.orders.On("SetResult", mock.Anything, testOrderID, domain.StatusFulfilled, "ro-1", "esim-1", "LPA:1$x$esim-1").Return(nil)
	m.publisher.On("Publish", mock.Anything, "order.fulfilled", mock.Anything).Return(nil).Maybe()
	m.sink.On("SendEsimDelivery", mock.Anything, "buyer@example.com", mock.AnythingOfType("domain.EsimDelivery")).Return(nil)

	err := m.service().OnPaymentConfirmed(context.Background(), testOrderID)
	require.NoError(t, err)

	m.assertAll(t)
	m.resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestOnPaymentConfirmedRejectionEndsFallbackFulfilled(t *testing.T) {
	m := newFulfillmentMocks()
	altSlug := "esim-greece-30days-3gb-all"

	m.orders.On("FindByID", mock.Anything, testOrderID).Return(pendingOrder(), nil)
	m.orders.On("CompareAndSetStatus", mock.Anything, testOrderID, domain.StatusPending, domain.StatusFulfilling).Return(true, nil)
	m.packages.On("FindByID", mock.Anything, testPackageID).Return(greecePackage(), nil)
	m.snapshot.On("Get", mock.Anything).Return(greeceCatalog(), nil)
	m.client.On("CreateOrder", mock.Anything, greeceSlug, 1).
		Return(nil, &domain.RejectionError{Slug: greeceSlug, StatusCode: 404, Message: "package not found"}).Once()
	m.resolver.On("Resolve", mock.Anything, mock.Anything).Return(altSlug, nil).Once()
	m.client.On("CreateOrder", mock.Anything, altSlug, 1).Return(&domain.EsimOrder{OrderID: "ro-2", EsimID: "esim-2"}, nil).Once()
	m.client.On("ApplyEsim", mock.Anything, "esim-2").Return(&domain.EsimProfile{LPACode: "LPA:1$x$esim-2", ActivationCode: "esim-2"}, nil)
	m.orders.On("SetResult", mock.Anything, testOrderID, domain.StatusFallbackFulfilled, "ro-2", "esim-2", "LPA:1$x$esim-2").Return(nil)
	m.publisher.On("Publish", mock.Anything, "order.fulfilled", mock.Anything).Return(nil).Maybe()
	m.sink.On("SendEsimDelivery", mock.Anything, "buyer@example.com", mock.Anything).Return(nil)

	err := m.service().OnPaymentConfirmed(context.Background(), testOrderID)
	require.NoError(t, err)

	m.assertAll(t)
}

func TestOnPaymentConfirmedSlugAbsentFromCatalogSkipsDoomedAttempt(t *testing.T) {
	m := newFulfillmentMocks()
	altSlug := "esim-europe-30days-3gb-all"
	catalog := []domain.ResellerPackage{
		{Slug: altSlug, Country: "Europe", DataAmountGB: 3, ValidityDays: 30},
	}

	m.orders.On("FindByID", mock.Anything, testOrderID).Return(pendingOrder(), nil)
	m.orders.On("CompareAndSetStatus", mock.Anything, testOrderID, domain.StatusPending, domain.StatusFulfilling).Return(true, nil)
	m.packages.On("FindByID", mock.Anything, testPackageID).Return(greecePackage(), nil)
	m.snapshot.On("Get", mock.Anything).Return(catalog, nil)
	m.resolver.On("Resolve", mock.Anything, catalog).Return(altSlug, nil).Once()
	m.client.On("CreateOrder", mock.Anything, altSlug, 1).Return(&domain.EsimOrder{OrderID: "ro-3", EsimID: "esim-3"}, nil).Once()
	m.client.On("ApplyEsim", mock.Anything, "esim-3").Return(&domain.EsimProfile{LPACode: "lpa", ActivationCode: "esim-3"}, nil)
	m.orders.On("SetResult", mock.Anything, testOrderID, domain.StatusFallbackFulfilled, "ro-3", "esim-3", "lpa").Return(nil)
	m.publisher.On("Publish", mock.Anything, "order.fulfilled", mock.Anything).Return(nil).Maybe()
	m.sink.On("SendEsimDelivery", mock.Anything, "buyer@example.com", mock.Anything).Return(nil)

	err := m.service().OnPaymentConfirmed(context.Background(), testOrderID)
	require.NoError(t, err)

	m.assertAll(t)
	// The primary slug never reached the reseller.
	m.client.AssertNotCalled(t, "CreateOrder", mock.Anything, greeceSlug, 1)
}

func TestOnPaymentConfirmedAuthErrorFailsWithoutFallback(t *testing.T) {
	m := newFulfillmentMocks()

	m.orders.On("FindByID", mock.Anything, testOrderID).Return(pendingOrder(), nil)
	m.orders.On("CompareAndSetStatus", mock.Anything, testOrderID, domain.StatusPending, domain.StatusFulfilling).Return(true, nil)
	m.packages.On("FindByID", mock.Anything, testPackageID).Return(greecePackage(), nil)
	m.snapshot.On("Get", mock.Anything).Return(greeceCatalog(), nil)
	m.client.On("CreateOrder", mock.Anything, greeceSlug, 1).Return(nil, &domain.AuthError{StatusCode: 401}).Once()
	m.orders.On("SetFailure", mock.Anything, testOrderID, mock.AnythingOfType("string")).Return(nil)
	m.publisher.On("Publish", mock.Anything, "order.failed", mock.Anything).Return(nil).Maybe()

	err := m.service().OnPaymentConfirmed(context.Background(), testOrderID)
	require.NoError(t, err)

	m.assertAll(t)
	m.resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	m.sink.AssertNotCalled(t, "SendEsimDelivery", mock.Anything, mock.Anything, mock.Anything)
	m.client.AssertNumberOfCalls(t, "CreateOrder", 1)
}

func TestOnPaymentConfirmedTransientRetriesThenFails(t *testing.T) {
	m := newFulfillmentMocks()

	m.orders.On("FindByID", mock.Anything, testOrderID).Return(pendingOrder(), nil)
	m.orders.On("CompareAndSetStatus", mock.Anything, testOrderID, domain.StatusPending, domain.StatusFulfilling).Return(true, nil)
	m.packages.On("FindByID", mock.Anything, testPackageID).Return(greecePackage(), nil)
	m.snapshot.On("Get", mock.Anything).Return(greeceCatalog(), nil)
	m.client.On("CreateOrder", mock.Anything, greeceSlug, 1).
		Return(nil, &domain.TransientError{Err: errors.New("gateway timeout")}).Times(2)
	m.orders.On("SetFailure", mock.Anything, testOrderID, mock.AnythingOfType("string")).Return(nil)
	m.publisher.On("Publish", mock.Anything, "order.failed", mock.Anything).Return(nil).Maybe()

	err := m.service().OnPaymentConfirmed(context.Background(), testOrderID)
	require.NoError(t, err)

	m.assertAll(t)
	m.resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestOnPaymentConfirmedNoFallbackAvailableFails(t *testing.T) {
	m := newFulfillmentMocks()

	m.orders.On("FindByID", mock.Anything, testOrderID).Return(pendingOrder(), nil)
	m.orders.On("CompareAndSetStatus", mock.Anything, testOrderID, domain.StatusPending, domain.StatusFulfilling).Return(true, nil)
	m.packages.On("FindByID", mock.Anything, testPackageID).Return(greecePackage(), nil)
	m.snapshot.On("Get", mock.Anything).Return(greeceCatalog(), nil)
	m.client.On("CreateOrder", mock.Anything, greeceSlug, 1).
		Return(nil, &domain.RejectionError{Slug: greeceSlug, StatusCode: 404, Message: "package not found"}).Once()
	m.resolver.On("Resolve", mock.Anything, mock.Anything).Return("", domain.ErrNoFallbackAvailable).Once()
	m.orders.On("SetFailure", mock.Anything, testOrderID, mock.AnythingOfType("string")).Return(nil)
	m.publisher.On("Publish", mock.Anything, "order.failed", mock.Anything).Return(nil).Maybe()

	err := m.service().OnPaymentConfirmed(context.Background(), testOrderID)
	require.NoError(t, err)

	m.assertAll(t)
	m.client.AssertNumberOfCalls(t, "CreateOrder", 1)
}

func TestOnPaymentConfirmedDuplicateTriggerNoOps(t *testing.T) {
	tests := []struct {
		name   string
		status domain.OrderStatus
	}{
		{"already fulfilling", domain.StatusFulfilling},
		{"already fulfilled", domain.StatusFulfilled},
		{"already fallback fulfilled", domain.StatusFallbackFulfilled},
		{"already failed", domain.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newFulfillmentMocks()
			order := pendingOrder()
			order.Status = tt.status
			m.orders.On("FindByID", mock.Anything, testOrderID).Return(order, nil)

			err := m.service().OnPaymentConfirmed(context.Background(), testOrderID)
			require.NoError(t, err)

			m.assertAll(t)
			m.client.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
			m.orders.AssertNotCalled(t, "CompareAndSetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestOnPaymentConfirmedLostClaimNoOps(t *testing.T) {
	m := newFulfillmentMocks()

	m.orders.On("FindByID", mock.Anything, testOrderID).Return(pendingOrder(), nil)
	m.orders.On("CompareAndSetStatus", mock.Anything, testOrderID, domain.StatusPending, domain.StatusFulfilling).Return(false, nil)

	err := m.service().OnPaymentConfirmed(context.Background(), testOrderID)
	require.NoError(t, err)

	m.assertAll(t)
	m.client.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
	m.packages.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

// Two concurrent triggers for the same order: the conditional update admits
// exactly one of them, so exactly one upstream order is created.
func TestOnPaymentConfirmedConcurrentTriggersCreateOneUpstreamOrder(t *testing.T) {
	m := newFulfillmentMocks()

	m.orders.On("FindByID", mock.Anything, testOrderID).Return(pendingOrder(), nil)
	// Model the database CAS: the first caller wins, the second sees zero rows.
	m.orders.On("CompareAndSetStatus", mock.Anything, testOrderID, domain.StatusPending, domain.StatusFulfilling).
		Return(true, nil).Once()
	m.orders.On("CompareAndSetStatus", mock.Anything, testOrderID, domain.StatusPending, domain.StatusFulfilling).
		Return(false, nil).Once()
	m.orders.On("SetResult", mock.Anything, testOrderID, domain.StatusFulfilled, "ro-1", "esim-1", "lpa").Return(nil)

	m.packages.On("FindByID", mock.Anything, testPackageID).Return(greecePackage(), nil)
	m.snapshot.On("Get", mock.Anything).Return(greeceCatalog(), nil)
	m.client.On("CreateOrder", mock.Anything, greeceSlug, 1).Return(&domain.EsimOrder{OrderID: "ro-1", EsimID: "esim-1"}, nil)
	m.client.On("ApplyEsim", mock.Anything, "esim-1").Return(&domain.EsimProfile{LPACode: "lpa", ActivationCode: "esim-1"}, nil)
	m.publisher.On("Publish", mock.Anything, "order.fulfilled", mock.Anything).Return(nil).Maybe()
	m.sink.On("SendEsimDelivery", mock.Anything, "buyer@example.com", mock.Anything).Return(nil)

	svc := m.service()
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.OnPaymentConfirmed(context.Background(), testOrderID))
		}()
	}
	wg.Wait()
	time.Sleep(50 * time.Millisecond)

	m.client.AssertNumberOfCalls(t, "CreateOrder", 1)
}

func TestOnPaymentConfirmedUnknownOrder(t *testing.T) {
	m := newFulfillmentMocks()
	m.orders.On("FindByID", mock.Anything, "missing").Return(nil, nil)

	err := m.service().OnPaymentConfirmed(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOnPaymentConfirmedProfileFetchFailureSynthesizesPayload(t *testing.T) {
	m := newFulfillmentMocks()

	m.orders.On("FindByID", mock.Anything, testOrderID).Return(pendingOrder(), nil)
	m.orders.On("CompareAndSetStatus", mock.Anything, testOrderID, domain.StatusPending, domain.StatusFulfilling).Return(true, nil)
	m.packages.On("FindByID", mock.Anything, testPackageID).Return(greecePackage(), nil)
	m.snapshot.On("Get", mock.Anything).Return(greeceCatalog(), nil)
	m.client.On("CreateOrder", mock.Anything, greeceSlug, 1).Return(&domain.EsimOrder{OrderID: "ro-1", EsimID: "esim-1"}, nil)
	m.client.On("ApplyEsim", mock.Anything, "esim-1").Return(nil, &domain.TransientError{Err: errors.New("not ready")})
	m.orders.On("SetResult", mock.Anything, testOrderID, domain.StatusFulfilled, "ro-1", "esim-1", "LPA:1$esimfly.al$esim-1$$Greece 1GB").Return(nil)
	m.publisher.On("Publish", mock.Anything, "order.fulfilled", mock.Anything).Return(nil).Maybe()
	m.sink.On("SendEsimDelivery", mock.Anything, "buyer@example.com", mock.Anything).Return(nil)

	err := m.service().OnPaymentConfirmed(context.Background(), testOrderID)
	require.NoError(t, err)

	m.assertAll(t)
}
