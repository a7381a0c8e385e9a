package mocks

import (
	"context"

	"esim-service/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) CompareAndSetStatus(ctx context.Context, id string, expected, next domain.OrderStatus) (bool, error) {
	args := m.Called(ctx, id, expected, next)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) SetResult(ctx context.Context, id string, status domain.OrderStatus, resellerOrderID, esimCode, qrPayload string) error {
	args := m.Called(ctx, id, status, resellerOrderID, esimCode, qrPayload)
	return args.Error(0)
}

func (m *MockOrderRepository) SetFailure(ctx context.Context, id, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

type MockPackageRepository struct {
	mock.Mock
}

func (m *MockPackageRepository) FindByID(ctx context.Context, id string) (*domain.Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Package), args.Error(1)
}

func (m *MockPackageRepository) FindBySlug(ctx context.Context, slug string) (*domain.Package, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Package), args.Error(1)
}

func (m *MockPackageRepository) Upsert(ctx context.Context, pkg *domain.Package) error {
	args := m.Called(ctx, pkg)
	return args.Error(0)
}

func (m *MockPackageRepository) ListVisible(ctx context.Context) ([]domain.Package, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Package), args.Error(1)
}

func (m *MockPackageRepository) ListAll(ctx context.Context) ([]domain.Package, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Package), args.Error(1)
}

type MockResellerClient struct {
	mock.Mock
}

func (m *MockResellerClient) CreateOrder(ctx context.Context, slug string, quantity int) (*domain.EsimOrder, error) {
	args := m.Called(ctx, slug, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EsimOrder), args.Error(1)
}

func (m *MockResellerClient) ListPackages(ctx context.Context) ([]domain.ResellerPackage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ResellerPackage), args.Error(1)
}

func (m *MockResellerClient) ApplyEsim(ctx context.Context, esimID string) (*domain.EsimProfile, error) {
	args := m.Called(ctx, esimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EsimProfile), args.Error(1)
}

type MockSnapshot struct {
	mock.Mock
}

func (m *MockSnapshot) Get(ctx context.Context) ([]domain.ResellerPackage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ResellerPackage), args.Error(1)
}

func (m *MockSnapshot) Refresh(ctx context.Context) ([]domain.ResellerPackage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ResellerPackage), args.Error(1)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(pkg *domain.Package, catalog []domain.ResellerPackage) (string, error) {
	args := m.Called(pkg, catalog)
	return args.String(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}

type MockSink struct {
	mock.Mock
}

func (m *MockSink) SendEsimDelivery(ctx context.Context, email string, d domain.EsimDelivery) error {
	args := m.Called(ctx, email, d)
	return args.Error(0)
}
