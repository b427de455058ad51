package storefront

import (
	"context"

	"github.com/erp/storefront/internal/domain/catalog"
	"github.com/erp/storefront/internal/domain/order"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockCatalogBackend is a mock implementation of CatalogBackend
type MockCatalogBackend struct {
	mock.Mock
}

func (m *MockCatalogBackend) ListProducts(ctx context.Context, filter catalog.ProductFilter) (shared.Page[catalog.Product], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Page[catalog.Product]), args.Error(1)
}

func (m *MockCatalogBackend) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockCatalogBackend) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Category), args.Error(1)
}

// MockCheckoutBackend is a mock implementation of CheckoutBackend
type MockCheckoutBackend struct {
	mock.Mock
}

func (m *MockCheckoutBackend) PreviewCheckout(ctx context.Context, req order.CheckoutRequest) (*order.CheckoutPreview, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.CheckoutPreview), args.Error(1)
}

func (m *MockCheckoutBackend) PlaceOrder(ctx context.Context, req order.CheckoutRequest, idempotencyKey string) (*order.Order, error) {
	args := m.Called(ctx, req, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

// MockAccountBackend is a mock implementation of AccountBackend
type MockAccountBackend struct {
	mock.Mock
}

func (m *MockAccountBackend) CustomerOrders(ctx context.Context, params shared.ListParams) (shared.Page[order.Order], error) {
	args := m.Called(ctx, params)
	return args.Get(0).(shared.Page[order.Order]), args.Error(1)
}
