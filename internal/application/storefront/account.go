package storefront

import (
	"context"

	"github.com/erp/storefront/internal/domain/order"
	"github.com/erp/storefront/internal/domain/shared"
)

// AccountBackend is the subset of the backend API for customer self-service
type AccountBackend interface {
	CustomerOrders(ctx context.Context, params shared.ListParams) (shared.Page[order.Order], error)
}

// AccountService serves the signed-in customer's own data
type AccountService struct {
	backend AccountBackend
}

// NewAccountService creates an account service
func NewAccountService(b AccountBackend) *AccountService {
	return &AccountService{backend: b}
}

// Orders lists the customer's orders, newest first unless a sort is given
func (s *AccountService) Orders(ctx context.Context, params shared.ListParams) (shared.Page[order.Order], error) {
	params = params.Normalize()
	if params.SortBy == "" {
		params.SortBy = "created_at"
		params.SortDir = "desc"
	}
	return s.backend.CustomerOrders(ctx, params)
}
