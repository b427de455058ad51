package storefront

import (
	"context"
	"testing"

	"github.com/erp/storefront/internal/domain/order"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountService_Orders(t *testing.T) {
	t.Run("defaults to newest first", func(t *testing.T) {
		b := new(MockAccountBackend)
		svc := NewAccountService(b)
		b.On("CustomerOrders", mock.Anything, shared.ListParams{Page: 1, Limit: 20, SortBy: "created_at", SortDir: "desc"}).
			Return(shared.NewPage([]order.Order{{ID: "o1"}}, 1, 1, 20), nil)

		page, err := svc.Orders(context.Background(), shared.ListParams{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		b.AssertExpectations(t)
	})

	t.Run("keeps an explicit sort", func(t *testing.T) {
		b := new(MockAccountBackend)
		svc := NewAccountService(b)
		b.On("CustomerOrders", mock.Anything, shared.ListParams{Page: 2, Limit: 100, SortBy: "total_amount", SortDir: "asc"}).
			Return(shared.NewPage([]order.Order{}, 0, 2, 100), nil)

		_, err := svc.Orders(context.Background(), shared.ListParams{Page: 2, Limit: 500, SortBy: "total_amount", SortDir: "ASC"})
		require.NoError(t, err)
		b.AssertExpectations(t)
	})
}
