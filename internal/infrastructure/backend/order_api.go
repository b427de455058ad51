package backend

import (
	"context"
	"net/http"

	"github.com/erp/storefront/internal/domain/order"
	"github.com/erp/storefront/internal/domain/shared"
)

// PreviewCheckout prices a prospective order without committing it.
func (c *Client) PreviewCheckout(ctx context.Context, req order.CheckoutRequest) (*order.CheckoutPreview, error) {
	var preview order.CheckoutPreview
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/checkout/preview", Body: req}, &preview)
	if err != nil {
		return nil, err
	}
	return &preview, nil
}

// PlaceOrder commits an order. idempotencyKey lets the backend deduplicate
// retried submissions.
func (c *Client) PlaceOrder(ctx context.Context, req order.CheckoutRequest, idempotencyKey string) (*order.Order, error) {
	var o order.Order
	err := c.Do(ctx, Request{
		Method:         http.MethodPost,
		Path:           "/api/orders",
		Body:           req,
		IdempotencyKey: idempotencyKey,
	}, &o)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrders returns a page of orders.
func (c *Client) ListOrders(ctx context.Context, filter order.Filter) (shared.Page[order.Order], error) {
	return GetPage[order.Order](ctx, c, "/api/orders", filter.Query())
}

// GetOrder returns one order.
func (c *Client) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/orders/" + PathID(id)}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ChangeOrderStatus asks the backend to transition an order.
func (c *Client) ChangeOrderStatus(ctx context.Context, id string, change order.StatusChange) (*order.Order, error) {
	var o order.Order
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/orders/" + PathID(id) + "/status",
		Body:   change,
	}, &o)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
