package backend

import (
	"context"
	"net/http"

	"github.com/erp/storefront/internal/domain/purchasing"
	"github.com/erp/storefront/internal/domain/shared"
)

const purchaseOrdersPath = "/api/purchase-orders"

// ListPurchaseOrders returns a page of purchase orders.
func (c *Client) ListPurchaseOrders(ctx context.Context, filter purchasing.Filter) (shared.Page[purchasing.PurchaseOrder], error) {
	return GetPage[purchasing.PurchaseOrder](ctx, c, purchaseOrdersPath, filter.Query())
}

// GetPurchaseOrder returns one purchase order.
func (c *Client) GetPurchaseOrder(ctx context.Context, id string) (*purchasing.PurchaseOrder, error) {
	return c.purchaseOrderCall(ctx, http.MethodGet, purchaseOrdersPath+"/"+PathID(id), nil)
}

// CreatePurchaseOrder creates a draft purchase order.
func (c *Client) CreatePurchaseOrder(ctx context.Context, req purchasing.CreateRequest) (*purchasing.PurchaseOrder, error) {
	return c.purchaseOrderCall(ctx, http.MethodPost, purchaseOrdersPath, req)
}

// SubmitPurchaseOrder confirms a draft purchase order.
func (c *Client) SubmitPurchaseOrder(ctx context.Context, id string) (*purchasing.PurchaseOrder, error) {
	return c.purchaseOrderCall(ctx, http.MethodPost, purchaseOrdersPath+"/"+PathID(id)+"/submit", nil)
}

// ReceivePurchaseOrder records goods received against a purchase order.
func (c *Client) ReceivePurchaseOrder(ctx context.Context, id string, req purchasing.ReceiveRequest) (*purchasing.PurchaseOrder, error) {
	return c.purchaseOrderCall(ctx, http.MethodPost, purchaseOrdersPath+"/"+PathID(id)+"/receive", req)
}

// CancelPurchaseOrder cancels a purchase order.
func (c *Client) CancelPurchaseOrder(ctx context.Context, id string, req purchasing.CancelRequest) (*purchasing.PurchaseOrder, error) {
	return c.purchaseOrderCall(ctx, http.MethodPost, purchaseOrdersPath+"/"+PathID(id)+"/cancel", req)
}

func (c *Client) purchaseOrderCall(ctx context.Context, method, path string, body any) (*purchasing.PurchaseOrder, error) {
	var po purchasing.PurchaseOrder
	if err := c.Do(ctx, Request{Method: method, Path: path, Body: body}, &po); err != nil {
		return nil, err
	}
	return &po, nil
}

// ListSuppliers returns a page of suppliers.
func (c *Client) ListSuppliers(ctx context.Context, params shared.ListParams) (shared.Page[purchasing.Supplier], error) {
	return GetPage[purchasing.Supplier](ctx, c, "/api/suppliers", params.Query())
}

// GetSupplier returns one supplier.
func (c *Client) GetSupplier(ctx context.Context, id string) (*purchasing.Supplier, error) {
	var s purchasing.Supplier
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/suppliers/" + PathID(id)}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSupplier creates a supplier.
func (c *Client) CreateSupplier(ctx context.Context, s purchasing.Supplier) (*purchasing.Supplier, error) {
	var out purchasing.Supplier
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/suppliers", Body: s}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSupplier replaces a supplier's editable fields.
func (c *Client) UpdateSupplier(ctx context.Context, id string, s purchasing.Supplier) (*purchasing.Supplier, error) {
	var out purchasing.Supplier
	if err := c.Do(ctx, Request{Method: http.MethodPut, Path: "/api/suppliers/" + PathID(id), Body: s}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
