package backend

import (
	"context"
	"net/http"

	"github.com/erp/storefront/internal/domain/audit"
	"github.com/erp/storefront/internal/domain/report"
	"github.com/erp/storefront/internal/domain/shared"
)

// SalesReport returns the sales summary for a window.
func (c *Client) SalesReport(ctx context.Context, q report.Query) (*report.SalesReport, error) {
	var r report.SalesReport
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/reports/sales", Query: q.Params()}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// InventoryReport returns the inventory summary for a window.
func (c *Client) InventoryReport(ctx context.Context, q report.Query) (*report.InventoryReport, error) {
	var r report.InventoryReport
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/reports/inventory", Query: q.Params()}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// PurchasingReport returns the purchasing summary for a window.
func (c *Client) PurchasingReport(ctx context.Context, q report.Query) (*report.PurchasingReport, error) {
	var r report.PurchasingReport
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/reports/purchasing", Query: q.Params()}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListAuditLogs returns a page of audit entries.
func (c *Client) ListAuditLogs(ctx context.Context, filter audit.Filter) (shared.Page[audit.Log], error) {
	return GetPage[audit.Log](ctx, c, "/api/audit-logs", filter.Query())
}

// Ping checks that the backend answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: "/health", Anonymous: true}, nil)
}
