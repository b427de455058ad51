package backend

import (
	"context"
	"net/http"

	"github.com/erp/storefront/internal/domain/inventory"
	"github.com/erp/storefront/internal/domain/shared"
)

// ListStock returns a page of stock levels.
func (c *Client) ListStock(ctx context.Context, filter inventory.StockFilter) (shared.Page[inventory.StockLevel], error) {
	return GetPage[inventory.StockLevel](ctx, c, "/api/inventory/stock", filter.Query())
}

// ListMovements returns a page of stock ledger entries.
func (c *Client) ListMovements(ctx context.Context, filter inventory.StockFilter) (shared.Page[inventory.Movement], error) {
	return GetPage[inventory.Movement](ctx, c, "/api/inventory/movements", filter.Query())
}

// ListStockTransfers returns a page of stock transfers.
func (c *Client) ListStockTransfers(ctx context.Context, params shared.ListParams) (shared.Page[inventory.StockTransfer], error) {
	return GetPage[inventory.StockTransfer](ctx, c, "/api/stock-transfers", params.Query())
}

// CreateStockTransfer creates a draft transfer.
func (c *Client) CreateStockTransfer(ctx context.Context, req inventory.CreateTransferRequest) (*inventory.StockTransfer, error) {
	return c.transferCall(ctx, "/api/stock-transfers", req)
}

// ShipStockTransfer marks a transfer as shipped from its source warehouse.
func (c *Client) ShipStockTransfer(ctx context.Context, id string) (*inventory.StockTransfer, error) {
	return c.transferCall(ctx, "/api/stock-transfers/"+PathID(id)+"/ship", nil)
}

// ReceiveStockTransfer marks a transfer as received at its destination.
func (c *Client) ReceiveStockTransfer(ctx context.Context, id string) (*inventory.StockTransfer, error) {
	return c.transferCall(ctx, "/api/stock-transfers/"+PathID(id)+"/receive", nil)
}

func (c *Client) transferCall(ctx context.Context, path string, body any) (*inventory.StockTransfer, error) {
	var st inventory.StockTransfer
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// ListCycleCounts returns a page of cycle count sessions.
func (c *Client) ListCycleCounts(ctx context.Context, params shared.ListParams) (shared.Page[inventory.CycleCountSession], error) {
	return GetPage[inventory.CycleCountSession](ctx, c, "/api/cycle-counts", params.Query())
}

// GetCycleCount returns one session with its lines.
func (c *Client) GetCycleCount(ctx context.Context, id string) (*inventory.CycleCountSession, error) {
	return c.cycleCountCall(ctx, http.MethodGet, "/api/cycle-counts/"+PathID(id), nil)
}

// CreateCycleCount opens a session for a warehouse.
func (c *Client) CreateCycleCount(ctx context.Context, req inventory.CreateCycleCountRequest) (*inventory.CycleCountSession, error) {
	return c.cycleCountCall(ctx, http.MethodPost, "/api/cycle-counts", req)
}

// RecordCounts submits counted quantities.
func (c *Client) RecordCounts(ctx context.Context, id string, req inventory.RecordCountsRequest) (*inventory.CycleCountSession, error) {
	return c.cycleCountCall(ctx, http.MethodPost, "/api/cycle-counts/"+PathID(id)+"/counts", req)
}

// CompleteCycleCount closes a session and posts adjustments.
func (c *Client) CompleteCycleCount(ctx context.Context, id string) (*inventory.CycleCountSession, error) {
	return c.cycleCountCall(ctx, http.MethodPost, "/api/cycle-counts/"+PathID(id)+"/complete", nil)
}

func (c *Client) cycleCountCall(ctx context.Context, method, path string, body any) (*inventory.CycleCountSession, error) {
	var s inventory.CycleCountSession
	if err := c.Do(ctx, Request{Method: method, Path: path, Body: body}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
