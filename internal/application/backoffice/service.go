// Package backoffice exposes the admin operations of the backend through the
// gateway. Reads pass straight through; writes are checked locally first and
// logged with the acting user.
package backoffice

import (
	"context"
	"time"

	"github.com/erp/storefront/internal/domain/audit"
	"github.com/erp/storefront/internal/domain/inventory"
	"github.com/erp/storefront/internal/domain/order"
	"github.com/erp/storefront/internal/domain/pricing"
	"github.com/erp/storefront/internal/domain/purchasing"
	"github.com/erp/storefront/internal/domain/report"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/erp/storefront/internal/infrastructure/backend"
	"github.com/erp/storefront/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// MaxReportSpan bounds the reporting window
const MaxReportSpan = 366 * 24 * time.Hour

var (
	ErrInvalidOrderStatus = shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	ErrInvalidReportRange = shared.NewDomainError("INVALID_DATE_RANGE", "Report range must be at most one year with from before to")
	ErrInvalidQuantity    = shared.NewDomainError("INVALID_QUANTITY", "Quantities must be positive")
	ErrInvalidPrice       = shared.NewDomainError("INVALID_PRICE", "Prices must not be negative")
	ErrInvalidValidity    = shared.NewDomainError("INVALID_DATE_RANGE", "valid_to must be after valid_from")
)

// Service wraps the backend client for backoffice handlers
type Service struct {
	client *backend.Client
}

// NewService creates a backoffice service
func NewService(client *backend.Client) *Service {
	return &Service{client: client}
}

func logMutation(ctx context.Context, action, resourceID string) {
	logger.L(ctx).Info("backoffice mutation",
		zap.String("action", action),
		zap.String("resource_id", resourceID),
	)
}

// Orders

// ListOrders returns a page of sales orders
func (s *Service) ListOrders(ctx context.Context, f order.Filter) (shared.Page[order.Order], error) {
	return s.client.ListOrders(ctx, f)
}

// GetOrder fetches one order with its lines
func (s *Service) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	return s.client.GetOrder(ctx, id)
}

// ChangeOrderStatus moves an order to a new status
func (s *Service) ChangeOrderStatus(ctx context.Context, id string, change order.StatusChange) (*order.Order, error) {
	if !change.Status.Valid() {
		return nil, ErrInvalidOrderStatus
	}
	o, err := s.client.ChangeOrderStatus(ctx, id, change)
	if err != nil {
		return nil, err
	}
	logMutation(ctx, "order.status."+string(change.Status), id)
	return o, nil
}

// Purchase orders

// ListPurchaseOrders returns a page of purchase orders
func (s *Service) ListPurchaseOrders(ctx context.Context, f purchasing.Filter) (shared.Page[purchasing.PurchaseOrder], error) {
	return s.client.ListPurchaseOrders(ctx, f)
}

// GetPurchaseOrder fetches one purchase order
func (s *Service) GetPurchaseOrder(ctx context.Context, id string) (*purchasing.PurchaseOrder, error) {
	return s.client.GetPurchaseOrder(ctx, id)
}

// CreatePurchaseOrder rejects non-positive quantities and negative costs before calling the backend
func (s *Service) CreatePurchaseOrder(ctx context.Context, req purchasing.CreateRequest) (*purchasing.PurchaseOrder, error) {
	for _, item := range req.Items {
		if !item.OrderedQuantity.IsPositive() {
			return nil, ErrInvalidQuantity
		}
		if item.UnitCost.IsNegative() {
			return nil, ErrInvalidPrice
		}
	}
	po, err := s.client.CreatePurchaseOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	logMutation(ctx, "purchase_order.create", po.ID)
	return po, nil
}

// SubmitPurchaseOrder moves a draft order to submitted
func (s *Service) SubmitPurchaseOrder(ctx context.Context, id string) (*purchasing.PurchaseOrder, error) {
	po, err := s.client.SubmitPurchaseOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	logMutation(ctx, "purchase_order.submit", id)
	return po, nil
}

// ReceivePurchaseOrder records received goods. Every line must carry a positive quantity.
func (s *Service) ReceivePurchaseOrder(ctx context.Context, id string, req purchasing.ReceiveRequest) (*purchasing.PurchaseOrder, error) {
	for _, line := range req.Items {
		if !line.Quantity.IsPositive() {
			return nil, ErrInvalidQuantity
		}
		if line.UnitCost != nil && line.UnitCost.IsNegative() {
			return nil, ErrInvalidPrice
		}
	}
	po, err := s.client.ReceivePurchaseOrder(ctx, id, req)
	if err != nil {
		return nil, err
	}
	logMutation(ctx, "purchase_order.receive", id)
	return po, nil
}

// CancelPurchaseOrder cancels with the given reason
func (s *Service) CancelPurchaseOrder(ctx context.Context, id string, req purchasing.CancelRequest) (*purchasing.PurchaseOrder, error) {
	po, err := s.client.CancelPurchaseOrder(ctx, id, req)
	if err != nil {
		return nil, err
	}
	logMutation(ctx, "purchase_order.cancel", id)
	return po, nil
}

// Suppliers

// ListSuppliers returns a page of suppliers
func (s *Service) ListSuppliers(ctx context.Context, p shared.ListParams) (shared.Page[purchasing.Supplier], error) {
	return s.client.ListSuppliers(ctx, p)
}

// GetSupplier fetches one supplier
func (s *Service) GetSupplier(ctx context.Context, id string) (*purchasing.Supplier, error) {
	return s.client.GetSupplier(ctx, id)
}

// CreateSupplier registers a supplier
func (s *Service) CreateSupplier(ctx context.Context, sup purchasing.Supplier) (*purchasing.Supplier, error) {
	out, err := s.client.CreateSupplier(ctx, sup)
	if err != nil {
		return nil, err
	}
	logMutation(ctx, "supplier.create", out.ID)
	return out, nil
}

// UpdateSupplier overwrites a supplier's details
func (s *Service) UpdateSupplier(ctx context.Context, id string, sup purchasing.Supplier) (*purchasing.Supplier, error) {
	out, err := s.client.UpdateSupplier(ctx, id, sup)
	if err != nil {
		return nil, err
	}
	logMutation(ctx, "supplier.update", id)
	return out, nil
}

// Price lists and promotions

// ListPriceLists returns a page of price lists
func (s *Service) ListPriceLists(ctx context.Context, p shared.ListParams) (shared.Page[pricing.PriceList], error) {
	return s.client.ListPriceLists(ctx, p)
}

// GetPriceList fetches one price list with its items
func (s *Service) GetPriceList(ctx context.Context, id string) (*pricing.PriceList, error) {
	return s.client.GetPriceList(ctx, id)
}

// CreatePriceList requires valid_to after valid_from when both are set
func (s *Service) CreatePriceList(ctx context.Context, req pricing.CreatePriceListRequest) (*pricing.PriceList, error) {
	if req.ValidFrom != nil && req.ValidTo != nil && !req.ValidTo.After(*req.ValidFrom) {
		return nil, ErrInvalidValidity
	}
	pl, err := s.client.CreatePriceList(ctx, req)
	if err != nil {
		return nil, err
	}
	logMutation(ctx, "price_list.create", pl.ID)
	return pl, nil
}

// ReplacePriceListItems swaps the whole item set of a price list
func (s *Service) ReplacePriceListItems(ctx context.Context, id string, req pricing.ReplaceItemsRequest) (*pricing.PriceList, error) {
	for _, item := range req.Items {
		if item.Price.IsNegative() {
			return nil, ErrInvalidPrice
		}
		if item.MinQuantity.IsNegative() {
			return nil, ErrInvalidQuantity
		}
	}
	pl, err := s.client.ReplacePriceListItems(ctx, id, req)
	if err != nil {
		return nil, err
	}
	logMutation(ctx, "price_list.replace_items", id)
	return pl, nil
}

// ListPromotions returns promotions matching the filter
func (s *Service) ListPromotions(ctx context.Context, f pricing.PromotionFilter) (shared.Page[pricing.Promotion], error) {
	return s.client.ListPromotions(ctx, f)
}

// CreatePromotion creates a promotion
func (s *Service) CreatePromotion(ctx context.Context, p pricing.Promotion) (*pricing.Promotion, error) {
	out, err := s.client.CreatePromotion(ctx, p)
	if err != nil {
		return nil, err
	}
	logMutation(ctx, "promotion.create", out.ID)
	return out, nil
}

// UpdatePromotion overwrites a promotion
func (s *Service) UpdatePromotion(ctx context.Context, id string, p pricing.Promotion) (*pricing.Promotion, error) {
	out, err := s.client.UpdatePromotion(ctx, id, p)
	if err != nil {
		return nil, err
	}
	logMutation(ctx, "promotion.update", id)
	return out, nil
}

// CalculateDiscount previews the discount for a basket. Nothing is persisted.
func (s *Service) CalculateDiscount(ctx context.Context, req pricing.DiscountRequest) (*pricing.DiscountResult, error) {
	return s.client.CalculateDiscount(ctx, req)
}

// Inventory

// ListStock returns stock levels per product and warehouse
func (s *Service) ListStock(ctx context.Context, f inventory.StockFilter) (shared.Page[inventory.StockLevel], error) {
	return s.client.ListStock(ctx, f)
}

// ListMovements returns the stock movement history
func (s *Service) ListMovements(ctx context.Context, f inventory.StockFilter) (shared.Page[inventory.Movement], error) {
	return s.client.ListMovements(ctx, f)
}

// ListStockTransfers returns a page of warehouse transfers
func (s *Service) ListStockTransfers(ctx context.Context, p shared.ListParams) (shared.Page[inventory.StockTransfer], error) {
	return s.client.ListStockTransfers(ctx, p)
}

// CreateStockTransfer requires a positive quantity on every line
func (s *Service) CreateStockTransfer(ctx context.Context, req inventory.CreateTransferRequest) (*inventory.StockTransfer, error) {
	for _, item := range req.Items {
		if !item.Quantity.IsPositive() {
			return nil, ErrInvalidQuantity
		}
	}
	tr, err := s.client.CreateStockTransfer(ctx, req)
	if err != nil {
		return nil, err
	}
	logMutation(ctx, "stock_transfer.create", tr.ID)
	return tr, nil
}

// ShipStockTransfer marks a transfer as shipped from its source warehouse
func (s *Service) ShipStockTransfer(ctx context.Context, id string) (*inventory.StockTransfer, error) {
	tr, err := s.client.ShipStockTransfer(ctx, id)
	if err != nil {
		return nil, err
	}
	logMutation(ctx, "stock_transfer.ship", id)
	return tr, nil
}

// ReceiveStockTransfer books a shipped transfer into the target warehouse
func (s *Service) ReceiveStockTransfer(ctx context.Context, id string) (*inventory.StockTransfer, error) {
	tr, err := s.client.ReceiveStockTransfer(ctx, id)
	if err != nil {
		return nil, err
	}
	logMutation(ctx, "stock_transfer.receive", id)
	return tr, nil
}

// ListCycleCounts returns a page of cycle count sessions
func (s *Service) ListCycleCounts(ctx context.Context, p shared.ListParams) (shared.Page[inventory.CycleCountSession], error) {
	return s.client.ListCycleCounts(ctx, p)
}

// GetCycleCount fetches one cycle count session
func (s *Service) GetCycleCount(ctx context.Context, id string) (*inventory.CycleCountSession, error) {
	return s.client.GetCycleCount(ctx, id)
}

// CreateCycleCount opens a cycle count session
func (s *Service) CreateCycleCount(ctx context.Context, req inventory.CreateCycleCountRequest) (*inventory.CycleCountSession, error) {
	cc, err := s.client.CreateCycleCount(ctx, req)
	if err != nil {
		return nil, err
	}
	logMutation(ctx, "cycle_count.create", cc.ID)
	return cc, nil
}

// RecordCounts submits counted quantities. Zero is a valid count; negative is not.
func (s *Service) RecordCounts(ctx context.Context, id string, req inventory.RecordCountsRequest) (*inventory.CycleCountSession, error) {
	for _, c := range req.Counts {
		if c.Quantity.IsNegative() {
			return nil, ErrInvalidQuantity
		}
	}
	cc, err := s.client.RecordCounts(ctx, id, req)
	if err != nil {
		return nil, err
	}
	logMutation(ctx, "cycle_count.record", id)
	return cc, nil
}

// CompleteCycleCount closes a session and posts its adjustments
func (s *Service) CompleteCycleCount(ctx context.Context, id string) (*inventory.CycleCountSession, error) {
	cc, err := s.client.CompleteCycleCount(ctx, id)
	if err != nil {
		return nil, err
	}
	logMutation(ctx, "cycle_count.complete", id)
	return cc, nil
}

// Reports and audit

// ValidateReportQuery checks the reporting window
func ValidateReportQuery(q report.Query) error {
	from, err := time.Parse(time.DateOnly, q.From)
	if err != nil {
		return ErrInvalidReportRange
	}
	to, err := time.Parse(time.DateOnly, q.To)
	if err != nil {
		return ErrInvalidReportRange
	}
	if to.Before(from) || to.Sub(from) > MaxReportSpan {
		return ErrInvalidReportRange
	}
	return nil
}

// SalesReport validates the window then fetches sales totals
func (s *Service) SalesReport(ctx context.Context, q report.Query) (*report.SalesReport, error) {
	if err := ValidateReportQuery(q); err != nil {
		return nil, err
	}
	return s.client.SalesReport(ctx, q)
}

// InventoryReport validates the window then fetches stock valuation
func (s *Service) InventoryReport(ctx context.Context, q report.Query) (*report.InventoryReport, error) {
	if err := ValidateReportQuery(q); err != nil {
		return nil, err
	}
	return s.client.InventoryReport(ctx, q)
}

// PurchasingReport validates the window then fetches purchasing totals
func (s *Service) PurchasingReport(ctx context.Context, q report.Query) (*report.PurchasingReport, error) {
	if err := ValidateReportQuery(q); err != nil {
		return nil, err
	}
	return s.client.PurchasingReport(ctx, q)
}

// ListAuditLogs returns audit entries matching the filter
func (s *Service) ListAuditLogs(ctx context.Context, f audit.Filter) (shared.Page[audit.Log], error) {
	return s.client.ListAuditLogs(ctx, f)
}
