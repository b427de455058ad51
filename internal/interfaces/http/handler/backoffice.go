package handler

import (
	"github.com/erp/storefront/internal/application/backoffice"
	"github.com/erp/storefront/internal/domain/audit"
	"github.com/erp/storefront/internal/domain/inventory"
	"github.com/erp/storefront/internal/domain/order"
	"github.com/erp/storefront/internal/domain/pricing"
	"github.com/erp/storefront/internal/domain/purchasing"
	"github.com/erp/storefront/internal/domain/report"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// BackofficeHandler exposes the admin console API. Every route sits behind
// the role guard, which puts the caller's token on the request context.
type BackofficeHandler struct {
	BaseHandler
	svc *backoffice.Service
}

// NewBackofficeHandler creates a new backoffice handler
func NewBackofficeHandler(svc *backoffice.Service) *BackofficeHandler {
	return &BackofficeHandler{svc: svc}
}

func (h *BackofficeHandler) one(c *gin.Context, v any, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, v)
}

func (h *BackofficeHandler) created(c *gin.Context, v any, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, v)
}

func page[T any](h *BackofficeHandler, c *gin.Context, p shared.Page[T], err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, p)
}

// Orders

func (h *BackofficeHandler) ListOrders(c *gin.Context) {
	var f order.Filter
	if !h.BindQuery(c, &f) {
		return
	}
	p, err := h.svc.ListOrders(c.Request.Context(), f)
	page(h, c, p, err)
}

func (h *BackofficeHandler) GetOrder(c *gin.Context) {
	o, err := h.svc.GetOrder(c.Request.Context(), c.Param("id"))
	h.one(c, o, err)
}

func (h *BackofficeHandler) ChangeOrderStatus(c *gin.Context) {
	var req order.StatusChange
	if !h.BindJSON(c, &req) {
		return
	}
	o, err := h.svc.ChangeOrderStatus(c.Request.Context(), c.Param("id"), req)
	h.one(c, o, err)
}

// Purchase orders

func (h *BackofficeHandler) ListPurchaseOrders(c *gin.Context) {
	var f purchasing.Filter
	if !h.BindQuery(c, &f) {
		return
	}
	p, err := h.svc.ListPurchaseOrders(c.Request.Context(), f)
	page(h, c, p, err)
}

func (h *BackofficeHandler) GetPurchaseOrder(c *gin.Context) {
	po, err := h.svc.GetPurchaseOrder(c.Request.Context(), c.Param("id"))
	h.one(c, po, err)
}

func (h *BackofficeHandler) CreatePurchaseOrder(c *gin.Context) {
	var req purchasing.CreateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	po, err := h.svc.CreatePurchaseOrder(c.Request.Context(), req)
	h.created(c, po, err)
}

func (h *BackofficeHandler) SubmitPurchaseOrder(c *gin.Context) {
	po, err := h.svc.SubmitPurchaseOrder(c.Request.Context(), c.Param("id"))
	h.one(c, po, err)
}

func (h *BackofficeHandler) ReceivePurchaseOrder(c *gin.Context) {
	var req purchasing.ReceiveRequest
	if !h.BindJSON(c, &req) {
		return
	}
	po, err := h.svc.ReceivePurchaseOrder(c.Request.Context(), c.Param("id"), req)
	h.one(c, po, err)
}

func (h *BackofficeHandler) CancelPurchaseOrder(c *gin.Context) {
	var req purchasing.CancelRequest
	if !h.BindJSON(c, &req) {
		return
	}
	po, err := h.svc.CancelPurchaseOrder(c.Request.Context(), c.Param("id"), req)
	h.one(c, po, err)
}

// Suppliers

func (h *BackofficeHandler) ListSuppliers(c *gin.Context) {
	var params shared.ListParams
	if !h.BindQuery(c, &params) {
		return
	}
	p, err := h.svc.ListSuppliers(c.Request.Context(), params)
	page(h, c, p, err)
}

func (h *BackofficeHandler) GetSupplier(c *gin.Context) {
	s, err := h.svc.GetSupplier(c.Request.Context(), c.Param("id"))
	h.one(c, s, err)
}

func (h *BackofficeHandler) CreateSupplier(c *gin.Context) {
	var req purchasing.Supplier
	if !h.BindJSON(c, &req) {
		return
	}
	s, err := h.svc.CreateSupplier(c.Request.Context(), req)
	h.created(c, s, err)
}

func (h *BackofficeHandler) UpdateSupplier(c *gin.Context) {
	var req purchasing.Supplier
	if !h.BindJSON(c, &req) {
		return
	}
	s, err := h.svc.UpdateSupplier(c.Request.Context(), c.Param("id"), req)
	h.one(c, s, err)
}

// Price lists and promotions

func (h *BackofficeHandler) ListPriceLists(c *gin.Context) {
	var params shared.ListParams
	if !h.BindQuery(c, &params) {
		return
	}
	p, err := h.svc.ListPriceLists(c.Request.Context(), params)
	page(h, c, p, err)
}

func (h *BackofficeHandler) GetPriceList(c *gin.Context) {
	pl, err := h.svc.GetPriceList(c.Request.Context(), c.Param("id"))
	h.one(c, pl, err)
}

func (h *BackofficeHandler) CreatePriceList(c *gin.Context) {
	var req pricing.CreatePriceListRequest
	if !h.BindJSON(c, &req) {
		return
	}
	pl, err := h.svc.CreatePriceList(c.Request.Context(), req)
	h.created(c, pl, err)
}

func (h *BackofficeHandler) ReplacePriceListItems(c *gin.Context) {
	var req pricing.ReplaceItemsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	pl, err := h.svc.ReplacePriceListItems(c.Request.Context(), c.Param("id"), req)
	h.one(c, pl, err)
}

func (h *BackofficeHandler) ListPromotions(c *gin.Context) {
	var f pricing.PromotionFilter
	if !h.BindQuery(c, &f) {
		return
	}
	p, err := h.svc.ListPromotions(c.Request.Context(), f)
	page(h, c, p, err)
}

func (h *BackofficeHandler) CreatePromotion(c *gin.Context) {
	var req pricing.Promotion
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.svc.CreatePromotion(c.Request.Context(), req)
	h.created(c, p, err)
}

func (h *BackofficeHandler) UpdatePromotion(c *gin.Context) {
	var req pricing.Promotion
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.svc.UpdatePromotion(c.Request.Context(), c.Param("id"), req)
	h.one(c, p, err)
}

func (h *BackofficeHandler) CalculateDiscount(c *gin.Context) {
	var req pricing.DiscountRequest
	if !h.BindJSON(c, &req) {
		return
	}
	r, err := h.svc.CalculateDiscount(c.Request.Context(), req)
	h.one(c, r, err)
}

// Inventory

func (h *BackofficeHandler) ListStock(c *gin.Context) {
	var f inventory.StockFilter
	if !h.BindQuery(c, &f) {
		return
	}
	p, err := h.svc.ListStock(c.Request.Context(), f)
	page(h, c, p, err)
}

func (h *BackofficeHandler) ListMovements(c *gin.Context) {
	var f inventory.StockFilter
	if !h.BindQuery(c, &f) {
		return
	}
	p, err := h.svc.ListMovements(c.Request.Context(), f)
	page(h, c, p, err)
}

func (h *BackofficeHandler) ListStockTransfers(c *gin.Context) {
	var params shared.ListParams
	if !h.BindQuery(c, &params) {
		return
	}
	p, err := h.svc.ListStockTransfers(c.Request.Context(), params)
	page(h, c, p, err)
}

func (h *BackofficeHandler) CreateStockTransfer(c *gin.Context) {
	var req inventory.CreateTransferRequest
	if !h.BindJSON(c, &req) {
		return
	}
	t, err := h.svc.CreateStockTransfer(c.Request.Context(), req)
	h.created(c, t, err)
}

func (h *BackofficeHandler) ShipStockTransfer(c *gin.Context) {
	t, err := h.svc.ShipStockTransfer(c.Request.Context(), c.Param("id"))
	h.one(c, t, err)
}

func (h *BackofficeHandler) ReceiveStockTransfer(c *gin.Context) {
	t, err := h.svc.ReceiveStockTransfer(c.Request.Context(), c.Param("id"))
	h.one(c, t, err)
}

func (h *BackofficeHandler) ListCycleCounts(c *gin.Context) {
	var params shared.ListParams
	if !h.BindQuery(c, &params) {
		return
	}
	p, err := h.svc.ListCycleCounts(c.Request.Context(), params)
	page(h, c, p, err)
}

func (h *BackofficeHandler) GetCycleCount(c *gin.Context) {
	s, err := h.svc.GetCycleCount(c.Request.Context(), c.Param("id"))
	h.one(c, s, err)
}

func (h *BackofficeHandler) CreateCycleCount(c *gin.Context) {
	var req inventory.CreateCycleCountRequest
	if !h.BindJSON(c, &req) {
		return
	}
	s, err := h.svc.CreateCycleCount(c.Request.Context(), req)
	h.created(c, s, err)
}

func (h *BackofficeHandler) RecordCounts(c *gin.Context) {
	var req inventory.RecordCountsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	s, err := h.svc.RecordCounts(c.Request.Context(), c.Param("id"), req)
	h.one(c, s, err)
}

func (h *BackofficeHandler) CompleteCycleCount(c *gin.Context) {
	s, err := h.svc.CompleteCycleCount(c.Request.Context(), c.Param("id"))
	h.one(c, s, err)
}

// Reports and audit

func (h *BackofficeHandler) SalesReport(c *gin.Context) {
	var q report.Query
	if !h.BindQuery(c, &q) {
		return
	}
	r, err := h.svc.SalesReport(c.Request.Context(), q)
	h.one(c, r, err)
}

func (h *BackofficeHandler) InventoryReport(c *gin.Context) {
	var q report.Query
	if !h.BindQuery(c, &q) {
		return
	}
	r, err := h.svc.InventoryReport(c.Request.Context(), q)
	h.one(c, r, err)
}

func (h *BackofficeHandler) PurchasingReport(c *gin.Context) {
	var q report.Query
	if !h.BindQuery(c, &q) {
		return
	}
	r, err := h.svc.PurchasingReport(c.Request.Context(), q)
	h.one(c, r, err)
}

func (h *BackofficeHandler) ListAuditLogs(c *gin.Context) {
	var f audit.Filter
	if !h.BindQuery(c, &f) {
		return
	}
	p, err := h.svc.ListAuditLogs(c.Request.Context(), f)
	page(h, c, p, err)
}
