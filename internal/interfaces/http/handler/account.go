package handler

import (
	"context"

	"github.com/erp/storefront/internal/domain/account"
	"github.com/erp/storefront/internal/domain/order"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// Registrar creates storefront customers
type Registrar interface {
	Register(ctx context.Context, reg account.Registration) (*account.User, error)
}

// OrderHistory lists the signed-in customer's orders
type OrderHistory interface {
	Orders(ctx context.Context, params shared.ListParams) (shared.Page[order.Order], error)
}

// AccountHandler serves customer registration and order history
type AccountHandler struct {
	BaseHandler
	registrar Registrar
	orders    OrderHistory
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(registrar Registrar, orders OrderHistory) *AccountHandler {
	return &AccountHandler{registrar: registrar, orders: orders}
}

// Register handles POST /account/register
func (h *AccountHandler) Register(c *gin.Context) {
	var reg account.Registration
	if !h.BindJSON(c, &reg) {
		return
	}
	user, err := h.registrar.Register(c.Request.Context(), reg)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// Orders handles GET /account/orders
func (h *AccountHandler) Orders(c *gin.Context) {
	var params shared.ListParams
	if !h.BindQuery(c, &params) {
		return
	}
	page, err := h.orders.Orders(c.Request.Context(), params)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}
