package handler

import (
	"context"

	"github.com/erp/storefront/internal/application/storefront"
	"github.com/erp/storefront/internal/domain/order"
	"github.com/erp/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// CheckoutService prices and places the visitor's cart
type CheckoutService interface {
	Preview(ctx context.Context, owner storefront.Owner, in storefront.CheckoutInput) (*order.CheckoutPreview, error)
	Place(ctx context.Context, owner storefront.Owner, in storefront.CheckoutInput) (*order.Order, error)
}

// CheckoutHandler serves checkout preview and order placement
type CheckoutHandler struct {
	BaseHandler
	checkout CheckoutService
	cookies  *middleware.Cookies
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkout CheckoutService, cookies *middleware.Cookies) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, cookies: cookies}
}

// Preview handles POST /checkout/preview
func (h *CheckoutHandler) Preview(c *gin.Context) {
	var in storefront.CheckoutInput
	if !h.BindJSON(c, &in) {
		return
	}
	preview, err := h.checkout.Preview(c.Request.Context(), cartOwner(c, h.cookies), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// PlaceOrder handles POST /checkout/orders. The route requires a signed-in customer.
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var in storefront.CheckoutInput
	if !h.BindJSON(c, &in) {
		return
	}
	placed, err := h.checkout.Place(c.Request.Context(), cartOwner(c, h.cookies), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, placed)
}
