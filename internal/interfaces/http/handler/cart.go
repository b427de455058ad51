package handler

import (
	"context"

	"github.com/erp/storefront/internal/application/storefront"
	"github.com/erp/storefront/internal/domain/cart"
	"github.com/erp/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// CartService is the cart API the handlers call
type CartService interface {
	Get(ctx context.Context, owner storefront.Owner) (*cart.Cart, error)
	AddItem(ctx context.Context, owner storefront.Owner, in storefront.AddItemInput) (*cart.Cart, error)
	UpdateQuantity(ctx context.Context, owner storefront.Owner, lineID string, qty int) (*cart.Cart, error)
	RemoveItem(ctx context.Context, owner storefront.Owner, lineID string) (*cart.Cart, error)
	Clear(ctx context.Context, owner storefront.Owner) (*cart.Cart, error)
}

// UpdateQuantityRequest is the body of PUT /cart/items/:lineId. Zero removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0"`
}

// CartResponse is the cart plus its derived totals
type CartResponse struct {
	*cart.Cart
	Totals cart.Totals `json:"totals"`
}

func newCartResponse(c *cart.Cart) CartResponse {
	return CartResponse{Cart: c, Totals: c.Totals()}
}

// CartHandler serves the visitor's cart
type CartHandler struct {
	BaseHandler
	carts   CartService
	cookies *middleware.Cookies
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts CartService, cookies *middleware.Cookies) *CartHandler {
	return &CartHandler{carts: carts, cookies: cookies}
}

func (h *CartHandler) respond(c *gin.Context, ct *cart.Cart, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newCartResponse(ct))
}

// Get handles GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	ct, err := h.carts.Get(c.Request.Context(), cartOwner(c, h.cookies))
	h.respond(c, ct, err)
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req storefront.AddItemInput
	if !h.BindJSON(c, &req) {
		return
	}
	ct, err := h.carts.AddItem(c.Request.Context(), cartOwner(c, h.cookies), req)
	h.respond(c, ct, err)
}

// UpdateItem handles PUT /cart/items/:lineId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req UpdateQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ct, err := h.carts.UpdateQuantity(c.Request.Context(), cartOwner(c, h.cookies), c.Param("lineId"), *req.Quantity)
	h.respond(c, ct, err)
}

// RemoveItem handles DELETE /cart/items/:lineId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	ct, err := h.carts.RemoveItem(c.Request.Context(), cartOwner(c, h.cookies), c.Param("lineId"))
	h.respond(c, ct, err)
}

// Clear handles DELETE /cart
func (h *CartHandler) Clear(c *gin.Context) {
	ct, err := h.carts.Clear(c.Request.Context(), cartOwner(c, h.cookies))
	h.respond(c, ct, err)
}
