package storefront

import (
	"context"

	"github.com/erp/storefront/internal/domain/cart"
	"github.com/erp/storefront/internal/domain/order"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/erp/storefront/internal/infrastructure/logger"
	"github.com/erp/storefront/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrShippingAddressRequired is returned when an order is placed without a destination
var ErrShippingAddressRequired = shared.NewDomainError("INVALID_INPUT", "Shipping address is required")

// CheckoutBackend is the subset of the backend API used at checkout
type CheckoutBackend interface {
	PreviewCheckout(ctx context.Context, req order.CheckoutRequest) (*order.CheckoutPreview, error)
	PlaceOrder(ctx context.Context, req order.CheckoutRequest, idempotencyKey string) (*order.Order, error)
}

// CheckoutInput carries the checkout fields that do not come from the cart
type CheckoutInput struct {
	PromotionCodes  []string       `json:"promotion_codes,omitempty" binding:"omitempty,max=5,dive,required,max=50"`
	ShippingAddress *order.Address `json:"shipping_address,omitempty"`
	PaymentMethod   string         `json:"payment_method,omitempty" binding:"omitempty,max=50"`
	Remark          string         `json:"remark,omitempty" binding:"omitempty,max=500"`
}

// CheckoutService prices and places orders for the current cart
type CheckoutService struct {
	backend CheckoutBackend
	carts   *CartService
}

// NewCheckoutService creates a checkout service
func NewCheckoutService(b CheckoutBackend, carts *CartService) *CheckoutService {
	return &CheckoutService{backend: b, carts: carts}
}

func (s *CheckoutService) request(c *cart.Cart, in CheckoutInput) order.CheckoutRequest {
	lines := make([]order.CheckoutLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, order.CheckoutLine{
			ProductID: l.ProductID,
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return order.CheckoutRequest{
		Lines:           lines,
		Currency:        c.Currency,
		PromotionCodes:  in.PromotionCodes,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		Remark:          in.Remark,
	}
}

func (s *CheckoutService) nonEmptyCart(ctx context.Context, owner Owner) (*cart.Cart, error) {
	c, err := s.carts.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, cart.ErrEmpty
	}
	return c, nil
}

// Preview asks the backend to price the cart with promotions, shipping and tax
func (s *CheckoutService) Preview(ctx context.Context, owner Owner, in CheckoutInput) (*order.CheckoutPreview, error) {
	c, err := s.nonEmptyCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.backend.PreviewCheckout(ctx, s.request(c, in))
}

// Place submits the cart as an order. The idempotency key is derived from
// the cart id and version, so a retried submit of the same cart state does
// not create a second order. The cart is cleared once the order exists.
func (s *CheckoutService) Place(ctx context.Context, owner Owner, in CheckoutInput) (*order.Order, error) {
	if in.ShippingAddress == nil {
		return nil, ErrShippingAddressRequired
	}
	c, err := s.nonEmptyCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	key := c.IdempotencyKey()
	ctx, span := telemetry.StartSpan(ctx, "checkout.place_order",
		attribute.String("cart.id", c.ID),
		attribute.Int("cart.lines", len(c.Lines)),
	)
	o, err := s.backend.PlaceOrder(ctx, s.request(c, in), key)
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("cart_id", c.ID),
		zap.String("idempotency_key", key),
	)
	if _, err := s.carts.Clear(ctx, owner); err != nil {
		logger.L(ctx).Warn("failed to clear cart after checkout",
			zap.String("cart_id", c.ID),
			zap.Error(err),
		)
	}
	return o, nil
}
