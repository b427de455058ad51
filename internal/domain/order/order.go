// Package order mirrors backend sales orders and the checkout contract.
package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/storefront/internal/domain/shared"
)

// Status is the backend order state.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Item is one order line.
type Item struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// Address is a shipping destination.
type Address struct {
	Name       string `json:"name" binding:"required,max=100"`
	Phone      string `json:"phone" binding:"required,max=32"`
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2,omitempty" binding:"omitempty,max=200"`
	City       string `json:"city" binding:"required,max=100"`
	Region     string `json:"region,omitempty" binding:"omitempty,max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,len=2"`
}

// Order is a sales order.
type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"order_number"`
	CustomerID      string          `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	Status          Status          `json:"status"`
	Items           []Item          `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	PayableAmount   decimal.Decimal `json:"payable_amount"`
	Currency        string          `json:"currency,omitempty"`
	ShippingAddress *Address        `json:"shipping_address,omitempty"`
	Remark          string          `json:"remark,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Filter narrows an order listing.
type Filter struct {
	shared.ListParams
	Status     Status `form:"status" json:"status,omitempty"`
	CustomerID string `form:"customer_id" json:"customer_id,omitempty"`
	From       string `form:"from" json:"from,omitempty" binding:"omitempty,datetime=2006-01-02"`
	To         string `form:"to" json:"to,omitempty" binding:"omitempty,datetime=2006-01-02"`
}

// Query renders the filter as backend query parameters.
func (f Filter) Query() map[string]string {
	q := f.ListParams.Query()
	if f.Status != "" {
		q["status"] = string(f.Status)
	}
	if f.CustomerID != "" {
		q["customer_id"] = f.CustomerID
	}
	if f.From != "" {
		q["from"] = f.From
	}
	if f.To != "" {
		q["to"] = f.To
	}
	return q
}

// StatusChange is the body of POST /api/orders/:id/status.
type StatusChange struct {
	Status Status `json:"status" binding:"required"`
	Reason string `json:"reason,omitempty" binding:"omitempty,max=500"`
}

// CheckoutLine is a cart line sent to the backend at checkout.
type CheckoutLine struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CheckoutRequest is the body shared by checkout preview and order
// placement.
type CheckoutRequest struct {
	Lines           []CheckoutLine `json:"items"`
	Currency        string         `json:"currency"`
	PromotionCodes  []string       `json:"promotion_codes,omitempty"`
	ShippingAddress *Address       `json:"shipping_address,omitempty"`
	PaymentMethod   string         `json:"payment_method,omitempty"`
	Remark          string         `json:"remark,omitempty"`
}

// AppliedPromotion is a promotion the backend applied to a preview.
type AppliedPromotion struct {
	PromotionID string          `json:"promotion_id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Discount    decimal.Decimal `json:"discount"`
}

// CheckoutPreview is the priced quote returned by the backend.
type CheckoutPreview struct {
	Subtotal   decimal.Decimal    `json:"subtotal"`
	Discount   decimal.Decimal    `json:"discount"`
	Shipping   decimal.Decimal    `json:"shipping"`
	Tax        decimal.Decimal    `json:"tax"`
	Total      decimal.Decimal    `json:"total"`
	Currency   string             `json:"currency"`
	Promotions []AppliedPromotion `json:"promotions"`
	Warnings   []string           `json:"warnings,omitempty"`
}
