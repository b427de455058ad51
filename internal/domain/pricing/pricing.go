// Package pricing mirrors backend price lists and promotions.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/storefront/internal/domain/shared"
)

// PriceList is a named set of product prices valid for a period.
type PriceList struct {
	ID        string      `json:"id"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Currency  string      `json:"currency"`
	Priority  int         `json:"priority"`
	ValidFrom *time.Time  `json:"valid_from,omitempty"`
	ValidTo   *time.Time  `json:"valid_to,omitempty"`
	Active    bool        `json:"active"`
	Items     []PriceItem `json:"items,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ActiveAt reports whether the list applies at t.
func (p *PriceList) ActiveAt(t time.Time) bool {
	if !p.Active {
		return false
	}
	if p.ValidFrom != nil && t.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidTo != nil && t.After(*p.ValidTo) {
		return false
	}
	return true
}

// PriceItem is a tiered price for one product.
type PriceItem struct {
	ProductID   string          `json:"product_id" binding:"required"`
	ProductCode string          `json:"product_code,omitempty"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
	Price       decimal.Decimal `json:"price" binding:"required"`
}

// CreatePriceListRequest is the body of POST /api/price-lists.
type CreatePriceListRequest struct {
	Code      string     `json:"code" binding:"required,max=50"`
	Name      string     `json:"name" binding:"required,max=200"`
	Currency  string     `json:"currency" binding:"required,len=3"`
	Priority  int        `json:"priority" binding:"omitempty,min=0,max=1000"`
	ValidFrom *time.Time `json:"valid_from,omitempty"`
	ValidTo   *time.Time `json:"valid_to,omitempty"`
}

// ReplaceItemsRequest is the body of PUT /api/price-lists/:id/items.
type ReplaceItemsRequest struct {
	Items []PriceItem `json:"items" binding:"required,dive"`
}

// PromotionType is how a promotion computes its discount.
type PromotionType string

const (
	PromotionPercentage PromotionType = "PERCENTAGE"
	PromotionFixed      PromotionType = "FIXED_AMOUNT"
	PromotionBuyXGetY   PromotionType = "BUY_X_GET_Y"
)

// Promotion is a discount rule evaluated by the backend.
type Promotion struct {
	ID            string          `json:"id"`
	Code          string          `json:"code" binding:"required,max=50"`
	Name          string          `json:"name" binding:"required,max=200"`
	Type          PromotionType   `json:"type" binding:"required,oneof=PERCENTAGE FIXED_AMOUNT BUY_X_GET_Y"`
	Value         decimal.Decimal `json:"value"`
	MinOrderTotal decimal.Decimal `json:"min_order_total"`
	Stackable     bool            `json:"stackable"`
	Priority      int             `json:"priority"`
	StartsAt      *time.Time      `json:"starts_at,omitempty"`
	EndsAt        *time.Time      `json:"ends_at,omitempty"`
	Active        bool            `json:"active"`
	ProductIDs    []string        `json:"product_ids,omitempty"`
	CategoryIDs   []string        `json:"category_ids,omitempty"`
}

// DiscountLine is one line submitted for discount calculation.
type DiscountLine struct {
	ProductID  string          `json:"product_id" binding:"required"`
	CategoryID string          `json:"category_id,omitempty"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice  decimal.Decimal `json:"unit_price" binding:"required"`
}

// DiscountRequest is the body of POST /api/promotions/calculate-discount.
type DiscountRequest struct {
	CustomerID     string         `json:"customer_id,omitempty"`
	Items          []DiscountLine `json:"items" binding:"required,min=1,dive"`
	PromotionCodes []string       `json:"promotion_codes,omitempty"`
}

// DiscountResult is the backend's discount breakdown.
type DiscountResult struct {
	Subtotal      decimal.Decimal   `json:"subtotal"`
	TotalDiscount decimal.Decimal   `json:"total_discount"`
	Total         decimal.Decimal   `json:"total"`
	Applied       []AppliedDiscount `json:"applied"`
}

// AppliedDiscount attributes part of the discount to one promotion.
type AppliedDiscount struct {
	PromotionID string          `json:"promotion_id"`
	Code        string          `json:"code"`
	Amount      decimal.Decimal `json:"amount"`
}

// PromotionFilter narrows a promotion listing.
type PromotionFilter struct {
	shared.ListParams
	Active *bool `form:"active" json:"active,omitempty"`
}

// Query renders the filter as backend query parameters.
func (f PromotionFilter) Query() map[string]string {
	q := f.ListParams.Query()
	if f.Active != nil {
		if *f.Active {
			q["active"] = "true"
		} else {
			q["active"] = "false"
		}
	}
	return q
}
