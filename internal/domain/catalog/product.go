// Package catalog mirrors the backend product and category resources.
package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/storefront/internal/domain/shared"
)

// ProductStatus is the lifecycle state of a product.
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// Product is a sellable catalog item.
type Product struct {
	ID           string            `json:"id"`
	SKU          string            `json:"code"`
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	CategoryID   string            `json:"category_id,omitempty"`
	Unit         string            `json:"unit"`
	Barcode      string            `json:"barcode,omitempty"`
	Price        decimal.Decimal   `json:"selling_price"`
	Currency     string            `json:"currency,omitempty"`
	ImageURL     string            `json:"image_url,omitempty"`
	Status       ProductStatus     `json:"status"`
	AvailableQty decimal.Decimal   `json:"available_quantity"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Purchasable reports whether the product can be added to a cart.
func (p *Product) Purchasable() bool {
	return p.Status == ProductStatusActive && p.Price.IsPositive()
}

// InStock reports whether at least qty units are available.
func (p *Product) InStock(qty int) bool {
	return p.AvailableQty.GreaterThanOrEqual(decimal.NewFromInt(int64(qty)))
}

// Category groups products into a tree.
type Category struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	ParentID  string `json:"parent_id,omitempty"`
	SortOrder int    `json:"sort_order"`
}

// ProductFilter narrows a catalog listing.
type ProductFilter struct {
	shared.ListParams
	CategoryID string           `form:"category_id" json:"category_id,omitempty"`
	Status     ProductStatus    `form:"status" json:"status,omitempty"`
	MinPrice   *decimal.Decimal `form:"min_price" json:"min_price,omitempty"`
	MaxPrice   *decimal.Decimal `form:"max_price" json:"max_price,omitempty"`
}

// Query renders the filter as backend query parameters.
func (f ProductFilter) Query() map[string]string {
	q := f.ListParams.Query()
	if f.CategoryID != "" {
		q["category_id"] = f.CategoryID
	}
	if f.Status != "" {
		q["status"] = string(f.Status)
	}
	if f.MinPrice != nil {
		q["min_price"] = f.MinPrice.String()
	}
	if f.MaxPrice != nil {
		q["max_price"] = f.MaxPrice.String()
	}
	return q
}

// CacheKey returns a stable key for caching the listing.
func (f ProductFilter) CacheKey() string {
	q := f.Query()
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("products")
	for _, k := range keys {
		b.WriteString(":" + k + "=" + q[k])
	}
	return b.String()
}
