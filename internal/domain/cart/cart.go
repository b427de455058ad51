// Package cart implements the storefront cart state container: line items
// with price snapshots, quantity limits, guest-cart merging and derived
// totals.
package cart

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/storefront/internal/domain/shared"
)

var (
	ErrInvalidQuantity  = shared.NewDomainError("CART_INVALID_QUANTITY", "Quantity must be a positive whole number")
	ErrQuantityExceeded = shared.NewDomainError("CART_QUANTITY_EXCEEDED", "Quantity exceeds the per-line limit")
	ErrTooManyLines     = shared.NewDomainError("CART_TOO_MANY_LINES", "Cart has reached the maximum number of lines")
	ErrLineNotFound     = shared.NewDomainError("CART_LINE_NOT_FOUND", "Cart line not found")
	ErrCurrencyMismatch = shared.NewDomainError("CART_CURRENCY_MISMATCH", "Item currency differs from cart currency")
	ErrNotPurchasable   = shared.NewDomainError("CART_NOT_PURCHASABLE", "Product is not available for purchase")
	ErrEmpty            = shared.NewDomainError("CART_EMPTY", "Cart is empty")
	ErrOutOfStock       = shared.NewDomainError("INSUFFICIENT_STOCK", "Not enough stock for the requested quantity")
)

// Limits bound cart contents.
type Limits struct {
	MaxLineQuantity int
	MaxLines        int
}

// Item is the product snapshot taken when a line is added.
type Item struct {
	ProductID string
	VariantID string
	SKU       string
	Name      string
	ImageURL  string
	UnitPrice decimal.Decimal
	Currency  string
}

// Line is one cart entry.
type Line struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"added_at"`
}

// Total is unit price times quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l Line) sameItem(productID, variantID string) bool {
	return l.ProductID == productID && l.VariantID == variantID
}

// Cart is a persisted shopping cart. Every mutation bumps Version.
type Cart struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id,omitempty"`
	Currency  string    `json:"currency"`
	Lines     []Line    `json:"lines"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates an empty cart.
func New(currency string) *Cart {
	return NewWithID(uuid.NewString(), currency)
}

// NewWithID creates an empty cart with a caller-chosen id, such as the
// visitor id already stored in the cart cookie.
func NewWithID(id, currency string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		ID:        id,
		Currency:  currency,
		Lines:     []Line{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Cart) touch() {
	c.Version++
	c.UpdatedAt = time.Now().UTC()
}

func (c *Cart) indexOf(lineID string) int {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return i
		}
	}
	return -1
}

// Line returns the line with the given id.
func (c *Cart) Line(lineID string) (Line, bool) {
	if i := c.indexOf(lineID); i >= 0 {
		return c.Lines[i], true
	}
	return Line{}, false
}

// AddItem adds qty of item, merging into an existing line for the same
// product and variant. The stored unit price is refreshed to the snapshot.
func (c *Cart) AddItem(item Item, qty int, limits Limits) (Line, error) {
	if qty <= 0 {
		return Line{}, ErrInvalidQuantity
	}
	if item.Currency != "" && c.Currency != "" && item.Currency != c.Currency {
		return Line{}, ErrCurrencyMismatch
	}

	for i := range c.Lines {
		if !c.Lines[i].sameItem(item.ProductID, item.VariantID) {
			continue
		}
		next := c.Lines[i].Quantity + qty
		if limits.MaxLineQuantity > 0 && next > limits.MaxLineQuantity {
			return Line{}, quantityExceeded(limits.MaxLineQuantity)
		}
		c.Lines[i].Quantity = next
		c.Lines[i].UnitPrice = item.UnitPrice
		c.touch()
		return c.Lines[i], nil
	}

	if limits.MaxLineQuantity > 0 && qty > limits.MaxLineQuantity {
		return Line{}, quantityExceeded(limits.MaxLineQuantity)
	}
	if limits.MaxLines > 0 && len(c.Lines) >= limits.MaxLines {
		return Line{}, ErrTooManyLines
	}

	line := Line{
		ID:        uuid.NewString(),
		ProductID: item.ProductID,
		VariantID: item.VariantID,
		SKU:       item.SKU,
		Name:      item.Name,
		ImageURL:  item.ImageURL,
		UnitPrice: item.UnitPrice,
		Quantity:  qty,
		AddedAt:   time.Now().UTC(),
	}
	c.Lines = append(c.Lines, line)
	c.touch()
	return line, nil
}

// SetQuantity replaces a line's quantity. Zero removes the line.
func (c *Cart) SetQuantity(lineID string, qty int, limits Limits) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}
	i := c.indexOf(lineID)
	if i < 0 {
		return ErrLineNotFound
	}
	if qty == 0 {
		c.removeAt(i)
		return nil
	}
	if limits.MaxLineQuantity > 0 && qty > limits.MaxLineQuantity {
		return quantityExceeded(limits.MaxLineQuantity)
	}
	c.Lines[i].Quantity = qty
	c.touch()
	return nil
}

// RemoveItem deletes a line.
func (c *Cart) RemoveItem(lineID string) error {
	i := c.indexOf(lineID)
	if i < 0 {
		return ErrLineNotFound
	}
	c.removeAt(i)
	return nil
}

func (c *Cart) removeAt(i int) {
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	c.touch()
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = []Line{}
	c.touch()
}

// Merge folds other's lines into c, as when a guest signs in. Quantities for
// the same item are summed and capped at the per-line limit; lines beyond
// MaxLines are dropped. A cart priced in another currency is not merged at
// all. It returns the number of lines that could not be merged in full.
func (c *Cart) Merge(other *Cart, limits Limits) int {
	if other == nil || len(other.Lines) == 0 {
		return 0
	}
	if other.Currency != "" && c.Currency != "" && other.Currency != c.Currency {
		return len(other.Lines)
	}

	dropped := 0
	for _, ol := range other.Lines {
		merged := false
		for i := range c.Lines {
			if !c.Lines[i].sameItem(ol.ProductID, ol.VariantID) {
				continue
			}
			next := c.Lines[i].Quantity + ol.Quantity
			if limits.MaxLineQuantity > 0 && next > limits.MaxLineQuantity {
				next = limits.MaxLineQuantity
				dropped++
			}
			c.Lines[i].Quantity = next
			merged = true
			break
		}
		if merged {
			continue
		}
		if limits.MaxLines > 0 && len(c.Lines) >= limits.MaxLines {
			dropped++
			continue
		}
		nl := ol
		if limits.MaxLineQuantity > 0 && nl.Quantity > limits.MaxLineQuantity {
			nl.Quantity = limits.MaxLineQuantity
			dropped++
		}
		c.Lines = append(c.Lines, nl)
	}
	c.touch()
	return dropped
}

// Totals are values derived from the cart lines.
type Totals struct {
	LineCount int             `json:"line_count"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Currency  string          `json:"currency"`
}

// Totals computes line and item counts and the subtotal.
func (c *Cart) Totals() Totals {
	t := Totals{LineCount: len(c.Lines), Subtotal: decimal.Zero, Currency: c.Currency}
	for _, l := range c.Lines {
		t.ItemCount += l.Quantity
		t.Subtotal = t.Subtotal.Add(l.Total())
	}
	return t
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// IdempotencyKey identifies one checkout attempt for this exact cart state.
func (c *Cart) IdempotencyKey() string {
	return fmt.Sprintf("cart:%s:v%d", c.ID, c.Version)
}

func quantityExceeded(limit int) error {
	return shared.NewDomainError(ErrQuantityExceeded.Code,
		fmt.Sprintf("Quantity exceeds the per-line limit of %d", limit))
}
