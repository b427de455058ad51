// Package purchasing mirrors backend purchase orders and suppliers.
package purchasing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/storefront/internal/domain/shared"
)

// Status is the purchase order state.
type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusConfirmed       Status = "CONFIRMED"
	StatusPartialReceived Status = "PARTIAL_RECEIVED"
	StatusCompleted       Status = "COMPLETED"
	StatusCancelled       Status = "CANCELLED"
)

// CanReceive reports whether goods may be received against the order.
func (s Status) CanReceive() bool {
	return s == StatusConfirmed || s == StatusPartialReceived
}

// Item is a purchase order line.
type Item struct {
	ID               string          `json:"id,omitempty"`
	ProductID        string          `json:"product_id" binding:"required"`
	ProductCode      string          `json:"product_code,omitempty"`
	ProductName      string          `json:"product_name,omitempty"`
	Unit             string          `json:"unit,omitempty"`
	OrderedQuantity  decimal.Decimal `json:"ordered_quantity" binding:"required"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost" binding:"required"`
	Amount           decimal.Decimal `json:"amount"`
}

// Remaining is the quantity still expected.
func (i Item) Remaining() decimal.Decimal {
	r := i.OrderedQuantity.Sub(i.ReceivedQuantity)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// PurchaseOrder is an order placed with a supplier.
type PurchaseOrder struct {
	ID           string          `json:"id"`
	OrderNumber  string          `json:"order_number"`
	SupplierID   string          `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	WarehouseID  string          `json:"warehouse_id,omitempty"`
	Status       Status          `json:"status"`
	Items        []Item          `json:"items"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	ExpectedAt   *time.Time      `json:"expected_at,omitempty"`
	Remark       string          `json:"remark,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CreateRequest is the body of POST /api/purchase-orders.
type CreateRequest struct {
	SupplierID  string     `json:"supplier_id" binding:"required"`
	WarehouseID string     `json:"warehouse_id,omitempty"`
	Items       []Item     `json:"items" binding:"required,min=1,dive"`
	ExpectedAt  *time.Time `json:"expected_at,omitempty"`
	Remark      string     `json:"remark,omitempty" binding:"omitempty,max=500"`
}

// ReceiveLine records goods received for one line.
type ReceiveLine struct {
	ProductID   string           `json:"product_id" binding:"required"`
	Quantity    decimal.Decimal  `json:"quantity" binding:"required"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	BatchNumber string           `json:"batch_number,omitempty"`
	ExpiryDate  *time.Time       `json:"expiry_date,omitempty"`
}

// ReceiveRequest is the body of POST /api/purchase-orders/:id/receive.
type ReceiveRequest struct {
	WarehouseID string        `json:"warehouse_id,omitempty"`
	Items       []ReceiveLine `json:"items" binding:"required,min=1,dive"`
	Remark      string        `json:"remark,omitempty" binding:"omitempty,max=500"`
}

// CancelRequest is the body of POST /api/purchase-orders/:id/cancel.
type CancelRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// Filter narrows a purchase order listing.
type Filter struct {
	shared.ListParams
	Status     Status `form:"status" json:"status,omitempty"`
	SupplierID string `form:"supplier_id" json:"supplier_id,omitempty"`
}

// Query renders the filter as backend query parameters.
func (f Filter) Query() map[string]string {
	q := f.ListParams.Query()
	if f.Status != "" {
		q["status"] = string(f.Status)
	}
	if f.SupplierID != "" {
		q["supplier_id"] = f.SupplierID
	}
	return q
}

// Supplier is a vendor.
type Supplier struct {
	ID           string          `json:"id"`
	Code         string          `json:"code" binding:"required,max=50"`
	Name         string          `json:"name" binding:"required,max=200"`
	ContactName  string          `json:"contact_name,omitempty" binding:"omitempty,max=100"`
	Phone        string          `json:"phone,omitempty" binding:"omitempty,max=32"`
	Email        string          `json:"email,omitempty" binding:"omitempty,email"`
	Address      string          `json:"address,omitempty" binding:"omitempty,max=500"`
	PaymentTerms int             `json:"payment_term_days" binding:"omitempty,min=0,max=365"`
	CreditLimit  decimal.Decimal `json:"credit_limit"`
	Status       string          `json:"status,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
