// Package inventory mirrors backend stock levels, movements, transfers and
// cycle counts.
package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/storefront/internal/domain/shared"
)

// StockLevel is the on-hand position of one product in one warehouse.
type StockLevel struct {
	WarehouseID   string          `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	ProductID     string          `json:"product_id"`
	ProductCode   string          `json:"product_code"`
	ProductName   string          `json:"product_name"`
	OnHand        decimal.Decimal `json:"on_hand"`
	Reserved      decimal.Decimal `json:"reserved"`
	Available     decimal.Decimal `json:"available"`
	ReorderPoint  decimal.Decimal `json:"reorder_point"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
}

// BelowReorderPoint reports whether available stock is at or under the
// reorder point. A zero reorder point disables the check.
func (s StockLevel) BelowReorderPoint() bool {
	return s.ReorderPoint.IsPositive() && s.Available.LessThanOrEqual(s.ReorderPoint)
}

// Movement is a stock ledger entry.
type Movement struct {
	ID            string          `json:"id"`
	WarehouseID   string          `json:"warehouse_id"`
	ProductID     string          `json:"product_id"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// StockFilter narrows stock and movement listings.
type StockFilter struct {
	shared.ListParams
	WarehouseID string `form:"warehouse_id" json:"warehouse_id,omitempty"`
	ProductID   string `form:"product_id" json:"product_id,omitempty"`
	LowStock    bool   `form:"low_stock" json:"low_stock,omitempty"`
}

// Query renders the filter as backend query parameters.
func (f StockFilter) Query() map[string]string {
	q := f.ListParams.Query()
	if f.WarehouseID != "" {
		q["warehouse_id"] = f.WarehouseID
	}
	if f.ProductID != "" {
		q["product_id"] = f.ProductID
	}
	if f.LowStock {
		q["low_stock"] = "true"
	}
	return q
}

// TransferStatus is the stock transfer state.
type TransferStatus string

const (
	TransferDraft     TransferStatus = "DRAFT"
	TransferShipped   TransferStatus = "SHIPPED"
	TransferReceived  TransferStatus = "RECEIVED"
	TransferCancelled TransferStatus = "CANCELLED"
)

// TransferItem is one product moved by a transfer.
type TransferItem struct {
	ProductID   string          `json:"product_id" binding:"required"`
	ProductCode string          `json:"product_code,omitempty"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
}

// StockTransfer moves goods between warehouses.
type StockTransfer struct {
	ID              string         `json:"id"`
	TransferNumber  string         `json:"transfer_number"`
	FromWarehouseID string         `json:"from_warehouse_id"`
	ToWarehouseID   string         `json:"to_warehouse_id"`
	Status          TransferStatus `json:"status"`
	Items           []TransferItem `json:"items"`
	ShippedAt       *time.Time     `json:"shipped_at,omitempty"`
	ReceivedAt      *time.Time     `json:"received_at,omitempty"`
	Remark          string         `json:"remark,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// CreateTransferRequest is the body of POST /api/stock-transfers.
type CreateTransferRequest struct {
	FromWarehouseID string         `json:"from_warehouse_id" binding:"required"`
	ToWarehouseID   string         `json:"to_warehouse_id" binding:"required,nefield=FromWarehouseID"`
	Items           []TransferItem `json:"items" binding:"required,min=1,dive"`
	Remark          string         `json:"remark,omitempty" binding:"omitempty,max=500"`
}

// CycleCountStatus is the cycle count session state.
type CycleCountStatus string

const (
	CycleCountDraft           CycleCountStatus = "DRAFT"
	CycleCountCounting        CycleCountStatus = "COUNTING"
	CycleCountPendingApproval CycleCountStatus = "PENDING_APPROVAL"
	CycleCountApproved        CycleCountStatus = "APPROVED"
	CycleCountCancelled       CycleCountStatus = "CANCELLED"
)

// CountLine is one product in a cycle count.
type CountLine struct {
	ProductID      string           `json:"product_id"`
	ProductCode    string           `json:"product_code,omitempty"`
	ProductName    string           `json:"product_name,omitempty"`
	SystemQuantity decimal.Decimal  `json:"system_quantity"`
	CountedQty     *decimal.Decimal `json:"counted_quantity,omitempty"`
}

// Variance is counted minus system quantity, or zero if not yet counted.
func (l CountLine) Variance() decimal.Decimal {
	if l.CountedQty == nil {
		return decimal.Zero
	}
	return l.CountedQty.Sub(l.SystemQuantity)
}

// CycleCountSession is a stock-taking session for one warehouse.
type CycleCountSession struct {
	ID          string           `json:"id"`
	CountNumber string           `json:"count_number"`
	WarehouseID string           `json:"warehouse_id"`
	Status      CycleCountStatus `json:"status"`
	Lines       []CountLine      `json:"items"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Progress returns how many lines have been counted out of the total.
func (s *CycleCountSession) Progress() (counted, total int) {
	for _, l := range s.Lines {
		if l.CountedQty != nil {
			counted++
		}
	}
	return counted, len(s.Lines)
}

// CreateCycleCountRequest is the body of POST /api/cycle-counts.
type CreateCycleCountRequest struct {
	WarehouseID string   `json:"warehouse_id" binding:"required"`
	ProductIDs  []string `json:"product_ids,omitempty"`
	Remark      string   `json:"remark,omitempty" binding:"omitempty,max=500"`
}

// CountEntry records a counted quantity.
type CountEntry struct {
	ProductID string          `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"counted_quantity" binding:"required"`
	Note      string          `json:"note,omitempty" binding:"omitempty,max=200"`
}

// RecordCountsRequest is the body of POST /api/cycle-counts/:id/counts.
type RecordCountsRequest struct {
	Counts []CountEntry `json:"counts" binding:"required,min=1,dive"`
}
