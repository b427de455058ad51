// Package report mirrors the backend reporting endpoints.
package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// Granularity buckets report series.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// Query selects a reporting window.
type Query struct {
	From        string      `form:"from" json:"from" binding:"required,datetime=2006-01-02"`
	To          string      `form:"to" json:"to" binding:"required,datetime=2006-01-02"`
	Granularity Granularity `form:"granularity" json:"granularity,omitempty" binding:"omitempty,oneof=day week month"`
	WarehouseID string      `form:"warehouse_id" json:"warehouse_id,omitempty"`
}

// Params renders the query as backend query parameters.
func (q Query) Params() map[string]string {
	p := map[string]string{"from": q.From, "to": q.To}
	if q.Granularity != "" {
		p["granularity"] = string(q.Granularity)
	}
	if q.WarehouseID != "" {
		p["warehouse_id"] = q.WarehouseID
	}
	return p
}

// SeriesPoint is one bucket of a time series.
type SeriesPoint struct {
	Period time.Time       `json:"period"`
	Value  decimal.Decimal `json:"value"`
	Count  int64           `json:"count"`
}

// TopProduct ranks a product in a report.
type TopProduct struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

// SalesReport summarizes sales in a window.
type SalesReport struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalOrders   int64           `json:"total_orders"`
	AverageOrder  decimal.Decimal `json:"average_order_value"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	Series        []SeriesPoint   `json:"series"`
	TopProducts   []TopProduct    `json:"top_products"`
}

// InventoryReport summarizes stock value and turnover.
type InventoryReport struct {
	TotalValue    decimal.Decimal `json:"total_value"`
	TotalSKUs     int64           `json:"total_skus"`
	LowStockSKUs  int64           `json:"low_stock_skus"`
	OutOfStock    int64           `json:"out_of_stock_skus"`
	TurnoverRatio decimal.Decimal `json:"turnover_ratio"`
	Series        []SeriesPoint   `json:"series"`
}

// PurchasingReport summarizes purchasing spend.
type PurchasingReport struct {
	TotalSpend      decimal.Decimal `json:"total_spend"`
	TotalOrders     int64           `json:"total_orders"`
	PendingReceipts int64           `json:"pending_receipts"`
	TopSuppliers    []SupplierSpend `json:"top_suppliers"`
	Series          []SeriesPoint   `json:"series"`
}

// SupplierSpend ranks a supplier by spend.
type SupplierSpend struct {
	SupplierID   string          `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	Amount       decimal.Decimal `json:"amount"`
	Orders       int64           `json:"orders"`
}
