package backoffice

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/erp/storefront/internal/domain/inventory"
	"github.com/erp/storefront/internal/domain/order"
	"github.com/erp/storefront/internal/domain/pricing"
	"github.com/erp/storefront/internal/domain/purchasing"
	"github.com/erp/storefront/internal/domain/report"
	"github.com/erp/storefront/internal/infrastructure/backend"
	"github.com/erp/storefront/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordedCall struct {
	Method string
	Path   string
	Body   string
}

type fakeBackend struct {
	mu    sync.Mutex
	calls []recordedCall
	reply string
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{Method: r.Method, Path: r.URL.Path, Body: string(body)})
	f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, f.reply)
}

func (f *fakeBackend) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBackend) last(t *testing.T) recordedCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

func newService(t *testing.T, reply string) (*Service, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{reply: reply}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	client, err := backend.NewClient(backend.Config{BaseURL: srv.URL})
	require.NoError(t, err)
	return NewService(client), fb
}

func observedContext(userID string) (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := logger.WithContext(context.Background(), zap.New(core))
	return logger.WithUserID(ctx, userID), logs
}

func TestService_ChangeOrderStatus(t *testing.T) {
	t.Run("rejects unknown status locally", func(t *testing.T) {
		svc, fb := newService(t, `{}`)

		_, err := svc.ChangeOrderStatus(context.Background(), "o1", order.StatusChange{Status: "LOST"})
		assert.ErrorIs(t, err, ErrInvalidOrderStatus)
		assert.Zero(t, fb.count())
	})

	t.Run("forwards and logs the mutation with the acting user", func(t *testing.T) {
		svc, fb := newService(t, `{"success":true,"data":{"id":"o1","status":"SHIPPED"}}`)
		ctx, logs := observedContext("admin-1")

		o, err := svc.ChangeOrderStatus(ctx, "o1", order.StatusChange{Status: order.StatusShipped, Reason: "picked up"})
		require.NoError(t, err)
		assert.Equal(t, order.StatusShipped, o.Status)

		call := fb.last(t)
		assert.Equal(t, http.MethodPost, call.Method)
		assert.Equal(t, "/api/orders/o1/status", call.Path)
		assert.JSONEq(t, `{"status":"SHIPPED","reason":"picked up"}`, call.Body)

		entries := logs.FilterMessage("backoffice mutation").All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, "order.status.SHIPPED", fields["action"])
		assert.Equal(t, "o1", fields["resource_id"])
		assert.Equal(t, "admin-1", fields["user_id"])
	})
}

func TestService_PurchaseOrderValidation(t *testing.T) {
	svc, fb := newService(t, `{"id":"po1"}`)
	ctx := context.Background()

	_, err := svc.CreatePurchaseOrder(ctx, purchasing.CreateRequest{
		SupplierID: "s1",
		Items:      []purchasing.Item{{ProductID: "p1", OrderedQuantity: decimal.Zero, UnitCost: decimal.NewFromInt(1)}},
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.ReceivePurchaseOrder(ctx, "po1", purchasing.ReceiveRequest{
		Items: []purchasing.ReceiveLine{{ProductID: "p1", Quantity: decimal.NewFromInt(-1)}},
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Zero(t, fb.count())

	po, err := svc.ReceivePurchaseOrder(ctx, "po1", purchasing.ReceiveRequest{
		Items: []purchasing.ReceiveLine{{ProductID: "p1", Quantity: decimal.NewFromInt(3)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "po1", po.ID)
	assert.Equal(t, "/api/purchase-orders/po1/receive", fb.last(t).Path)
}

func TestService_PriceListValidation(t *testing.T) {
	svc, fb := newService(t, `{"id":"pl1"}`)
	ctx := context.Background()

	_, err := svc.ReplacePriceListItems(ctx, "pl1", pricing.ReplaceItemsRequest{
		Items: []pricing.PriceItem{{ProductID: "p1", Price: decimal.NewFromInt(-5)}},
	})
	assert.ErrorIs(t, err, ErrInvalidPrice)
	assert.Zero(t, fb.count())

	_, err = svc.ReplacePriceListItems(ctx, "pl1", pricing.ReplaceItemsRequest{
		Items: []pricing.PriceItem{{ProductID: "p1", Price: decimal.NewFromInt(5), MinQuantity: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)
	call := fb.last(t)
	assert.Equal(t, http.MethodPut, call.Method)
	assert.Equal(t, "/api/price-lists/pl1/items", call.Path)
}

func TestService_RecordCounts(t *testing.T) {
	svc, fb := newService(t, `{"id":"cc1","status":"COUNTING"}`)
	ctx := context.Background()

	_, err := svc.RecordCounts(ctx, "cc1", inventory.RecordCountsRequest{
		Counts: []inventory.CountEntry{{ProductID: "p1", Quantity: decimal.NewFromInt(-2)}},
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	cc, err := svc.RecordCounts(ctx, "cc1", inventory.RecordCountsRequest{
		Counts: []inventory.CountEntry{{ProductID: "p1", Quantity: decimal.Zero}},
	})
	require.NoError(t, err)
	assert.Equal(t, inventory.CycleCountCounting, cc.Status)

	var sent inventory.RecordCountsRequest
	require.NoError(t, json.Unmarshal([]byte(fb.last(t).Body), &sent))
	assert.True(t, sent.Counts[0].Quantity.IsZero())
}

func TestValidateReportQuery(t *testing.T) {
	tests := []struct {
		name    string
		q       report.Query
		wantErr bool
	}{
		{name: "one month", q: report.Query{From: "2024-01-01", To: "2024-01-31"}},
		{name: "same day", q: report.Query{From: "2024-01-01", To: "2024-01-01"}},
		{name: "full leap year", q: report.Query{From: "2024-01-01", To: "2024-12-31"}},
		{name: "reversed", q: report.Query{From: "2024-02-01", To: "2024-01-01"}, wantErr: true},
		{name: "too long", q: report.Query{From: "2023-01-01", To: "2024-06-01"}, wantErr: true},
		{name: "bad date", q: report.Query{From: "yesterday", To: "2024-01-01"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReportQuery(tt.q)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidReportRange)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestService_SalesReportSkipsBackendOnBadRange(t *testing.T) {
	svc, fb := newService(t, `{"total_orders":3}`)

	_, err := svc.SalesReport(context.Background(), report.Query{From: "2024-03-01", To: "2024-01-01"})
	assert.ErrorIs(t, err, ErrInvalidReportRange)
	assert.Zero(t, fb.count())

	r, err := svc.SalesReport(context.Background(), report.Query{From: "2024-01-01", To: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), r.TotalOrders)
	assert.Equal(t, "/api/reports/sales", fb.last(t).Path)
}
