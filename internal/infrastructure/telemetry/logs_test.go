package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/erp/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// memoryExporter keeps exported records for assertions
type memoryExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *memoryExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *memoryExporter) Shutdown(context.Context) error   { return nil }
func (e *memoryExporter) ForceFlush(context.Context) error { return nil }

func (e *memoryExporter) exported() []sdklog.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sdklog.Record(nil), e.records...)
}

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	lp, err := NewLoggerProvider(ctx, config.TelemetryConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "storefront-test",
	}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	assert.False(t, lp.Core(zapcore.DebugLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, lp.ForceFlush(ctx))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestLoggerProvider_NilCore(t *testing.T) {
	var lp *LoggerProvider
	assert.False(t, lp.Core(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
}

func TestLoggerProvider_BridgesZapRecords(t *testing.T) {
	ctx := context.Background()
	exporter := &memoryExporter{}
	lp, err := newLoggerProvider(
		config.TelemetryConfig{LogsEnabled: true, ServiceName: "storefront-test"},
		sdklog.NewSimpleProcessor(exporter),
		zap.NewNop(),
	)
	require.NoError(t, err)
	assert.True(t, lp.IsEnabled())

	stdout, observed := observer.New(zapcore.DebugLevel)
	log := zap.New(zapcore.NewTee(stdout, lp.Core(zapcore.InfoLevel)))

	log.Debug("cache miss", zap.String("key", "catalog:p1"))
	log.With(zap.String("request_id", "req-7")).
		Warn("Guest cart merge failed", zap.String("cart_id", "c-1"))

	require.NoError(t, lp.ForceFlush(ctx))

	// stdout keeps every level; the bridge only ships info and above
	assert.Equal(t, 2, observed.Len())

	records := exporter.exported()
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "Guest cart merge failed", r.Body().AsString())
	assert.Equal(t, otellog.SeverityWarn, r.Severity())

	attrs := map[string]string{}
	r.WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value.AsString()
		return true
	})
	assert.Equal(t, "c-1", attrs["cart_id"])
	assert.Equal(t, "req-7", attrs["request_id"])

	assert.NoError(t, lp.Shutdown(ctx))
}
