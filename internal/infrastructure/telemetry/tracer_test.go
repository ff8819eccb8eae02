package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neighbourhood/backend/internal/infrastructure/config"
)

func TestNewTracerProviderDisabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), config.TelemetryConfig{Enabled: false}, zap.NewNop())

	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewMeterProviderDisabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), config.TelemetryConfig{Enabled: false}, zap.NewNop())

	require.NoError(t, err)
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestNewLoggerProviderDisabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), config.TelemetryConfig{Enabled: false}, zap.NewNop())

	require.NoError(t, err)
	core := lp.BridgeCore("atm-backend")
	assert.NotNil(t, core)
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestNewProfilerDisabled(t *testing.T) {
	p, err := NewProfiler(config.TelemetryConfig{ProfilingEnabled: false}, zap.NewNop())

	require.NoError(t, err)
	assert.NoError(t, p.Stop())
}

func TestNewProfilerRequiresEndpoint(t *testing.T) {
	_, err := NewProfiler(config.TelemetryConfig{ProfilingEnabled: true}, zap.NewNop())
	assert.Error(t, err)
}

func TestIngestionMetrics(t *testing.T) {
	m, err := NewIngestionMetrics()
	require.NoError(t, err)

	// No-op global meter: recording must not panic.
	ctx := context.Background()
	m.RecordCycle(ctx, "success", 0)
	m.RecordRecords(ctx, 10, 2)
	m.RecordGeocodeLookup(ctx, "memory")
	m.RecordRecommendation(ctx, 3)
}
