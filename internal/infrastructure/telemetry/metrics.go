package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"

	"github.com/neighbourhood/backend/internal/infrastructure/config"
)

// MeterProvider wraps the OpenTelemetry MeterProvider with lifecycle
// management
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
}

// NewMeterProvider configures periodic OTLP gRPC metric export
func NewMeterProvider(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{logger: logger}

	if !cfg.Enabled {
		logger.Info("Metrics disabled, using no-op meter provider")
		return mp, nil
	}

	exporterOpts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint),
	}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(60*time.Second)),
		),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry metrics initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint))
	return mp, nil
}

// Shutdown flushes pending metrics
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := mp.provider.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

// IngestionMetrics holds the instruments recorded by the ingestion
// pipeline and the recommendation service
type IngestionMetrics struct {
	cycles          metric.Int64Counter
	recordsIngested metric.Int64Counter
	geocodeLookups  metric.Int64Counter
	recommendations metric.Int64Counter
	cycleDuration   metric.Float64Histogram
}

// NewIngestionMetrics creates the instrument set on the global meter
func NewIngestionMetrics() (*IngestionMetrics, error) {
	meter := otel.Meter("atm-backend")

	cycles, err := meter.Int64Counter("ingestion.cycles",
		metric.WithDescription("Completed ingestion cycles by outcome"))
	if err != nil {
		return nil, err
	}
	records, err := meter.Int64Counter("ingestion.records",
		metric.WithDescription("Provider records processed"))
	if err != nil {
		return nil, err
	}
	lookups, err := meter.Int64Counter("geocoding.lookups",
		metric.WithDescription("Coordinate lookups by cache tier"))
	if err != nil {
		return nil, err
	}
	recs, err := meter.Int64Counter("recommendations.served",
		metric.WithDescription("Recommendation requests served"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("ingestion.cycle_duration_seconds",
		metric.WithDescription("Wall time of a full ingestion cycle"))
	if err != nil {
		return nil, err
	}

	return &IngestionMetrics{
		cycles:          cycles,
		recordsIngested: records,
		geocodeLookups:  lookups,
		recommendations: recs,
		cycleDuration:   duration,
	}, nil
}

// RecordCycle records a completed cycle and its duration
func (m *IngestionMetrics) RecordCycle(ctx context.Context, outcome string, elapsed time.Duration) {
	m.cycles.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.cycleDuration.Record(ctx, elapsed.Seconds())
}

// RecordRecords counts processed and skipped provider records
func (m *IngestionMetrics) RecordRecords(ctx context.Context, processed, skipped int) {
	m.recordsIngested.Add(ctx, int64(processed), metric.WithAttributes(attribute.String("result", "processed")))
	m.recordsIngested.Add(ctx, int64(skipped), metric.WithAttributes(attribute.String("result", "skipped")))
}

// RecordGeocodeLookup counts a lookup against a named cache tier
func (m *IngestionMetrics) RecordGeocodeLookup(ctx context.Context, tier string) {
	m.geocodeLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("tier", tier)))
}

// RecordRecommendation counts one served recommendation request
func (m *IngestionMetrics) RecordRecommendation(ctx context.Context, results int) {
	m.recommendations.Add(ctx, 1, metric.WithAttributes(attribute.Int("results", results)))
}
