// internal/common/observability/metrics.go
package observability

import (
	"context"
	"time"

	"wanted-applier/internal/common/logger"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records per-stage timings through OpenTelemetry and exposes
// them to Prometheus, next to the promauto counters.
type Observability struct {
	meterProvider *metric.MeterProvider
	stageRuns     otelmetric.Int64Counter
	stageDuration otelmetric.Float64Histogram
	listings      otelmetric.Int64Histogram
}

func New(serviceName string, log logger.Logger) *Observability {
	return NewWithRegisterer(serviceName, promclient.DefaultRegisterer, log)
}

// NewWithRegisterer is New with an explicit Prometheus registerer. A failing
// exporter yields a no-op Observability.
func NewWithRegisterer(serviceName string, reg promclient.Registerer, log logger.Logger) *Observability {
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		log.Warn("Failed to create Prometheus exporter", map[string]interface{}{
			"error": err.Error(),
		})
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	stageRuns, _ := meter.Int64Counter(
		"pipeline.stage.runs",
		otelmetric.WithDescription("Number of stage executions"),
	)

	stageDuration, _ := meter.Float64Histogram(
		"pipeline.stage.duration",
		otelmetric.WithDescription("Stage wall-clock duration"),
		otelmetric.WithUnit("ms"),
	)

	listings, _ := meter.Int64Histogram(
		"pipeline.stage.listings",
		otelmetric.WithDescription("Listings produced by a stage"),
	)

	return &Observability{
		meterProvider: provider,
		stageRuns:     stageRuns,
		stageDuration: stageDuration,
		listings:      listings,
	}
}

// RecordStage records one finished stage. result is "ok", "empty" or "failed".
func (o *Observability) RecordStage(ctx context.Context, stage, result string, duration time.Duration, produced int) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("result", result),
	)
	if o.stageRuns != nil {
		o.stageRuns.Add(ctx, 1, attrs)
	}
	if o.stageDuration != nil {
		o.stageDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
	if o.listings != nil {
		o.listings.Record(ctx, int64(produced), otelmetric.WithAttributes(attribute.String("stage", stage)))
	}
}

func (o *Observability) Shutdown() {
	if o != nil && o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
