// internal/common/metrics/metrics.go
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	StageRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_stage_runs_total",
			Help: "Pipeline stage executions by result",
		},
		[]string{"stage", "result"},
	)

	StageItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_stage_items_total",
			Help: "Listings that completed a stage",
		},
		[]string{"stage"},
	)

	StageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_stage_failures_total",
			Help: "Stage failures by error code",
		},
		[]string{"stage", "error_code"},
	)

	ListingsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pipeline_listings_in_flight",
			Help: "Listings currently being processed per stage",
		},
		[]string{"stage"},
	)

	RunListings = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pipeline_run_listings",
			Help: "Listings retrieved, accepted and applied in the last run",
		},
		[]string{"outcome"},
	)
)

// Push sends everything g gathers to a Prometheus Pushgateway under job,
// grouped by run id.
func Push(ctx context.Context, g prometheus.Gatherer, url, job, runID string) error {
	pusher := push.New(url, job).Gatherer(g)
	if runID != "" {
		pusher = pusher.Grouping("run_id", runID)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
