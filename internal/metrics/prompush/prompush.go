// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the pipeline labels (job, stage, status) onto Prometheus labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead of
//     exposing an HTTP scrape endpoint, since an analysis run is a batch job
//     that exits before any scraper would reach it.
//
// The package intentionally contains all Prometheus-specific dependencies so
// that the rest of the module remains decoupled from Prometheus and can swap
// to alternative backends (e.g. Datadog) without changes to the pipeline.
package prompush

import (
	"fmt"

	"eda/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	// Stage-level metrics
	stageCounter  *prometheus.CounterVec // "eda_stage_total"
	stageDuration *prometheus.SummaryVec // "eda_stage_duration_seconds"

	// Row-level metrics
	rowCounter *prometheus.CounterVec // "eda_rows_total"

	// Run-level metrics
	findingCounter prometheus.Counter // "eda_findings_total"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (the dataset name in practice).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "eda"
	}

	reg := prometheus.NewRegistry()

	// stage and status are dynamic labels; job is the Pushgateway grouping
	// key and is not repeated as a collector label.
	stageCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eda_stage_total",
			Help: "Total number of pipeline stage executions, partitioned by stage and status.",
		},
		[]string{"stage", "status"},
	)
	stageDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "eda_stage_duration_seconds",
			Help:       "Duration of pipeline stages in seconds, partitioned by stage and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"stage", "status"},
	)

	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eda_rows_total",
			Help: "Row counts per stage (loaded, transformed, filtered_out, etc.).",
		},
		[]string{"stage"},
	)

	findingCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "eda_findings_total",
			Help: "Total number of findings produced by this analysis job.",
		},
	)

	if err := reg.Register(stageCounter); err != nil {
		return nil, fmt.Errorf("prompush: register stage counter: %w", err)
	}
	if err := reg.Register(stageDuration); err != nil {
		return nil, fmt.Errorf("prompush: register stage summary: %w", err)
	}
	if err := reg.Register(rowCounter); err != nil {
		return nil, fmt.Errorf("prompush: register row counter: %w", err)
	}
	if err := reg.Register(findingCounter); err != nil {
		return nil, fmt.Errorf("prompush: register finding counter: %w", err)
	}

	return &Backend{
		gatewayURL:     gatewayURL,
		jobName:        jobName,
		reg:            reg,
		stageCounter:   stageCounter,
		stageDuration:  stageDuration,
		rowCounter:     rowCounter,
		findingCounter: findingCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "eda_stage_total":
		if b.stageCounter == nil {
			return
		}
		stage := labels["stage"]
		status := labels["status"]
		b.stageCounter.WithLabelValues(stage, status).Add(delta)

	case "eda_rows_total":
		if b.rowCounter == nil {
			return
		}
		stage := labels["stage"]
		b.rowCounter.WithLabelValues(stage).Add(delta)

	case "eda_findings_total":
		if b.findingCounter == nil {
			return
		}
		b.findingCounter.Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "eda_stage_duration_seconds" || b.stageDuration == nil {
		return
	}
	stage := labels["stage"]
	status := labels["status"]
	b.stageDuration.WithLabelValues(stage, status).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
