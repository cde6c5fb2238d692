// Package metrics is the backend-agnostic telemetry facade for the analysis
// pipeline.
//
// The facade is deliberately narrow:
//
//   - Backend covers counters and duration observations, nothing else.
//   - A global, pluggable backend defaults to a no-op implementation, so
//     stages record metrics unconditionally and configuration decides whether
//     anything leaves the process.
//   - Concrete systems live in subpackages (prompush, datadog); the rest of
//     the module depends only on this interface.
//
// Recorded series: per-stage execution counts and durations (load, validate,
// profile, transform, analyze, render, report), row counts entering and
// leaving stages, and the number of findings a run produced. Metrics never
// influence report bytes.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a duration-style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStage measures one pipeline stage execution: latency plus a
// success/failure count, labeled by job and stage.
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status,
	}

	backend.IncCounter("eda_stage_total", 1, lbls)
	backend.ObserveHistogram("eda_stage_duration_seconds", d.Seconds(), lbls)
}

// AddRows counts rows flowing through a stage.
//
// Typical stages: "loaded", "transformed", "filtered_out".
func AddRows(job, stage string, n int) {
	if n <= 0 {
		return
	}
	backend.IncCounter("eda_rows_total", float64(n), Labels{
		"job":   job,
		"stage": stage,
	})
}

// AddFindings counts the findings a run produced.
func AddFindings(job string, n int) {
	if n <= 0 {
		return
	}
	backend.IncCounter("eda_findings_total", float64(n), Labels{
		"job": job,
	})
}
