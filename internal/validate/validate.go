// Package validate runs a fixed battery of dataset checks against the
// declared schema. Every applicable (check, column) pair is recorded in the
// report, passes included, so a run is auditable after the fact.
package validate

import (
	"fmt"
	"strings"

	"eda/internal/schema"
	"eda/pkg/frame"
)

// Severity grades one check result.
type Severity string

const (
	SeverityPass Severity = "pass"
	SeverityWarn Severity = "warn"
	SeverityFail Severity = "fail"
)

// Check names, in battery order.
const (
	CheckAllNull     = "all_null"
	CheckNullRatio   = "null_ratio"
	CheckCardinality = "cardinality"
	CheckNonNullable = "non_nullable"
)

// CheckResult is one check applied to one column.
type CheckResult struct {
	Check    string
	Column   string
	Severity Severity
	Message  string
}

// Options bound the warn-level checks.
type Options struct {
	// NullThresholdPct is the numeric-column null percentage at or above
	// which null_ratio warns. Negative values are treated as zero.
	NullThresholdPct float64
	// MaxCategoricalCardinality is the largest distinct-value count a
	// categorical or ordinal column may have without a warning.
	MaxCategoricalCardinality int
}

// Defaults applied when an Options field is unset.
const (
	DefaultNullThresholdPct          = 5.0
	DefaultMaxCategoricalCardinality = 50
)

// DefaultOptions returns the stock thresholds.
func DefaultOptions() Options {
	return Options{
		NullThresholdPct:          DefaultNullThresholdPct,
		MaxCategoricalCardinality: DefaultMaxCategoricalCardinality,
	}
}

// Report is the ordered outcome of the full battery.
type Report struct {
	Results []CheckResult
}

// Failed returns the fail-severity results.
func (r Report) Failed() []CheckResult { return r.bySeverity(SeverityFail) }

// Warnings returns the warn-severity results.
func (r Report) Warnings() []CheckResult { return r.bySeverity(SeverityWarn) }

func (r Report) bySeverity(s Severity) []CheckResult {
	var out []CheckResult
	for _, res := range r.Results {
		if res.Severity == s {
			out = append(out, res)
		}
	}
	return out
}

// Err returns a *FailedError when any check failed, nil otherwise.
func (r Report) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	return &FailedError{Failed: failed}
}

// FailedError halts the pipeline before profiling when any check fails.
type FailedError struct {
	Failed []CheckResult
}

func (e *FailedError) Error() string {
	parts := make([]string, len(e.Failed))
	for i, r := range e.Failed {
		parts[i] = fmt.Sprintf("%s(%s): %s", r.Check, r.Column, r.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Run applies the battery to t in a fixed order: all_null over every column,
// null_ratio over numeric columns, cardinality over categorical and ordinal
// columns, non_nullable over columns declared as such. Within each check,
// columns are visited in schema order.
func Run(t frame.Table, sc schema.Schema, opts Options) Report {
	if opts.MaxCategoricalCardinality <= 0 {
		opts.MaxCategoricalCardinality = DefaultMaxCategoricalCardinality
	}
	if opts.NullThresholdPct < 0 {
		opts.NullThresholdPct = 0
	}

	rows := t.Len()
	nulls := make(map[string]int, len(sc.Columns))
	for _, col := range sc.Columns {
		n := 0
		for _, row := range t.Rows {
			if row.Null(col.Name) {
				n++
			}
		}
		nulls[col.Name] = n
	}

	var results []CheckResult

	for _, col := range sc.Columns {
		n := nulls[col.Name]
		if rows > 0 && n == rows {
			results = append(results, CheckResult{
				Check: CheckAllNull, Column: col.Name, Severity: SeverityFail,
				Message: fmt.Sprintf("all %d values are null", rows),
			})
			continue
		}
		results = append(results, CheckResult{
			Check: CheckAllNull, Column: col.Name, Severity: SeverityPass,
			Message: fmt.Sprintf("%d of %d values null", n, rows),
		})
	}

	for _, col := range sc.Numeric() {
		n := nulls[col.Name]
		pct := 0.0
		if rows > 0 {
			pct = 100 * float64(n) / float64(rows)
		}
		if n > 0 && pct >= opts.NullThresholdPct {
			results = append(results, CheckResult{
				Check: CheckNullRatio, Column: col.Name, Severity: SeverityWarn,
				Message: fmt.Sprintf("null ratio %g%% at or above threshold %g%%", pct, opts.NullThresholdPct),
			})
			continue
		}
		results = append(results, CheckResult{
			Check: CheckNullRatio, Column: col.Name, Severity: SeverityPass,
			Message: fmt.Sprintf("null ratio %g%% below threshold %g%%", pct, opts.NullThresholdPct),
		})
	}

	for _, col := range sc.Columns {
		if col.Kind != schema.KindCategorical && col.Kind != schema.KindOrdinal {
			continue
		}
		distinct := countDistinct(t, col.Name)
		if distinct > opts.MaxCategoricalCardinality {
			results = append(results, CheckResult{
				Check: CheckCardinality, Column: col.Name, Severity: SeverityWarn,
				Message: fmt.Sprintf("%d distinct values exceed maximum %d", distinct, opts.MaxCategoricalCardinality),
			})
			continue
		}
		results = append(results, CheckResult{
			Check: CheckCardinality, Column: col.Name, Severity: SeverityPass,
			Message: fmt.Sprintf("%d distinct values within maximum %d", distinct, opts.MaxCategoricalCardinality),
		})
	}

	for _, col := range sc.Columns {
		if col.Nullable {
			continue
		}
		if n := nulls[col.Name]; n > 0 {
			results = append(results, CheckResult{
				Check: CheckNonNullable, Column: col.Name, Severity: SeverityFail,
				Message: fmt.Sprintf("%d nulls in non-nullable column", n),
			})
			continue
		}
		results = append(results, CheckResult{
			Check: CheckNonNullable, Column: col.Name, Severity: SeverityPass,
			Message: "no nulls",
		})
	}

	return Report{Results: results}
}

func countDistinct(t frame.Table, col string) int {
	seen := make(map[string]struct{})
	for _, row := range t.Rows {
		if s, ok := row.Text(col); ok {
			seen[s] = struct{}{}
		}
	}
	return len(seen)
}
