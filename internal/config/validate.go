// Package config provides the configuration model and helpers for analysis
// pipeline runs.
//
// This file adds a lightweight linter/validator for Config values. It
// performs static checks over a decoded Config and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"

	"eda/internal/schema"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Config.
//
// Path is a dotted path into the config (e.g. "dataset.source.kind",
// "analysis.steps[1].column"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation / linting of a Config.
//
// It does not mutate the config. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
func Validate(c Config) []Issue {
	var issues []Issue

	issues = append(issues, validateSource(c.Dataset.Source)...)
	issues = append(issues, validateSchema(c.Dataset.Schema)...)
	issues = append(issues, validateChecks(c.Checks)...)

	// Transforms may introduce columns that later transforms and analysis
	// steps reference, so the known-kinds map is threaded through in order.
	kinds := kindsByName(c.Dataset.Schema)
	var tIssues []Issue
	tIssues, kinds = validateTransforms(c.Transforms, kinds)
	issues = append(issues, tIssues...)

	issues = append(issues, validateAnalysis(c.Analysis, kinds)...)
	issues = append(issues, validateReport(c.Report)...)
	issues = append(issues, validateLogging(c.Logging)...)
	issues = append(issues, validateMetrics(c.Metrics)...)

	return issues
}

// HasErrors reports whether any issue carries error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// kindsByName indexes declared columns by name for reference checks.
func kindsByName(cols []schema.ColumnSpec) map[string]schema.Kind {
	out := make(map[string]schema.Kind, len(cols))
	for _, c := range cols {
		out[c.Name] = c.Kind
	}
	return out
}

// validateSource validates dataset.source configuration.
func validateSource(s Source) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "dataset.source.kind",
			Message:  "source kind must not be empty",
		})
		return issues
	}

	known := map[string]struct{}{
		"file":     {},
		"inline":   {},
		"sqlite":   {},
		"postgres": {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "dataset.source.kind",
			Message:  fmt.Sprintf("unknown source kind %q; expected file, inline, sqlite, or postgres", s.Kind),
		})
		return issues
	}

	switch s.Kind {
	case "file":
		if strings.TrimSpace(s.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "dataset.source.path",
				Message:  "file source requires a non-empty path",
			})
		}
	case "inline":
		if s.Data == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "dataset.source.data",
				Message:  "inline source requires non-empty data",
			})
		}
	case "sqlite":
		if strings.TrimSpace(s.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "dataset.source.path",
				Message:  "sqlite source requires the database file path",
			})
		}
		if strings.TrimSpace(s.Query) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "dataset.source.query",
				Message:  "sqlite source requires a query",
			})
		}
	case "postgres":
		if strings.TrimSpace(s.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "dataset.source.dsn",
				Message:  "postgres source requires a dsn",
			})
		}
		if strings.TrimSpace(s.Query) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "dataset.source.query",
				Message:  "postgres source requires a query",
			})
		}
	}

	if len(s.Delimiter) > 1 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "dataset.source.delimiter",
			Message:  fmt.Sprintf("delimiter %q is longer than one character; only the first is used", s.Delimiter),
		})
	}

	return issues
}

// validateSchema validates the declared column contract.
func validateSchema(cols []schema.ColumnSpec) []Issue {
	var issues []Issue

	if len(cols) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "dataset.schema",
			Message:  "schema must declare at least one column",
		})
		return issues
	}

	seen := map[string]int{}
	numeric, discrete := 0, 0
	for i, c := range cols {
		path := fmt.Sprintf("dataset.schema[%d]", i)
		if strings.TrimSpace(c.Name) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  "column name must not be empty",
			})
			continue
		}
		if prev, dup := seen[c.Name]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  fmt.Sprintf("column %q already declared at dataset.schema[%d]", c.Name, prev),
			})
		}
		seen[c.Name] = i

		if !c.Kind.Valid() {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".kind",
				Message:  fmt.Sprintf("unknown kind %q; expected numeric, categorical, ordinal, or boolean", c.Kind),
			})
			continue
		}
		if c.Kind == schema.KindNumeric {
			numeric++
		}
		if c.Kind.Discrete() {
			discrete++
		}
	}

	if numeric == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "dataset.schema",
			Message:  "schema requires at least one numeric column",
		})
	}
	if discrete == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "dataset.schema",
			Message:  "schema requires at least one categorical column",
		})
	}

	return issues
}

// validateChecks validates validator thresholds.
func validateChecks(c Checks) []Issue {
	var issues []Issue

	if c.NullThresholdPct < 0 || c.NullThresholdPct > 100 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "checks.null_threshold_pct",
			Message:  fmt.Sprintf("null threshold %.2f must be within [0, 100]", c.NullThresholdPct),
		})
	}
	if c.MaxCategoricalCardinality <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "checks.max_categorical_cardinality",
			Message:  "max categorical cardinality must be positive",
		})
	}

	return issues
}

// validateTransforms validates the transform chain and returns the column
// kind map extended with derived/binned columns, so later references (and
// analysis steps) resolve against the post-transform shape.
func validateTransforms(ops []OpConfig, kinds map[string]schema.Kind) ([]Issue, map[string]schema.Kind) {
	var issues []Issue

	out := make(map[string]schema.Kind, len(kinds))
	for k, v := range kinds {
		out[k] = v
	}

	for i, op := range ops {
		path := fmt.Sprintf("transforms[%d]", i)

		switch op.Kind {
		case "derive":
			if strings.TrimSpace(op.Name) == "" {
				issues = append(issues, Issue{Severity: SeverityError, Path: path + ".name",
					Message: "derive requires the new column name"})
				continue
			}
			if _, exists := out[op.Name]; exists {
				issues = append(issues, Issue{Severity: SeverityError, Path: path + ".name",
					Message: fmt.Sprintf("column %q already exists", op.Name)})
			}
			issues = append(issues, requireNumericRef(out, op.Left, path+".left")...)
			if op.Right != "" && op.RightValue != nil {
				issues = append(issues, Issue{Severity: SeverityError, Path: path + ".right",
					Message: "derive takes either right or right_value, not both"})
			}
			if op.Right != "" {
				issues = append(issues, requireNumericRef(out, op.Right, path+".right")...)
			} else if op.RightValue == nil {
				issues = append(issues, Issue{Severity: SeverityError, Path: path + ".right",
					Message: "derive requires right or right_value"})
			}
			switch op.Operator {
			case "+", "-", "*", "/":
			default:
				issues = append(issues, Issue{Severity: SeverityError, Path: path + ".operator",
					Message: fmt.Sprintf("unknown operator %q; expected +, -, *, or /", op.Operator)})
			}
			out[op.Name] = schema.KindNumeric

		case "bin":
			issues = append(issues, requireNumericRef(out, op.Column, path+".column")...)
			if len(op.Boundaries) < 2 {
				issues = append(issues, Issue{Severity: SeverityError, Path: path + ".boundaries",
					Message: "bin requires at least two boundaries"})
			}
			for j := 1; j < len(op.Boundaries); j++ {
				if op.Boundaries[j] <= op.Boundaries[j-1] {
					issues = append(issues, Issue{Severity: SeverityError, Path: path + ".boundaries",
						Message: "boundaries must be strictly increasing"})
					break
				}
			}
			into := op.Into
			if into == "" && op.Column != "" {
				into = op.Column + "_bin"
			}
			if _, exists := out[into]; exists {
				issues = append(issues, Issue{Severity: SeverityError, Path: path + ".into",
					Message: fmt.Sprintf("column %q already exists", into)})
			}
			if into != "" {
				out[into] = schema.KindCategorical
			}

		case "filter":
			kind, ok := out[op.Column]
			if !ok {
				issues = append(issues, Issue{Severity: SeverityError, Path: path + ".column",
					Message: fmt.Sprintf("column %q is not declared", op.Column)})
			}
			switch op.Operator {
			case "==", "!=":
			case ">", ">=", "<", "<=":
				if ok && kind != schema.KindNumeric {
					issues = append(issues, Issue{Severity: SeverityError, Path: path + ".operator",
						Message: fmt.Sprintf("ordering comparison needs a numeric column; %q is %s", op.Column, kind)})
				}
			default:
				issues = append(issues, Issue{Severity: SeverityError, Path: path + ".operator",
					Message: fmt.Sprintf("unknown operator %q", op.Operator)})
			}
			if op.Value == "" {
				issues = append(issues, Issue{Severity: SeverityError, Path: path + ".value",
					Message: "filter requires a comparison value"})
			}

		case "":
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".kind",
				Message: "transform kind must not be empty"})

		default:
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".kind",
				Message: fmt.Sprintf("unknown transform kind %q; expected derive, bin, or filter", op.Kind)})
		}
	}

	return issues, out
}

// validateAnalysis validates the runner configuration and each declared step
// against the post-transform column kinds.
func validateAnalysis(a Analysis, kinds map[string]schema.Kind) []Issue {
	var issues []Issue

	if a.MinPairedObservations < 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "analysis.min_paired_observations",
			Message:  "min_paired_observations must be at least 1",
		})
	}
	if a.Parallelism < 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "analysis.parallelism",
			Message:  "parallelism must be at least 1",
		})
	}
	if len(a.Steps) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "analysis.steps",
			Message:  "no analysis steps configured; the report will carry no findings",
		})
	}

	names := map[string]int{}
	for i, st := range a.Steps {
		path := fmt.Sprintf("analysis.steps[%d]", i)

		if strings.TrimSpace(st.Name) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".name",
				Message: "step name must not be empty"})
		} else if prev, dup := names[st.Name]; dup {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".name",
				Message: fmt.Sprintf("step name %q already used at analysis.steps[%d]", st.Name, prev)})
		} else {
			names[st.Name] = i
		}

		switch st.Kind {
		case "distribution":
			issues = append(issues, requireNumericRef(kinds, st.Column, path+".column")...)
		case "relationship":
			issues = append(issues, requireNumericRef(kinds, st.X, path+".x")...)
			issues = append(issues, requireNumericRef(kinds, st.Y, path+".y")...)
			if st.X != "" && st.X == st.Y {
				issues = append(issues, Issue{Severity: SeverityWarning, Path: path + ".y",
					Message: "relationship between a column and itself is always 1.0"})
			}
		case "comparison":
			issues = append(issues, requireNumericRef(kinds, st.Column, path+".column")...)
			if kind, ok := kinds[st.GroupBy]; !ok {
				issues = append(issues, Issue{Severity: SeverityError, Path: path + ".group_by",
					Message: fmt.Sprintf("column %q is not declared", st.GroupBy)})
			} else if !kind.Discrete() {
				issues = append(issues, Issue{Severity: SeverityError, Path: path + ".group_by",
					Message: fmt.Sprintf("comparison groups over a categorical column; %q is %s", st.GroupBy, kind)})
			}
		case "outlier":
			issues = append(issues, requireNumericRef(kinds, st.Column, path+".column")...)
			if st.ZThreshold < 0 {
				issues = append(issues, Issue{Severity: SeverityError, Path: path + ".z_threshold",
					Message: "z_threshold must not be negative"})
			}
		case "":
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".kind",
				Message: "step kind must not be empty"})
		default:
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".kind",
				Message: fmt.Sprintf("unknown step kind %q; expected distribution, relationship, comparison, or outlier", st.Kind)})
		}
	}

	return issues
}

// requireNumericRef checks that name references a declared numeric column.
func requireNumericRef(kinds map[string]schema.Kind, name, path string) []Issue {
	if strings.TrimSpace(name) == "" {
		return []Issue{{Severity: SeverityError, Path: path, Message: "column reference must not be empty"}}
	}
	kind, ok := kinds[name]
	if !ok {
		return []Issue{{Severity: SeverityError, Path: path,
			Message: fmt.Sprintf("column %q is not declared", name)}}
	}
	if kind != schema.KindNumeric {
		return []Issue{{Severity: SeverityError, Path: path,
			Message: fmt.Sprintf("column %q must be numeric, got %s", name, kind)}}
	}
	return nil
}

// validateReport validates report output settings.
func validateReport(r Report) []Issue {
	var issues []Issue

	if strings.TrimSpace(r.Output) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "report.output",
			Message:  "report.output must not be empty",
		})
	}
	if r.HeadRows < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "report.head_rows",
			Message:  "head_rows must not be negative",
		})
	}
	if r.Charts.Enabled && strings.TrimSpace(r.Charts.Dir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "report.charts.dir",
			Message:  "charts.dir must not be empty when charts are enabled",
		})
	}

	return issues
}

// validateLogging validates logger settings.
func validateLogging(l Logging) []Issue {
	var issues []Issue

	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "logging.level",
			Message:  fmt.Sprintf("unknown level %q; expected debug, info, warn, or error", l.Level),
		})
	}
	switch l.Format {
	case "console", "json":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "logging.format",
			Message:  fmt.Sprintf("unknown format %q; expected console or json", l.Format),
		})
	}

	return issues
}

// validateMetrics validates metrics backend selection.
func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "", "none":
	case "prometheus":
		if strings.TrimSpace(m.Endpoint) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.endpoint",
				Message:  "prometheus backend requires a pushgateway endpoint",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.Endpoint) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.endpoint",
				Message:  "datadog backend requires a dogstatsd address",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be disabled", m.Backend),
		})
	}

	return issues
}
