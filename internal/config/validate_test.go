package config

import (
	"strings"
	"testing"

	"eda/internal/schema"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

// validConfig returns a config that passes validation with zero issues of
// error severity; individual tests break one piece at a time.
func validConfig() Config {
	return Config{
		Dataset: Dataset{
			Name:   "housing",
			Source: Source{Kind: "file", Path: "testdata/housing.csv", Delimiter: ","},
			Schema: []schema.ColumnSpec{
				{Name: "price", Kind: schema.KindNumeric},
				{Name: "area", Kind: schema.KindNumeric},
				{Name: "furnishingstatus", Kind: schema.KindCategorical},
			},
		},
		Checks: Checks{NullThresholdPct: 5.0, MaxCategoricalCardinality: 50},
		Analysis: Analysis{
			MinPairedObservations: 10,
			Parallelism:           1,
			Steps: []StepConfig{
				{Name: "price_distribution", Kind: "distribution", Column: "price"},
				{Name: "area_vs_price", Kind: "relationship", X: "area", Y: "price"},
				{Name: "price_by_furnishing", Kind: "comparison", Column: "price", GroupBy: "furnishingstatus"},
				{Name: "price_outliers", Kind: "outlier", Column: "price", ZThreshold: 3},
			},
		},
		Transforms: []OpConfig{
			{Kind: "derive", Name: "price_per_area", Left: "price", Operator: "/", Right: "area"},
			{Kind: "bin", Column: "area", Boundaries: []float64{0, 5000, 10000}},
			{Kind: "filter", Column: "price", Operator: ">", Value: "0"},
		},
		Report:  Report{Title: "Housing EDA", Output: "report.md", HeadRows: 5, Charts: Charts{Dir: "charts"}},
		Logging: Logging{Level: "info", Format: "console"},
		Metrics: Metrics{Backend: "none", Job: "eda"},
	}
}

/*
TestValidate_ValidConfig verifies that a fully populated, well-formed config
produces no error-severity issues.
*/
func TestValidate_ValidConfig(t *testing.T) {
	issues := Validate(validConfig())
	if HasErrors(issues) {
		t.Fatalf("expected no errors, got: %+v", issues)
	}
}

func TestValidate_SourceKinds(t *testing.T) {
	c := validConfig()
	c.Dataset.Source = Source{Kind: "ftp"}
	if !hasIssue(t, Validate(c), SeverityError, "dataset.source.kind", "unknown source kind") {
		t.Fatalf("unknown source kind not reported")
	}

	c.Dataset.Source = Source{Kind: "file"}
	if !hasIssue(t, Validate(c), SeverityError, "dataset.source.path", "non-empty path") {
		t.Fatalf("missing file path not reported")
	}

	c.Dataset.Source = Source{Kind: "sqlite", Path: "db.sqlite"}
	if !hasIssue(t, Validate(c), SeverityError, "dataset.source.query", "requires a query") {
		t.Fatalf("missing sqlite query not reported")
	}

	c.Dataset.Source = Source{Kind: "postgres", Query: "select 1"}
	if !hasIssue(t, Validate(c), SeverityError, "dataset.source.dsn", "requires a dsn") {
		t.Fatalf("missing postgres dsn not reported")
	}

	c.Dataset.Source = Source{Kind: "inline"}
	if !hasIssue(t, Validate(c), SeverityError, "dataset.source.data", "non-empty data") {
		t.Fatalf("missing inline data not reported")
	}
}

func TestValidate_SchemaRules(t *testing.T) {
	c := validConfig()
	c.Dataset.Schema = nil
	if !hasIssue(t, Validate(c), SeverityError, "dataset.schema", "at least one column") {
		t.Fatalf("empty schema not reported")
	}

	c = validConfig()
	c.Dataset.Schema = append(c.Dataset.Schema, schema.ColumnSpec{Name: "price", Kind: schema.KindNumeric})
	if !hasIssue(t, Validate(c), SeverityError, "dataset.schema[3].name", "already declared") {
		t.Fatalf("duplicate column not reported")
	}

	c = validConfig()
	c.Dataset.Schema = []schema.ColumnSpec{
		{Name: "a", Kind: schema.KindCategorical},
		{Name: "b", Kind: schema.KindCategorical},
	}
	if !hasIssue(t, Validate(c), SeverityError, "dataset.schema", "at least one numeric") {
		t.Fatalf("missing numeric column not reported")
	}

	c = validConfig()
	c.Dataset.Schema = []schema.ColumnSpec{
		{Name: "a", Kind: schema.KindNumeric},
		{Name: "b", Kind: schema.KindNumeric},
	}
	if !hasIssue(t, Validate(c), SeverityError, "dataset.schema", "at least one categorical") {
		t.Fatalf("missing categorical column not reported")
	}

	c = validConfig()
	c.Dataset.Schema[0].Kind = schema.Kind("decimal")
	if !hasIssue(t, Validate(c), SeverityError, "dataset.schema[0].kind", "unknown kind") {
		t.Fatalf("unknown kind not reported")
	}
}

func TestValidate_StepReferences(t *testing.T) {
	c := validConfig()
	c.Analysis.Steps = []StepConfig{{Name: "s", Kind: "distribution", Column: "bedrooms"}}
	if !hasIssue(t, Validate(c), SeverityError, "analysis.steps[0].column", "not declared") {
		t.Fatalf("undeclared step column not reported")
	}

	c = validConfig()
	c.Analysis.Steps = []StepConfig{{Name: "s", Kind: "distribution", Column: "furnishingstatus"}}
	if !hasIssue(t, Validate(c), SeverityError, "analysis.steps[0].column", "must be numeric") {
		t.Fatalf("non-numeric distribution column not reported")
	}

	c = validConfig()
	c.Analysis.Steps = []StepConfig{{Name: "s", Kind: "comparison", Column: "price", GroupBy: "area"}}
	if !hasIssue(t, Validate(c), SeverityError, "analysis.steps[0].group_by", "categorical") {
		t.Fatalf("numeric group_by not reported")
	}

	c = validConfig()
	c.Analysis.Steps = []StepConfig{{Name: "s", Kind: "teleport", Column: "price"}}
	if !hasIssue(t, Validate(c), SeverityError, "analysis.steps[0].kind", "unknown step kind") {
		t.Fatalf("unknown step kind not reported")
	}

	c = validConfig()
	c.Analysis.Steps = []StepConfig{
		{Name: "dup", Kind: "distribution", Column: "price"},
		{Name: "dup", Kind: "distribution", Column: "area"},
	}
	if !hasIssue(t, Validate(c), SeverityError, "analysis.steps[1].name", "already used") {
		t.Fatalf("duplicate step name not reported")
	}
}

/*
TestValidate_StepsSeeDerivedColumns verifies that analysis steps may reference
columns introduced by the transform chain, since the runner executes after
transforms.
*/
func TestValidate_StepsSeeDerivedColumns(t *testing.T) {
	c := validConfig()
	c.Analysis.Steps = append(c.Analysis.Steps, StepConfig{
		Name: "ppa_distribution", Kind: "distribution", Column: "price_per_area",
	})
	c.Analysis.Steps = append(c.Analysis.Steps, StepConfig{
		Name: "price_by_area_bin", Kind: "comparison", Column: "price", GroupBy: "area_bin",
	})
	issues := Validate(c)
	if HasErrors(issues) {
		t.Fatalf("derived/binned references should validate, got: %+v", issues)
	}
}

func TestValidate_TransformRules(t *testing.T) {
	c := validConfig()
	c.Transforms = []OpConfig{{Kind: "derive", Name: "price", Left: "price", Operator: "+", Right: "area"}}
	if !hasIssue(t, Validate(c), SeverityError, "transforms[0].name", "already exists") {
		t.Fatalf("derive onto existing column not reported")
	}

	c = validConfig()
	c.Transforms = []OpConfig{{Kind: "derive", Name: "x", Left: "price", Operator: "%", Right: "area"}}
	if !hasIssue(t, Validate(c), SeverityError, "transforms[0].operator", "unknown operator") {
		t.Fatalf("unknown derive operator not reported")
	}

	c = validConfig()
	c.Transforms = []OpConfig{{Kind: "bin", Column: "area", Boundaries: []float64{10, 10, 20}}}
	if !hasIssue(t, Validate(c), SeverityError, "transforms[0].boundaries", "strictly increasing") {
		t.Fatalf("non-increasing boundaries not reported")
	}

	c = validConfig()
	c.Transforms = []OpConfig{{Kind: "filter", Column: "furnishingstatus", Operator: ">", Value: "1"}}
	if !hasIssue(t, Validate(c), SeverityError, "transforms[0].operator", "ordering comparison") {
		t.Fatalf("ordering filter on categorical column not reported")
	}

	c = validConfig()
	v := 2.0
	c.Transforms = []OpConfig{{Kind: "derive", Name: "x", Left: "price", Operator: "*", Right: "area", RightValue: &v}}
	if !hasIssue(t, Validate(c), SeverityError, "transforms[0].right", "not both") {
		t.Fatalf("derive with both right and right_value not reported")
	}
}

func TestValidate_ThresholdsAndReport(t *testing.T) {
	c := validConfig()
	c.Checks.NullThresholdPct = 120
	if !hasIssue(t, Validate(c), SeverityError, "checks.null_threshold_pct", "within [0, 100]") {
		t.Fatalf("out-of-range threshold not reported")
	}

	c = validConfig()
	c.Report.Output = ""
	if !hasIssue(t, Validate(c), SeverityError, "report.output", "must not be empty") {
		t.Fatalf("empty output not reported")
	}

	c = validConfig()
	c.Metrics = Metrics{Backend: "prometheus"}
	if !hasIssue(t, Validate(c), SeverityError, "metrics.endpoint", "pushgateway endpoint") {
		t.Fatalf("missing pushgateway endpoint not reported")
	}

	c = validConfig()
	c.Metrics = Metrics{Backend: "datadog"}
	if !hasIssue(t, Validate(c), SeverityError, "metrics.endpoint", "dogstatsd address") {
		t.Fatalf("missing dogstatsd address not reported")
	}

	c = validConfig()
	c.Logging.Level = "chatty"
	if !hasIssue(t, Validate(c), SeverityError, "logging.level", "unknown level") {
		t.Fatalf("unknown log level not reported")
	}
}
