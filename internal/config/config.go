// Package config defines the configuration model for the analysis pipeline.
// A run is fully described by one YAML document: where the dataset comes
// from, its column schema, the validation thresholds, the transform chain,
// the ordered analysis steps, and where the report goes.
//
// Decoding is performed by cleanenv so every scalar can also be supplied (or
// overridden) through the environment; the `env-default` tags carry the
// documented defaults.
//
// Example (trimmed):
//
//	dataset:
//	  name: housing
//	  source: {kind: file, path: testdata/housing.csv}
//	  schema:
//	    - {name: price, kind: numeric}
//	    - {name: furnishingstatus, kind: categorical}
//	analysis:
//	  steps:
//	    - {name: price_distribution, kind: distribution, column: price}
//	report:
//	  output: report.md
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"eda/internal/schema"
)

// Config is the top-level object decoded from a run file.
type Config struct {
	Dataset    Dataset    `yaml:"dataset"`
	Checks     Checks     `yaml:"checks"`
	Analysis   Analysis   `yaml:"analysis"`
	Transforms []OpConfig `yaml:"transforms"`
	Report     Report     `yaml:"report"`
	Logging    Logging    `yaml:"logging"`
	Metrics    Metrics    `yaml:"metrics"`
}

// Dataset names the input data and declares its column schema.
type Dataset struct {
	// Name labels the dataset in the report preamble, logs, and metrics.
	Name string `yaml:"name" env:"EDA_DATASET_NAME" env-default:"dataset"`

	// Source describes where rows come from.
	Source Source `yaml:"source"`

	// Schema is the ordered column contract. It is required; columns present
	// in the source but absent here are dropped at load time.
	Schema []schema.ColumnSpec `yaml:"schema"`
}

// Source identifies the data source. Kind selects the implementation.
type Source struct {
	// Kind is one of "file", "inline", "sqlite", "postgres".
	Kind string `yaml:"kind" env:"EDA_SOURCE_KIND" env-default:"file"`

	// Path is the local path for the "file" kind and the database file for
	// the "sqlite" kind.
	Path string `yaml:"path" env:"EDA_SOURCE_PATH"`

	// Data carries literal delimited text for the "inline" kind.
	Data string `yaml:"data"`

	// Delimiter is the field delimiter for delimited-text kinds.
	Delimiter string `yaml:"delimiter" env-default:","`

	// DSN is the connection string for the "postgres" kind.
	DSN string `yaml:"dsn" env:"EDA_SOURCE_DSN"`

	// Query selects rows for the "sqlite" and "postgres" kinds. Column names
	// of the result set are matched against the schema like CSV headers.
	Query string `yaml:"query"`
}

// Checks carries the validator thresholds.
type Checks struct {
	// NullThresholdPct is the numeric-column null percentage at or above
	// which validation warns.
	NullThresholdPct float64 `yaml:"null_threshold_pct" env:"EDA_NULL_THRESHOLD_PCT" env-default:"5.0"`

	// MaxCategoricalCardinality bounds the distinct values of a categorical
	// column so downstream charts stay legible.
	MaxCategoricalCardinality int `yaml:"max_categorical_cardinality" env:"EDA_MAX_CARDINALITY" env-default:"50"`
}

// Analysis configures the runner and its ordered step list.
type Analysis struct {
	// MinPairedObservations is the smallest number of complete (x, y) pairs a
	// relationship step accepts before declining to produce a finding.
	MinPairedObservations int `yaml:"min_paired_observations" env:"EDA_MIN_PAIRED_OBS" env-default:"10"`

	// Parallelism bounds concurrent step execution. 1 runs steps serially;
	// results are merged back into declaration order either way.
	Parallelism int `yaml:"parallelism" env:"EDA_ANALYSIS_PARALLELISM" env-default:"1"`

	// Steps execute in declaration order. Order is part of the narrative:
	// reordering changes the report, not just performance.
	Steps []StepConfig `yaml:"steps"`
}

// StepConfig declares one analysis step. Kind selects the implementation and
// decides which of the column fields are read.
type StepConfig struct {
	// Name identifies the step in finding IDs and logs. Must be unique.
	Name string `yaml:"name"`

	// Kind is one of "distribution", "relationship", "comparison", "outlier".
	Kind string `yaml:"kind"`

	// Column is the numeric subject for distribution, comparison, and outlier.
	Column string `yaml:"column"`

	// X and Y are the numeric pair for relationship.
	X string `yaml:"x"`
	Y string `yaml:"y"`

	// GroupBy is the categorical column a comparison groups over.
	GroupBy string `yaml:"group_by"`

	// ZThreshold is the |z| cutoff for outlier. Zero means the default (3.0).
	ZThreshold float64 `yaml:"z_threshold"`
}

// OpConfig declares one transform. Kind selects the implementation and
// decides which fields are read.
type OpConfig struct {
	// Kind is one of "derive", "bin", "filter".
	Kind string `yaml:"kind"`

	// Name is the new column a derive introduces.
	Name string `yaml:"name"`

	// Left, Operator, Right/RightValue form the derive expression
	// left <op> right. Right names a numeric column; RightValue supplies a
	// constant instead.
	Left       string   `yaml:"left"`
	Operator   string   `yaml:"operator"`
	Right      string   `yaml:"right"`
	RightValue *float64 `yaml:"right_value"`

	// Column is the subject of bin and filter.
	Column string `yaml:"column"`

	// Boundaries are the strictly increasing bin edges.
	Boundaries []float64 `yaml:"boundaries"`

	// Into names the categorical column a bin produces. Empty means
	// "<column>_bin".
	Into string `yaml:"into"`

	// Value is the raw comparison operand for filter; it is coerced to the
	// column's kind.
	Value string `yaml:"value"`
}

// Report configures assembly and output.
type Report struct {
	Title string `yaml:"title" env:"EDA_REPORT_TITLE" env-default:"Exploratory Data Analysis"`

	// Output is the path the rendered markdown is written to.
	Output string `yaml:"output" env:"EDA_REPORT_OUTPUT" env-default:"report.md"`

	// HeadRows is how many sample rows the preamble shows.
	HeadRows int `yaml:"head_rows" env:"EDA_REPORT_HEAD_ROWS" env-default:"5"`

	Charts Charts `yaml:"charts"`
}

// Charts controls optional chart-file rendering next to the report.
type Charts struct {
	Enabled bool   `yaml:"enabled" env:"EDA_CHARTS_ENABLED" env-default:"false"`
	Dir     string `yaml:"dir" env:"EDA_CHARTS_DIR" env-default:"charts"`
}

// Logging selects the log level and encoder.
type Logging struct {
	Level  string `yaml:"level" env:"EDA_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"EDA_LOG_FORMAT" env-default:"console"`
}

// Metrics selects the metrics backend. The default is "none" (no-op).
type Metrics struct {
	Backend  string `yaml:"backend" env:"EDA_METRICS_BACKEND" env-default:"none"`
	Endpoint string `yaml:"endpoint" env:"EDA_METRICS_ENDPOINT"`
	Job      string `yaml:"job" env:"EDA_METRICS_JOB" env-default:"eda"`
}

// Load decodes the YAML file at path and applies environment overrides and
// defaults.
func Load(path string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

// Schema returns the dataset schema as a schema.Schema value.
func (c Config) Schema() schema.Schema {
	return schema.Schema{Columns: c.Dataset.Schema}
}

// Dump renders a configuration back to YAML with every override already
// applied, so what it prints is exactly what a run would use. The output
// loads back through Load unchanged.
func Dump(c Config) ([]byte, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("dump config: %w", err)
	}
	return b, nil
}
