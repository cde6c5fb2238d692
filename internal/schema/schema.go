// Package schema declares the column contract a dataset is loaded, validated,
// and profiled against. The schema is always declared in configuration, never
// inferred from the data; the loader uses it to coerce raw text into typed
// cells so that column kind stays an enforced invariant.
package schema

// Kind classifies a column for coercion, validation, and profiling.
type Kind string

const (
	// KindNumeric columns coerce to float64 and receive range/moment statistics.
	KindNumeric Kind = "numeric"
	// KindCategorical columns stay strings and receive frequency tables.
	KindCategorical Kind = "categorical"
	// KindOrdinal columns are categorical columns whose declared value order is
	// meaningful. They profile like categoricals.
	KindOrdinal Kind = "ordinal"
	// KindBoolean columns coerce to bool and profile as two-category columns.
	KindBoolean Kind = "boolean"
)

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindNumeric, KindCategorical, KindOrdinal, KindBoolean:
		return true
	}
	return false
}

// Discrete reports whether values of this kind profile as discrete categories
// (frequency tables, cardinality checks) rather than as numbers.
func (k Kind) Discrete() bool {
	return k == KindCategorical || k == KindOrdinal || k == KindBoolean
}

// ColumnSpec describes one expected column.
type ColumnSpec struct {
	// Name is the canonical column name. Source headers are normalized
	// (lowercased, accents folded, separators collapsed to underscores) before
	// being matched against it.
	Name string `yaml:"name" json:"name"`

	// Kind selects coercion and profiling behavior.
	Kind Kind `yaml:"kind" json:"kind"`

	// Nullable permits null cells. Non-nullable columns with any null fail
	// validation.
	Nullable bool `yaml:"nullable" json:"nullable"`
}

// Schema is the ordered column contract. Column order here is the column
// order of every loaded table, profile, and report section.
type Schema struct {
	Columns []ColumnSpec `yaml:"columns" json:"columns"`
}

// Column returns the spec for name.
func (s Schema) Column(name string) (ColumnSpec, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// Names returns all column names in declaration order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// Numeric returns the numeric column names in declaration order.
func (s Schema) Numeric() []string {
	var out []string
	for _, c := range s.Columns {
		if c.Kind == KindNumeric {
			out = append(out, c.Name)
		}
	}
	return out
}

// Discrete returns the categorical-like column names (categorical, ordinal,
// boolean) in declaration order.
func (s Schema) Discrete() []string {
	var out []string
	for _, c := range s.Columns {
		if c.Kind.Discrete() {
			out = append(out, c.Name)
		}
	}
	return out
}
