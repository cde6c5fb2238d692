// Package transform applies declarative derived-column, binning, and filter
// operations to a table. Every operation returns a fresh table so earlier
// pipeline stages keep their values; pre-transform statistics stay comparable
// against post-transform statistics.
package transform

import (
	"fmt"

	"eda/internal/schema"
	"eda/pkg/frame"
)

// Op is one table operation.
type Op interface {
	// Kind names the operation for logs and error context.
	Kind() string
	// Apply produces a new table; in is never mutated.
	Apply(in frame.Table) (frame.Table, error)
}

// Chain is an ordered list of operations.
type Chain []Op

// Apply runs each operation in declared order. An empty chain returns a
// clone equal in content to its input.
func (c Chain) Apply(in frame.Table) (frame.Table, error) {
	if len(c) == 0 {
		return in.Clone(), nil
	}
	out := in
	for i, op := range c {
		next, err := op.Apply(out)
		if err != nil {
			return frame.Table{}, fmt.Errorf("op %d (%s): %w", i+1, op.Kind(), err)
		}
		out = next
	}
	return out, nil
}

// Schema projects the column contract a chain produces: every derive
// contributes a nullable numeric column and every bin a nullable categorical
// one. Filters leave columns untouched. The projection is total: an op
// naming an existing column replaces that column's spec in place, even
// though Apply rejects such a chain at runtime.
func (c Chain) Schema(in schema.Schema) schema.Schema {
	cols := make([]schema.ColumnSpec, len(in.Columns), len(in.Columns)+len(c))
	copy(cols, in.Columns)
	for _, op := range c {
		switch o := op.(type) {
		case *Derive:
			cols = setColumn(cols, schema.ColumnSpec{Name: o.Name, Kind: schema.KindNumeric, Nullable: true})
		case *Bin:
			cols = setColumn(cols, schema.ColumnSpec{Name: o.Target(), Kind: schema.KindCategorical, Nullable: true})
		}
	}
	return schema.Schema{Columns: cols}
}

func setColumn(cols []schema.ColumnSpec, spec schema.ColumnSpec) []schema.ColumnSpec {
	for i, col := range cols {
		if col.Name == spec.Name {
			cols[i] = spec
			return cols
		}
	}
	return append(cols, spec)
}
