package analysis

import (
	"strconv"

	"eda/pkg/frame"
)

// View is a read-only window over the analyzed table. Every accessor returns
// fresh slices, so no step can reach the underlying rows; the ownership rule
// that steps never alter the table is enforced structurally, not by
// convention.
type View struct {
	table frame.Table
}

// NewView wraps t. The table must not be mutated by the caller afterwards.
func NewView(t frame.Table) *View { return &View{table: t} }

// Rows returns the row count.
func (v *View) Rows() int { return v.table.Len() }

// Columns returns a copy of the column order.
func (v *View) Columns() []string {
	out := make([]string, len(v.table.Columns))
	copy(out, v.table.Columns)
	return out
}

// HasColumn reports whether name exists.
func (v *View) HasColumn(name string) bool { return v.table.HasColumn(name) }

// NumericColumn returns the column's values aligned with rows, plus a null
// mask. vals[i] is meaningful only where null[i] is false. Cells of any
// other type count as null here.
func (v *View) NumericColumn(name string) (vals []float64, null []bool) {
	vals = make([]float64, v.table.Len())
	null = make([]bool, v.table.Len())
	for i, row := range v.table.Rows {
		x, ok := row.Number(name)
		if !ok {
			null[i] = true
			continue
		}
		vals[i] = x
	}
	return vals, null
}

// CategoryColumn returns the column's values as strings aligned with rows,
// plus a null mask. Boolean cells stringify to "true"/"false"; numeric cells
// count as null.
func (v *View) CategoryColumn(name string) (vals []string, null []bool) {
	vals = make([]string, v.table.Len())
	null = make([]bool, v.table.Len())
	for i, row := range v.table.Rows {
		switch c := row[name].(type) {
		case string:
			vals[i] = c
		case bool:
			vals[i] = strconv.FormatBool(c)
		default:
			null[i] = true
		}
	}
	return vals, null
}
