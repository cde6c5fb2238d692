// Package frame defines the in-memory tabular value model passed between
// pipeline stages. A Table is an ordered set of rows; every stage that
// produces a Table produces a fresh value, so downstream code can hold on to
// one without worrying about upstream mutation.
package frame

// Row maps a column name to a cell value. A cell holds exactly one of
// float64, string, bool, or nil (null). Keeping the dynamic types this small
// lets consumers switch on them exhaustively.
type Row map[string]any

// Number returns the numeric cell for col. ok is false when the cell is
// null, missing, or not numeric.
func (r Row) Number(col string) (float64, bool) {
	v, ok := r[col].(float64)
	return v, ok
}

// Text returns the string cell for col. ok is false when the cell is null,
// missing, or not a string.
func (r Row) Text(col string) (string, bool) {
	v, ok := r[col].(string)
	return v, ok
}

// Flag returns the boolean cell for col. ok is false when the cell is null,
// missing, or not a bool.
func (r Row) Flag(col string) (bool, bool) {
	v, ok := r[col].(bool)
	return v, ok
}

// Null reports whether the cell for col is null (or absent).
func (r Row) Null(col string) bool {
	v, ok := r[col]
	return !ok || v == nil
}

// Clone returns a copy of the row sharing no storage with the original.
// Cell values are scalars, so a shallow map copy is a deep copy.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered sequence of rows. Columns fixes the column order for
// every consumer (profiles, reports, charts); Rows preserve source order.
type Table struct {
	Columns []string
	Rows    []Row
}

// New returns an empty table with the given column order.
func New(columns []string) Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return Table{Columns: cols, Rows: nil}
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// HasColumn reports whether name is one of the table's columns.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Clone returns a table that shares no storage with the receiver. Stages use
// it to hand a value downstream while keeping their own copy intact.
func (t Table) Clone() Table {
	out := New(t.Columns)
	if t.Rows == nil {
		return out
	}
	out.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// Equal reports whether two tables have identical column order and cell-for-
// cell identical rows. Cell comparison is type-sensitive: float64(1) and
// "1" are not equal.
func (t Table) Equal(o Table) bool {
	if len(t.Columns) != len(o.Columns) || len(t.Rows) != len(o.Rows) {
		return false
	}
	for i, c := range t.Columns {
		if o.Columns[i] != c {
			return false
		}
	}
	for i, r := range t.Rows {
		or := o.Rows[i]
		if len(r) != len(or) {
			return false
		}
		for k, v := range r {
			ov, ok := or[k]
			if !ok || ov != v {
				return false
			}
		}
	}
	return true
}
