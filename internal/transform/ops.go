package transform

import (
	"fmt"
	"strconv"

	"eda/pkg/frame"
)

// Derive adds a numeric column computed as Left <Operator> Right, where
// Right names another numeric column unless RightValue supplies a constant.
// A null operand yields a null result, as does division by zero.
type Derive struct {
	Name       string
	Left       string
	Operator   string
	Right      string
	RightValue *float64
}

func (d *Derive) Kind() string { return "derive" }

func (d *Derive) Apply(in frame.Table) (frame.Table, error) {
	if !in.HasColumn(d.Left) {
		return frame.Table{}, &Error{Reason: ReasonUnknownColumn, Column: d.Left}
	}
	if d.RightValue == nil && !in.HasColumn(d.Right) {
		return frame.Table{}, &Error{Reason: ReasonUnknownColumn, Column: d.Right}
	}
	if in.HasColumn(d.Name) {
		return frame.Table{}, fmt.Errorf("derive: column %q already exists", d.Name)
	}

	out := in.Clone()
	out.Columns = append(out.Columns, d.Name)
	for i, row := range out.Rows {
		l, ok, err := numericCell(row, d.Left, i)
		if err != nil {
			return frame.Table{}, err
		}
		if !ok {
			row[d.Name] = nil
			continue
		}
		var r float64
		if d.RightValue != nil {
			r = *d.RightValue
		} else {
			var rok bool
			r, rok, err = numericCell(row, d.Right, i)
			if err != nil {
				return frame.Table{}, err
			}
			if !rok {
				row[d.Name] = nil
				continue
			}
		}
		row[d.Name] = eval(l, d.Operator, r)
	}
	return out, nil
}

// eval computes the expression; nil stands for an undefined result.
func eval(l float64, op string, r float64) any {
	switch op {
	case "+":
		return l + r
	case "-":
		return l - r
	case "*":
		return l * r
	case "/":
		if r == 0 {
			return nil
		}
		return l / r
	default:
		return nil
	}
}

// Bin replaces continuous values with interval labels in a new categorical
// column. Every interval is half-open [b_i, b_i+1); values below the first
// edge label "<b0" and values at or above the last edge label ">=bN", so the
// label set is a deterministic function of the boundaries.
type Bin struct {
	Column     string
	Boundaries []float64
	Into       string // empty means Column + "_bin"
}

func (b *Bin) Kind() string { return "bin" }

// Target returns the output column name.
func (b *Bin) Target() string {
	if b.Into != "" {
		return b.Into
	}
	return b.Column + "_bin"
}

func (b *Bin) Apply(in frame.Table) (frame.Table, error) {
	if !in.HasColumn(b.Column) {
		return frame.Table{}, &Error{Reason: ReasonUnknownColumn, Column: b.Column}
	}
	if len(b.Boundaries) < 2 {
		return frame.Table{}, fmt.Errorf("bin: need at least 2 boundaries, got %d", len(b.Boundaries))
	}
	into := b.Target()
	if in.HasColumn(into) {
		return frame.Table{}, fmt.Errorf("bin: column %q already exists", into)
	}

	out := in.Clone()
	out.Columns = append(out.Columns, into)
	for i, row := range out.Rows {
		v, ok, err := numericCell(row, b.Column, i)
		if err != nil {
			return frame.Table{}, err
		}
		if !ok {
			row[into] = nil
			continue
		}
		row[into] = b.label(v)
	}
	return out, nil
}

func (b *Bin) label(v float64) string {
	edges := b.Boundaries
	if v < edges[0] {
		return "<" + formatEdge(edges[0])
	}
	last := edges[len(edges)-1]
	if v >= last {
		return ">=" + formatEdge(last)
	}
	for i := 0; i < len(edges)-1; i++ {
		if v >= edges[i] && v < edges[i+1] {
			return fmt.Sprintf("[%s,%s)", formatEdge(edges[i]), formatEdge(edges[i+1]))
		}
	}
	// Unreachable for strictly increasing edges.
	return ">=" + formatEdge(last)
}

func formatEdge(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// Filter keeps rows whose cell in Column satisfies Operator against Value.
// Null cells never satisfy any comparison. Ordering operators require a
// numeric column; equality works on every kind with Value coerced to the
// cell's type.
type Filter struct {
	Column   string
	Operator string
	Value    string
}

func (f *Filter) Kind() string { return "filter" }

func (f *Filter) Apply(in frame.Table) (frame.Table, error) {
	if !in.HasColumn(f.Column) {
		return frame.Table{}, &Error{Reason: ReasonUnknownColumn, Column: f.Column}
	}

	out := frame.New(in.Columns)
	for i, row := range in.Rows {
		keep, err := f.match(row, i)
		if err != nil {
			return frame.Table{}, err
		}
		if keep {
			out.Rows = append(out.Rows, row.Clone())
		}
	}
	return out, nil
}

func (f *Filter) match(row frame.Row, i int) (bool, error) {
	cell := row[f.Column]
	if cell == nil {
		return false, nil
	}

	switch f.Operator {
	case "==", "!=":
		eq, err := f.equals(cell, i)
		if err != nil {
			return false, err
		}
		if f.Operator == "!=" {
			return !eq, nil
		}
		return eq, nil
	case ">", ">=", "<", "<=":
		v, ok := cell.(float64)
		if !ok {
			return false, &Error{
				Reason: ReasonTypeMismatch,
				Column: f.Column,
				Detail: fmt.Sprintf("operator %q needs a numeric column, row %d holds %T", f.Operator, i+1, cell),
			}
		}
		want, err := strconv.ParseFloat(f.Value, 64)
		if err != nil {
			return false, &Error{
				Reason: ReasonTypeMismatch,
				Column: f.Column,
				Detail: fmt.Sprintf("value %q is not numeric", f.Value),
			}
		}
		switch f.Operator {
		case ">":
			return v > want, nil
		case ">=":
			return v >= want, nil
		case "<":
			return v < want, nil
		default:
			return v <= want, nil
		}
	default:
		return false, fmt.Errorf("filter: unknown operator %q", f.Operator)
	}
}

func (f *Filter) equals(cell any, i int) (bool, error) {
	switch c := cell.(type) {
	case float64:
		want, err := strconv.ParseFloat(f.Value, 64)
		if err != nil {
			return false, &Error{
				Reason: ReasonTypeMismatch,
				Column: f.Column,
				Detail: fmt.Sprintf("value %q is not numeric", f.Value),
			}
		}
		return c == want, nil
	case bool:
		want, err := strconv.ParseBool(f.Value)
		if err != nil {
			return false, &Error{
				Reason: ReasonTypeMismatch,
				Column: f.Column,
				Detail: fmt.Sprintf("value %q is not boolean", f.Value),
			}
		}
		return c == want, nil
	case string:
		return c == f.Value, nil
	default:
		return false, &Error{
			Reason: ReasonTypeMismatch,
			Column: f.Column,
			Detail: fmt.Sprintf("unsupported cell type %T at row %d", cell, i+1),
		}
	}
}

// numericCell reads a float cell; ok is false for null. A non-null value of
// another type is a type mismatch.
func numericCell(row frame.Row, col string, i int) (float64, bool, error) {
	cell := row[col]
	if cell == nil {
		return 0, false, nil
	}
	v, ok := cell.(float64)
	if !ok {
		return 0, false, &Error{
			Reason: ReasonTypeMismatch,
			Column: col,
			Detail: fmt.Sprintf("row %d holds %T, expected number", i+1, cell),
		}
	}
	return v, true, nil
}
