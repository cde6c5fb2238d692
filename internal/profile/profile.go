// Package profile computes per-column descriptive statistics, cross-column
// correlations, and whole-table identity measures for a loaded dataset. All
// outputs are ordered deterministically so repeated runs over the same input
// produce identical profiles.
package profile

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"eda/internal/schema"
	"eda/internal/stats"
	"eda/pkg/frame"
)

// NumericStats summarizes one numeric column.
type NumericStats struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64 // population
	Q1     float64
	Median float64
	Q3     float64
}

// Category is one value of a discrete column with its frequency.
type Category struct {
	Value string
	Count int
}

// ColumnProfile describes one column. Numeric is set for numeric columns;
// Categories for categorical, ordinal, and boolean columns (booleans profile
// as the strings "true" and "false").
type ColumnProfile struct {
	Name       string
	Kind       schema.Kind
	Count      int // non-null values
	NullCount  int
	Numeric    *NumericStats
	Categories []Category
}

// CorrelationMatrix holds pairwise-complete Pearson coefficients over the
// numeric columns, in schema order. Values is symmetric with a 1.0 diagonal.
type CorrelationMatrix struct {
	Columns []string
	Values  [][]float64
}

// At returns the coefficient for a column pair.
func (m CorrelationMatrix) At(a, b string) (float64, bool) {
	ai, bi := -1, -1
	for i, c := range m.Columns {
		if c == a {
			ai = i
		}
		if c == b {
			bi = i
		}
	}
	if ai < 0 || bi < 0 {
		return 0, false
	}
	return m.Values[ai][bi], true
}

// DatasetProfile is the full profiling output for one table.
type DatasetProfile struct {
	RowCount      int
	DuplicateRows int    // rows whose canonical serialization repeats an earlier row
	Fingerprint   uint64 // xxh3 over every canonical cell, row-framed
	Columns       []ColumnProfile
	Correlations  CorrelationMatrix
}

// Column returns the profile for name.
func (p *DatasetProfile) Column(name string) (ColumnProfile, bool) {
	for _, c := range p.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnProfile{}, false
}

// Build profiles t against sc. It errors when a non-null cell does not match
// its column's declared kind, since every statistic downstream assumes kind
// consistency.
func Build(t frame.Table, sc schema.Schema) (*DatasetProfile, error) {
	p := &DatasetProfile{RowCount: t.Len()}

	for _, col := range sc.Columns {
		cp, err := profileColumn(t, col)
		if err != nil {
			return nil, err
		}
		p.Columns = append(p.Columns, cp)
	}

	cm, err := correlate(t, sc)
	if err != nil {
		return nil, err
	}
	p.Correlations = cm

	p.DuplicateRows, p.Fingerprint = identity(t, sc)
	return p, nil
}

func profileColumn(t frame.Table, col schema.ColumnSpec) (ColumnProfile, error) {
	cp := ColumnProfile{Name: col.Name, Kind: col.Kind}

	if col.Kind == schema.KindNumeric {
		vals := make([]float64, 0, t.Len())
		for i, row := range t.Rows {
			if row.Null(col.Name) {
				cp.NullCount++
				continue
			}
			v, ok := row.Number(col.Name)
			if !ok {
				return cp, fmt.Errorf("profile %s: non-numeric value at row %d", col.Name, i+1)
			}
			vals = append(vals, v)
		}
		cp.Count = len(vals)
		if len(vals) > 0 {
			sum := stats.Summarize(vals)
			q1, med, q3 := stats.Quartiles(vals)
			cp.Numeric = &NumericStats{
				Min:    sum.Min,
				Max:    sum.Max,
				Mean:   sum.Mean(),
				StdDev: sum.StdDev(),
				Q1:     q1,
				Median: med,
				Q3:     q3,
			}
		}
		return cp, nil
	}

	// Discrete kinds: frequency table ordered by descending count, ties
	// broken by first appearance. Boolean cells tally under "true"/"false".
	freq := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, row := range t.Rows {
		if row.Null(col.Name) {
			cp.NullCount++
			continue
		}
		var s string
		switch col.Kind {
		case schema.KindBoolean:
			b, ok := row.Flag(col.Name)
			if !ok {
				return cp, fmt.Errorf("profile %s: non-boolean value at row %d", col.Name, i+1)
			}
			s = strconv.FormatBool(b)
		default:
			v, ok := row.Text(col.Name)
			if !ok {
				return cp, fmt.Errorf("profile %s: non-text value at row %d", col.Name, i+1)
			}
			s = v
		}
		cp.Count++
		if _, ok := freq[s]; !ok {
			firstSeen[s] = i
		}
		freq[s]++
	}
	cp.Categories = make([]Category, 0, len(freq))
	for v, n := range freq {
		cp.Categories = append(cp.Categories, Category{Value: v, Count: n})
	}
	sortCategories(cp.Categories, firstSeen)
	return cp, nil
}

// sortCategories orders by count descending, then first-seen row ascending.
func sortCategories(cats []Category, firstSeen map[string]int) {
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].Count != cats[j].Count {
			return cats[i].Count > cats[j].Count
		}
		return firstSeen[cats[i].Value] < firstSeen[cats[j].Value]
	})
}

// correlate computes the pairwise-complete Pearson matrix. Each pair uses
// only rows where both columns are non-null, so sparse nulls in one column
// never starve another pair of data.
func correlate(t frame.Table, sc schema.Schema) (CorrelationMatrix, error) {
	numeric := sc.Numeric()
	m := CorrelationMatrix{Columns: make([]string, len(numeric))}
	for i, col := range numeric {
		m.Columns[i] = col.Name
	}
	m.Values = make([][]float64, len(numeric))
	for i := range m.Values {
		m.Values[i] = make([]float64, len(numeric))
		m.Values[i][i] = 1.0
	}

	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			var acc stats.PairAccumulator
			for _, row := range t.Rows {
				x, okx := row.Number(numeric[i].Name)
				y, oky := row.Number(numeric[j].Name)
				if !okx || !oky {
					continue
				}
				acc.Add(x, y)
			}
			r := acc.Correlation()
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m, nil
}

// identity serializes every row canonically, counting repeats and hashing
// the whole table. Cells are framed so that ("a","b") and ("ab","") cannot
// collide, and null is distinct from the empty string.
func identity(t frame.Table, sc schema.Schema) (dupes int, fingerprint uint64) {
	hasher := xxh3.New()
	seen := make(map[uint64]struct{}, t.Len())
	var sb strings.Builder

	for _, row := range t.Rows {
		sb.Reset()
		for _, col := range sc.Columns {
			sb.WriteString(canonicalCell(row[col.Name]))
			sb.WriteByte(0x1f)
		}
		line := sb.String()
		h := xxh3.HashString(line)
		if _, ok := seen[h]; ok {
			dupes++
		} else {
			seen[h] = struct{}{}
		}
		_, _ = hasher.WriteString(line)
		_, _ = hasher.Write([]byte{0x1e})
	}
	return dupes, hasher.Sum64()
}

func canonicalCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "n:"
	case float64:
		return "f:" + strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return "b:" + strconv.FormatBool(x)
	case string:
		return "s:" + x
	default:
		return fmt.Sprintf("v:%v", x)
	}
}
