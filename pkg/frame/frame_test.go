package frame_test

import (
	"testing"

	"eda/pkg/frame"
)

func sample() frame.Table {
	return frame.Table{
		Columns: []string{"area", "price", "furnishing"},
		Rows: []frame.Row{
			{"area": float64(1000), "price": float64(100000), "furnishing": "yes"},
			{"area": float64(2000), "price": float64(250000), "furnishing": "no"},
			{"area": nil, "price": float64(180000), "furnishing": "yes"},
		},
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := sample()
	cp := orig.Clone()

	if !orig.Equal(cp) {
		t.Fatalf("clone not equal to original")
	}

	cp.Rows[0]["area"] = float64(9999)
	cp.Columns[0] = "mutated"

	if v, _ := orig.Rows[0].Number("area"); v != 1000 {
		t.Fatalf("original row mutated through clone: area=%v", v)
	}
	if orig.Columns[0] != "area" {
		t.Fatalf("original columns mutated through clone: %v", orig.Columns)
	}
}

func TestEqual(t *testing.T) {
	a := sample()
	b := sample()
	if !a.Equal(b) {
		t.Fatalf("identical tables reported unequal")
	}

	b.Rows[1]["price"] = float64(250001)
	if a.Equal(b) {
		t.Fatalf("tables with differing cells reported equal")
	}

	c := sample()
	c.Columns = []string{"price", "area", "furnishing"}
	if a.Equal(c) {
		t.Fatalf("tables with differing column order reported equal")
	}
}

func TestEqualIsTypeSensitive(t *testing.T) {
	a := frame.Table{Columns: []string{"x"}, Rows: []frame.Row{{"x": float64(1)}}}
	b := frame.Table{Columns: []string{"x"}, Rows: []frame.Row{{"x": "1"}}}
	if a.Equal(b) {
		t.Fatalf("float and string cells reported equal")
	}
}

func TestRowAccessors(t *testing.T) {
	r := frame.Row{"n": float64(3.5), "s": "yes", "b": true, "nul": nil}

	if v, ok := r.Number("n"); !ok || v != 3.5 {
		t.Fatalf("Number=%v,%v want 3.5,true", v, ok)
	}
	if _, ok := r.Number("s"); ok {
		t.Fatalf("Number on string cell reported ok")
	}
	if v, ok := r.Text("s"); !ok || v != "yes" {
		t.Fatalf("Text=%v,%v want yes,true", v, ok)
	}
	if v, ok := r.Flag("b"); !ok || !v {
		t.Fatalf("Flag=%v,%v want true,true", v, ok)
	}
	if !r.Null("nul") || !r.Null("missing") {
		t.Fatalf("Null should be true for nil and absent cells")
	}
	if r.Null("n") {
		t.Fatalf("Null true for populated cell")
	}
}
