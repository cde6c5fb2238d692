package schema_test

import (
	"testing"

	"eda/internal/schema"
)

func TestKindValid(t *testing.T) {
	for _, k := range []schema.Kind{
		schema.KindNumeric, schema.KindCategorical, schema.KindOrdinal, schema.KindBoolean,
	} {
		if !k.Valid() {
			t.Fatalf("kind %q reported invalid", k)
		}
	}
	if schema.Kind("decimal").Valid() {
		t.Fatalf("unknown kind reported valid")
	}
}

func TestSchemaAccessors(t *testing.T) {
	s := schema.Schema{Columns: []schema.ColumnSpec{
		{Name: "price", Kind: schema.KindNumeric},
		{Name: "area", Kind: schema.KindNumeric},
		{Name: "furnishingstatus", Kind: schema.KindCategorical},
		{Name: "stories", Kind: schema.KindOrdinal},
		{Name: "mainroad", Kind: schema.KindBoolean},
	}}

	if got := s.Numeric(); len(got) != 2 || got[0] != "price" || got[1] != "area" {
		t.Fatalf("Numeric()=%v", got)
	}
	if got := s.Discrete(); len(got) != 3 || got[0] != "furnishingstatus" || got[2] != "mainroad" {
		t.Fatalf("Discrete()=%v", got)
	}
	if got := s.Names(); len(got) != 5 || got[3] != "stories" {
		t.Fatalf("Names()=%v", got)
	}

	c, ok := s.Column("area")
	if !ok || c.Kind != schema.KindNumeric {
		t.Fatalf("Column(area)=%v,%v", c, ok)
	}
	if _, ok := s.Column("bathrooms"); ok {
		t.Fatalf("Column on missing name reported ok")
	}
}
