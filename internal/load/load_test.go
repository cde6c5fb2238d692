package load_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"eda/internal/load"
	"eda/internal/schema"
	"eda/internal/source"
)

func housingSchema() schema.Schema {
	return schema.Schema{Columns: []schema.ColumnSpec{
		{Name: "area", Kind: schema.KindNumeric},
		{Name: "price", Kind: schema.KindNumeric},
		{Name: "furnishing", Kind: schema.KindCategorical},
	}}
}

func TestLoadCoercesByKind(t *testing.T) {
	t.Parallel()

	src := source.NewInline("t",
		"area,price,furnishing\n1000,100000,yes\n2000,250000,no\n1500,180000,yes\n", 0)
	tab, err := load.New(housingSchema(), nil).Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if tab.Len() != 3 {
		t.Fatalf("rows=%d want 3", tab.Len())
	}
	if v, ok := tab.Rows[0].Number("area"); !ok || v != 1000 {
		t.Fatalf("area=%v want 1000", tab.Rows[0]["area"])
	}
	if v, ok := tab.Rows[1].Text("furnishing"); !ok || v != "no" {
		t.Fatalf("furnishing=%v want no", tab.Rows[1]["furnishing"])
	}
}

func TestLoadDropsUndeclaredColumns(t *testing.T) {
	t.Parallel()

	// The listing_url column is not in the schema and must vanish.
	src := source.NewInline("t",
		"area,listing_url,price,furnishing\n900,http://x,100000,yes\n", 0)
	tab, err := load.New(housingSchema(), nil).Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if tab.HasColumn("listing_url") {
		t.Fatal("undeclared column survived the load")
	}
	if _, ok := tab.Rows[0]["listing_url"]; ok {
		t.Fatal("undeclared cell survived the load")
	}
	if v, ok := tab.Rows[0].Number("price"); !ok || v != 100000 {
		t.Fatalf("price=%v want 100000", tab.Rows[0]["price"])
	}
}

func TestLoadCanonicalizesHeaders(t *testing.T) {
	t.Parallel()

	// Accented, mixed-case, space-ridden headers must fold onto schema names.
	src := source.NewInline("t",
		"﻿Área ,PRICE,Furnishing Status\n1000,100000,yes\n", 0)
	sc := schema.Schema{Columns: []schema.ColumnSpec{
		{Name: "area", Kind: schema.KindNumeric},
		{Name: "price", Kind: schema.KindNumeric},
		{Name: "furnishing_status", Kind: schema.KindCategorical},
	}}
	tab, err := load.New(sc, nil).Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if v, ok := tab.Rows[0].Text("furnishing_status"); !ok || v != "yes" {
		t.Fatalf("furnishing_status=%v want yes", tab.Rows[0]["furnishing_status"])
	}
}

func TestLoadEmptyCellsBecomeNull(t *testing.T) {
	t.Parallel()

	src := source.NewInline("t", "area,price,furnishing\n,100000,\n", 0)
	tab, err := load.New(housingSchema(), nil).Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !tab.Rows[0].Null("area") || !tab.Rows[0].Null("furnishing") {
		t.Fatalf("empty cells did not load as null: %v", tab.Rows[0])
	}
}

func TestLoadBooleanForms(t *testing.T) {
	t.Parallel()

	sc := schema.Schema{Columns: []schema.ColumnSpec{
		{Name: "flag", Kind: schema.KindBoolean},
	}}
	src := source.NewInline("t", "flag\nYES\n0\nt\nno\n", 0)
	tab, err := load.New(sc, nil).Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := []bool{true, false, true, false}
	for i, w := range want {
		if v, ok := tab.Rows[i].Flag("flag"); !ok || v != w {
			t.Fatalf("row %d flag=%v want %v", i, tab.Rows[i]["flag"], w)
		}
	}
}

func TestLoadMalformedRowWidth(t *testing.T) {
	t.Parallel()

	// Two fields under a three-column header must fail, producing no table.
	src := source.NewInline("t", "area,price,furnishing\n1000,100000\n", 0)
	tab, err := load.New(housingSchema(), nil).Load(context.Background(), src)
	if !errors.Is(err, load.ErrMalformedRow) {
		t.Fatalf("err=%v want ErrMalformedRow", err)
	}
	var lerr *load.Error
	if !errors.As(err, &lerr) || lerr.Row != 1 {
		t.Fatalf("row=%v want 1", err)
	}
	if tab.Len() != 0 {
		t.Fatal("table produced despite malformed row")
	}
}

func TestLoadMalformedNumericCell(t *testing.T) {
	t.Parallel()

	src := source.NewInline("t", "area,price,furnishing\nbig,100000,yes\n", 0)
	_, err := load.New(housingSchema(), nil).Load(context.Background(), src)
	if !errors.Is(err, load.ErrMalformedRow) {
		t.Fatalf("err=%v want ErrMalformedRow", err)
	}
}

func TestLoadUnreadableSource(t *testing.T) {
	t.Parallel()

	src := source.NewFile(filepath.Join(t.TempDir(), "missing.csv"), 0)
	_, err := load.New(housingSchema(), nil).Load(context.Background(), src)
	if !errors.Is(err, load.ErrUnreadable) {
		t.Fatalf("err=%v want ErrUnreadable", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err=%v want wrapped os.ErrNotExist", err)
	}
}

func TestLoadMissingDeclaredColumn(t *testing.T) {
	t.Parallel()

	src := source.NewInline("t", "area,price\n1000,100000\n", 0)
	_, err := load.New(housingSchema(), nil).Load(context.Background(), src)
	if !errors.Is(err, load.ErrUnreadable) {
		t.Fatalf("err=%v want ErrUnreadable", err)
	}
}

func TestCanonicalName(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"Área (m2)", "area_m2"},
		{"  Price  ", "price"},
		{"Furnishing Status", "furnishing_status"},
		{"hot-water.heating", "hot_water_heating"},
		{"___", "col"},
		{"%%%", "col"},
	}
	for _, c := range cases {
		if got := load.CanonicalName(c.in); got != c.want {
			t.Fatalf("CanonicalName(%q)=%q want %q", c.in, got, c.want)
		}
	}
}
