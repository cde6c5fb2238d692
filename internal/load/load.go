// Package load reads raw rows from a source and coerces them into a typed
// table guided by the declared schema. Column typing is never inferred per
// row; the schema decides each cell's kind and a cell that cannot be parsed
// as that kind fails the load.
package load

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"eda/internal/schema"
	"eda/internal/source"
	"eda/pkg/frame"
)

// Loader materializes tables from row sources. Extra source columns the
// schema does not declare are dropped; a declared column missing from the
// header fails the load.
type Loader struct {
	schema schema.Schema
	log    *zap.Logger
}

// New returns a Loader for the given schema. A nil logger defaults to no-op.
func New(sc schema.Schema, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{schema: sc, log: log}
}

// Load reads every row from src and coerces cells into their declared kinds.
// Each call re-reads the source; nothing is cached across calls.
func (l *Loader) Load(ctx context.Context, src source.Source) (frame.Table, error) {
	rr, err := src.Open(ctx)
	if err != nil {
		return frame.Table{}, &Error{Reason: ReasonUnreadable, Source: src.Name(), Err: err}
	}
	defer rr.Close()

	rawHeader := rr.Header()
	width := len(rawHeader)
	header := make([]string, width)
	for i, cell := range rawHeader {
		header[i] = CanonicalName(cell)
	}

	// Positional picks: schema column name -> source column index.
	pick := make(map[string]int, len(l.schema.Columns))
	for _, col := range l.schema.Columns {
		idx := -1
		for i, h := range header {
			if h == col.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return frame.Table{}, &Error{
				Reason: ReasonUnreadable,
				Source: src.Name(),
				Err:    fmt.Errorf("header %v does not name column %q", header, col.Name),
			}
		}
		pick[col.Name] = idx
	}
	if dropped := width - len(pick); dropped > 0 {
		l.log.Debug("dropping undeclared source columns",
			zap.String("source", src.Name()),
			zap.Int("count", dropped))
	}

	t := frame.New(l.schema.Names())
	for rowNum := 1; ; rowNum++ {
		raw, err := rr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return frame.Table{}, &Error{Reason: ReasonUnreadable, Source: src.Name(), Row: rowNum, Err: err}
		}
		if len(raw) != width {
			return frame.Table{}, &Error{
				Reason: ReasonMalformedRow,
				Source: src.Name(),
				Row:    rowNum,
				Err:    fmt.Errorf("field count %d, header has %d", len(raw), width),
			}
		}

		row := make(frame.Row, len(l.schema.Columns))
		for _, col := range l.schema.Columns {
			v, err := coerce(raw[pick[col.Name]], col.Kind)
			if err != nil {
				return frame.Table{}, &Error{
					Reason: ReasonMalformedRow,
					Source: src.Name(),
					Row:    rowNum,
					Err:    fmt.Errorf("column %q: %w", col.Name, err),
				}
			}
			row[col.Name] = v
		}
		t.Rows = append(t.Rows, row)
	}

	l.log.Info("dataset loaded",
		zap.String("source", src.Name()),
		zap.Int("rows", t.Len()),
		zap.Int("columns", len(t.Columns)))
	return t, nil
}

// Truthy and falsy forms accepted for boolean cells, matched case-insensitively.
var (
	truthy = []string{"1", "t", "true", "yes", "y"}
	falsy  = []string{"0", "f", "false", "no", "n"}
)

// coerce parses a raw cell into its declared kind. The empty string is null
// for every kind.
func coerce(raw string, kind schema.Kind) (any, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	switch kind {
	case schema.KindNumeric:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q as numeric: %w", s, err)
		}
		return f, nil
	case schema.KindBoolean:
		lower := strings.ToLower(s)
		for _, w := range truthy {
			if lower == w {
				return true, nil
			}
		}
		for _, w := range falsy {
			if lower == w {
				return false, nil
			}
		}
		return nil, fmt.Errorf("parse %q as boolean", s)
	default:
		// categorical and ordinal cells stay textual
		return s, nil
	}
}

// CanonicalName converts arbitrary header text into a lowercase identifier:
//  1. lowercase
//  2. strip accents (NFD → remove Mn → NFC)
//  3. keep [a-z0-9]; convert space/dash/dot/underscore runs to one underscore
//  4. fallback to "col" if nothing survives
func CanonicalName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	// Decompose → remove nonspacing marks (accents) → recompose.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			prevUnderscore = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		default:
			// drop anything else
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "col"
	}
	return name
}
