// Package source provides the dataset inputs the loader reads from. Every
// source yields the same shape regardless of where the rows live: a raw
// header followed by string-valued rows. Typing is the loader's job, so a
// CSV file, an inline literal, and a SQL result set all flow through the
// same coercion path.
package source

import (
	"context"
	"unicode/utf8"
)

// A Source opens a dataset and returns a reader over its raw rows.
type Source interface {
	// Name identifies the source in logs and error messages.
	Name() string
	// Open positions a RowReader before the first data row. Each call
	// re-reads the underlying resource; nothing is cached between calls.
	Open(ctx context.Context) (RowReader, error)
}

// RowReader iterates raw string rows. Next returns io.EOF after the last
// row. Readers are single-use; Close releases the underlying resource.
type RowReader interface {
	Header() []string
	Next() ([]string, error)
	Close() error
}

// DecodeDelimiter converts a user-supplied string into a single rune
// delimiter, defaulting to a comma.
func DecodeDelimiter(s string) rune {
	if s == "" {
		return ','
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
