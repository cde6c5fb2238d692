package source

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite runs a query against a SQLite database file and exposes the result
// set as rows of text cells.
type SQLite struct {
	DSN   string
	Query string
}

// NewSQLite returns a SQLite query source. DSN is passed directly to
// database/sql; for example:
//
//	"file:listings.db?cache=shared"
//	"listings.db"
func NewSQLite(dsn, query string) *SQLite {
	return &SQLite{DSN: dsn, Query: query}
}

func (s *SQLite) Name() string { return "sqlite:" + s.DSN }

// Open connects, pings with a short timeout to fail fast on invalid DSNs,
// and starts the configured query. The returned reader owns the connection
// and releases it on Close.
func (s *SQLite) Open(ctx context.Context) (RowReader, error) {
	if strings.TrimSpace(s.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	if strings.TrimSpace(s.Query) == "" {
		return nil, fmt.Errorf("sqlite: query must not be empty")
	}

	db, err := sql.Open("sqlite", s.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	rows, err := db.QueryContext(ctx, s.Query)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: query: %w", err)
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		db.Close()
		return nil, fmt.Errorf("sqlite: columns: %w", err)
	}

	return &sqlRowReader{db: db, rows: rows, header: cols}, nil
}

// sqlRowReader adapts a database/sql result set to RowReader.
type sqlRowReader struct {
	db     *sql.DB
	rows   *sql.Rows
	header []string
}

func (r *sqlRowReader) Header() []string { return r.header }

func (r *sqlRowReader) Next() ([]string, error) {
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return nil, fmt.Errorf("sqlite: scan rows: %w", err)
		}
		return nil, io.EOF
	}
	vals := make([]any, len(r.header))
	ptrs := make([]any, len(r.header))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("sqlite: scan: %w", err)
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = formatCell(v)
	}
	return out, nil
}

func (r *sqlRowReader) Close() error {
	err := r.rows.Close()
	if cerr := r.db.Close(); err == nil {
		err = cerr
	}
	return err
}
