package source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgRows is the minimal subset of pgx.Rows the reader uses. The seam allows
// injecting a fake result set so the adapter can be tested without a server.
type pgRows interface {
	FieldDescriptions() []pgconn.FieldDescription
	Next() bool
	Values() ([]any, error)
	Err() error
	Close()
}

// pgQuerier is the minimal subset of *pgx.Conn the source uses.
type pgQuerier interface {
	Query(ctx context.Context, sql string) (pgRows, error)
	Close(ctx context.Context) error
}

// pgConnectFn is swapped in tests to avoid a live connection.
var pgConnectFn = func(ctx context.Context, dsn string) (pgQuerier, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &pgxQuerier{conn: conn}, nil
}

type pgxQuerier struct{ conn *pgx.Conn }

func (q *pgxQuerier) Query(ctx context.Context, sql string) (pgRows, error) {
	rows, err := q.conn.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (q *pgxQuerier) Close(ctx context.Context) error { return q.conn.Close(ctx) }

// Postgres runs a query against a PostgreSQL database and exposes the result
// set as rows of text cells.
//
// Values are rendered from their native Go types. Columns of type numeric
// decode to a driver-specific struct, so cast them in the query
// (for example "SELECT price::float8 ...") to get plain decimal text.
type Postgres struct {
	DSN   string
	Query string
}

// NewPostgres returns a PostgreSQL query source.
func NewPostgres(dsn, query string) *Postgres {
	return &Postgres{DSN: dsn, Query: query}
}

func (p *Postgres) Name() string { return "postgres" }

// Open connects via pgx and starts the configured query. The returned reader
// owns the connection and releases it on Close.
func (p *Postgres) Open(ctx context.Context) (RowReader, error) {
	if strings.TrimSpace(p.DSN) == "" {
		return nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	if strings.TrimSpace(p.Query) == "" {
		return nil, fmt.Errorf("postgres: query must not be empty")
	}

	conn, err := pgConnectFn(ctx, p.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	rows, err := conn.Query(ctx, p.Query)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("postgres: query: %w", err)
	}

	fds := rows.FieldDescriptions()
	header := make([]string, len(fds))
	for i, fd := range fds {
		header[i] = string(fd.Name)
	}
	return &pgRowReader{conn: conn, rows: rows, header: header}, nil
}

type pgRowReader struct {
	conn   pgQuerier
	rows   pgRows
	header []string
}

func (r *pgRowReader) Header() []string { return r.header }

func (r *pgRowReader) Next() ([]string, error) {
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return nil, fmt.Errorf("postgres: scan rows: %w", err)
		}
		return nil, io.EOF
	}
	vals, err := r.rows.Values()
	if err != nil {
		return nil, fmt.Errorf("postgres: row values: %w", err)
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = formatCell(v)
	}
	return out, nil
}

func (r *pgRowReader) Close() error {
	r.rows.Close()
	return r.conn.Close(context.Background())
}
