// Package warehouse talks to the target analytics database through portable
// DB and Tx interfaces, with adapters for SQL Server (database/sql) and
// Postgres (native pgx). The load path and the reference queries are written
// against the interfaces only, so the engines stay interchangeable.
package warehouse

import (
	"context"

	sq "github.com/Masterminds/squirrel"
)

// DB is a connection capable of queries, statements, and transactions.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Exec(ctx context.Context, sql string, args ...any) error
	BeginTx(ctx context.Context) (Tx, error)
	Close(ctx context.Context) error
	// Placeholder reports the parameter style the engine expects, for
	// use with the squirrel query builder.
	Placeholder() sq.PlaceholderFormat
}

// Rows is the portable subset of a result cursor. *pgx.Rows satisfies it
// directly; the database/sql adapter wraps *sql.Rows to drop Close's error.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// Tx is one transaction. CopyInto bulk-inserts rows into table and reports
// how many rows went in before any failure.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) error
	CopyInto(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
