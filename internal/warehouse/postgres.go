package warehouse

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

//
// ==================
//  Postgres (pgx/v5)
// ==================
//
// The Postgres adapter wraps a native pgx connection. CopyInto uses the
// COPY protocol, which is the fast path for bulk loads.
//

type pgDB struct{ conn *pgx.Conn }

// NewPostgres connects to Postgres using pgx.Connect. Callers are
// responsible for closing it via Close.
func NewPostgres(ctx context.Context, dsn string) (DB, error) {
	c, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &pgDB{conn: c}, nil
}

// Query delegates to pgx.Conn.Query. pgx.Rows satisfies Rows directly.
func (p *pgDB) Query(ctx context.Context, q string, args ...any) (Rows, error) {
	rows, err := p.conn.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Exec delegates to pgx.Conn.Exec, returning only the error.
func (p *pgDB) Exec(ctx context.Context, q string, args ...any) error {
	_, err := p.conn.Exec(ctx, q, args...)
	return err
}

// BeginTx starts a transaction and returns a pgTx wrapper.
func (p *pgDB) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := p.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx}, nil
}

// Close closes the underlying pgx.Conn.
func (p *pgDB) Close(ctx context.Context) error { return p.conn.Close(ctx) }

// Placeholder reports the $N parameter style Postgres expects.
func (p *pgDB) Placeholder() sq.PlaceholderFormat { return sq.Dollar }

type pgTx struct{ tx pgx.Tx }

// Exec executes a statement within the transaction, discarding the tag.
func (t *pgTx) Exec(ctx context.Context, q string, args ...any) error {
	_, err := t.tx.Exec(ctx, q, args...)
	return err
}

// CopyInto performs a bulk insert using Postgres's native COPY FROM.
func (t *pgTx) CopyInto(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return t.tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}

// Commit commits the active transaction.
func (t *pgTx) Commit(ctx context.Context) error { return t.tx.Commit(ctx) }

// Rollback aborts the active transaction.
func (t *pgTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }
