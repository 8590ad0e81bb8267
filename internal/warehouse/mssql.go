package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	// registers the "sqlserver" driver; also provides the typed error
	// inspected by IsConstraintViolation.
	_ "github.com/microsoft/go-mssqldb"
)

//
// =========================
//  SQL Server (database/sql)
// =========================
//
// The adapter stays on database/sql rather than an engine-native bulk path,
// so CopyInto is a prepared INSERT executed per row inside the transaction.
// That keeps it compatible with go-sqlmock for hermetic tests.
//

type sqlDB struct{ db *sql.DB }

// NewMSSQL opens a SQL Server connection and pings to confirm connectivity.
func NewMSSQL(dsn string) (DB, error) {
	d, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, err
	}
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return &sqlDB{db: d}, nil
}

// NewMSSQLFromDB wraps an existing *sql.DB. Used by tests to inject a
// go-sqlmock connection.
func NewMSSQLFromDB(d *sql.DB) DB { return &sqlDB{db: d} }

// Query runs a SELECT and adapts *sql.Rows to the portable Rows cursor.
func (s *sqlDB) Query(ctx context.Context, q string, args ...any) (Rows, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{rows: rows}, nil
}

// Exec forwards a statement to the underlying database.
func (s *sqlDB) Exec(ctx context.Context, q string, args ...any) error {
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

// BeginTx starts a transaction and returns a Tx adapter.
func (s *sqlDB) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

// Close closes the underlying database connection.
func (s *sqlDB) Close(ctx context.Context) error { return s.db.Close() }

// Placeholder reports the @pN parameter style SQL Server expects.
func (s *sqlDB) Placeholder() sq.PlaceholderFormat { return sq.AtP }

type sqlRows struct{ rows *sql.Rows }

func (r sqlRows) Next() bool             { return r.rows.Next() }
func (r sqlRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r sqlRows) Err() error             { return r.rows.Err() }
func (r sqlRows) Close()                 { _ = r.rows.Close() }

//
// ==================
//  sqlTx (Tx adapter)
// ==================
//

type sqlTx struct{ tx *sql.Tx }

// Exec forwards execution to the transaction and returns any error.
func (t *sqlTx) Exec(ctx context.Context, q string, args ...any) error {
	_, err := t.tx.ExecContext(ctx, q, args...)
	return err
}

// CopyInto emulates bulk insert by preparing an INSERT and executing once
// per row. Example: INSERT INTO Cartera (c1,c2) VALUES (@p1,@p2)
func (t *sqlTx) CopyInto(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	placeholders := make([]string, len(columns))
	quoted := make([]string, len(columns))
	for i, c := range columns {
		placeholders[i] = fmt.Sprintf("@p%d", i+1)
		quoted[i] = msIdent(c)
	}
	stmtText := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		msIdent(table),
		strings.Join(quoted, ","),
		strings.Join(placeholders, ","),
	)

	stmt, err := t.tx.PrepareContext(ctx, stmtText)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

// Commit commits the active transaction.
func (t *sqlTx) Commit(ctx context.Context) error { return t.tx.Commit() }

// Rollback aborts the active transaction.
func (t *sqlTx) Rollback(ctx context.Context) error { return t.tx.Rollback() }

// msIdent brackets an identifier for SQL Server. Target tables include
// non-ASCII column names (año), so quoting is not optional.
func msIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}
