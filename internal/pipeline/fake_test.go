package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"

	"salesloader/internal/warehouse"
)

// fakeWarehouse serves the two reads a run performs (customer reference,
// existing keys) from canned rows and captures every committed batch.
type fakeWarehouse struct {
	customerRows [][]any // id_cliente, nombre_cliente, id_zone
	keyRows      [][]any // aligned with the pipeline's key fields

	queries   []string
	batches   [][][]any
	tables    []string
	begun     int
	failBatch int // zero-based batch to fail, -1 for never
}

func newFakeWarehouse() *fakeWarehouse { return &fakeWarehouse{failBatch: -1} }

func (f *fakeWarehouse) Query(ctx context.Context, q string, args ...any) (warehouse.Rows, error) {
	f.queries = append(f.queries, q)
	if strings.Contains(q, "nombre_cliente") {
		return &fakeRows{rows: f.customerRows}, nil
	}
	return &fakeRows{rows: f.keyRows}, nil
}

func (f *fakeWarehouse) Exec(ctx context.Context, q string, args ...any) error { return nil }
func (f *fakeWarehouse) Close(ctx context.Context) error                       { return nil }
func (f *fakeWarehouse) Placeholder() sq.PlaceholderFormat                     { return sq.AtP }

func (f *fakeWarehouse) BeginTx(ctx context.Context) (warehouse.Tx, error) {
	idx := f.begun
	f.begun++
	return &fakeTx{db: f, idx: idx}, nil
}

type fakeRows struct {
	rows [][]any
	pos  int
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d dests for %d values", len(dest), len(row))
	}
	for i, v := range row {
		if err := assign(dest[i], v); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Close()     {}

func assign(dest, v any) error {
	switch d := dest.(type) {
	case *int64:
		switch x := v.(type) {
		case int64:
			*d = x
		case int:
			*d = int64(x)
		default:
			return fmt.Errorf("assign %T to *int64", v)
		}
	case *sql.NullString:
		if v == nil {
			*d = sql.NullString{}
		} else {
			*d = sql.NullString{String: v.(string), Valid: true}
		}
	case *sql.NullInt64:
		switch x := v.(type) {
		case nil:
			*d = sql.NullInt64{}
		case int64:
			*d = sql.NullInt64{Int64: x, Valid: true}
		case int:
			*d = sql.NullInt64{Int64: int64(x), Valid: true}
		default:
			return fmt.Errorf("assign %T to *sql.NullInt64", v)
		}
	case *sql.NullTime:
		if v == nil {
			*d = sql.NullTime{}
		} else {
			*d = sql.NullTime{Time: v.(time.Time), Valid: true}
		}
	default:
		return fmt.Errorf("assign: unsupported dest %T", dest)
	}
	return nil
}

type fakeTx struct {
	db      *fakeWarehouse
	idx     int
	pending [][]any
	table   string
}

func (t *fakeTx) Exec(ctx context.Context, q string, args ...any) error { return nil }

func (t *fakeTx) CopyInto(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if t.idx == t.db.failBatch {
		return 0, errors.New("insert rejected")
	}
	t.pending = rows
	t.table = table
	return int64(len(rows)), nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.db.batches = append(t.db.batches, t.pending)
	t.db.tables = append(t.db.tables, t.table)
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error { return nil }

func testEnv(db *fakeWarehouse) Env {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return Env{
		DB:            db,
		Log:           logrus.NewEntry(l),
		CustomerTable: "Clientes",
		DefaultZoneID: 1,
		Now:           func() time.Time { return time.Date(2025, 8, 1, 10, 30, 0, 0, time.UTC) },
	}
}
