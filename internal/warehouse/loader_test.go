package warehouse

import (
	"context"
	"errors"
	"io"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"
)

func discardLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

//
// =========
//  Fake DB
// =========
//

type fakeDB struct {
	failBatch int // zero-based batch index to fail on, -1 for never
	begun     int
	batches   [][][]any
	rollbacks int
}

func newFakeDB() *fakeDB { return &fakeDB{failBatch: -1} }

func (f *fakeDB) Query(ctx context.Context, q string, args ...any) (Rows, error) {
	return nil, errors.New("fakeDB: no queries expected")
}
func (f *fakeDB) Exec(ctx context.Context, q string, args ...any) error { return nil }
func (f *fakeDB) Close(ctx context.Context) error                      { return nil }
func (f *fakeDB) Placeholder() sq.PlaceholderFormat                    { return sq.Question }

func (f *fakeDB) BeginTx(ctx context.Context) (Tx, error) {
	idx := f.begun
	f.begun++
	return &fakeTx{db: f, idx: idx}, nil
}

type fakeTx struct {
	db      *fakeDB
	idx     int
	pending [][]any
}

func (t *fakeTx) Exec(ctx context.Context, q string, args ...any) error { return nil }

func (t *fakeTx) CopyInto(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if t.idx == t.db.failBatch {
		return 0, errors.New("insert rejected")
	}
	t.pending = rows
	return int64(len(rows)), nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.db.batches = append(t.db.batches, t.pending)
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.db.rollbacks++
	return nil
}

//
// =======
//  Tests
// =======
//

func rowsOfSize(n int) [][]any {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = []any{int64(i)}
	}
	return rows
}

func TestLoadBatching(t *testing.T) {
	db := newFakeDB()
	rep, err := Load(context.Background(), db, discardLog(), "Ventas_Totales", []string{"id"}, rowsOfSize(5), 2)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rep.Inserted != 5 || rep.Batches != 3 || rep.FailedBatch != -1 {
		t.Fatalf("report = %+v", rep)
	}
	if len(db.batches) != 3 {
		t.Fatalf("committed %d batches, want 3", len(db.batches))
	}
	sizes := []int{len(db.batches[0]), len(db.batches[1]), len(db.batches[2])}
	if sizes[0] != 2 || sizes[1] != 2 || sizes[2] != 1 {
		t.Fatalf("batch sizes = %v", sizes)
	}
	// input order preserved across batches
	if db.batches[0][0][0] != int64(0) || db.batches[2][0][0] != int64(4) {
		t.Fatalf("row order not preserved: %v", db.batches)
	}
}

func TestLoadFailFast(t *testing.T) {
	db := newFakeDB()
	db.failBatch = 1

	rep, err := Load(context.Background(), db, discardLog(), "Ventas_Totales", []string{"id"}, rowsOfSize(5), 2)
	if err == nil {
		t.Fatalf("want error")
	}
	// the first batch stays committed, the failed one is rolled back,
	// and the third is never attempted
	if rep.Inserted != 2 || rep.Batches != 1 {
		t.Fatalf("report = %+v", rep)
	}
	if rep.FailedBatch != 1 || rep.FailedStart != 2 || rep.FailedEnd != 4 {
		t.Fatalf("failure region = %+v", rep)
	}
	if len(db.batches) != 1 || db.rollbacks != 1 {
		t.Fatalf("batches=%d rollbacks=%d", len(db.batches), db.rollbacks)
	}
	if db.begun != 2 {
		t.Fatalf("begun %d transactions, want 2", db.begun)
	}
}

func TestLoadEmpty(t *testing.T) {
	db := newFakeDB()
	rep, err := Load(context.Background(), db, discardLog(), "Cartera", []string{"id"}, nil, 2)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rep.Inserted != 0 || rep.Batches != 0 || db.begun != 0 {
		t.Fatalf("empty load touched the database: %+v begun=%d", rep, db.begun)
	}
}

func TestLoadDefaultBatchSize(t *testing.T) {
	db := newFakeDB()
	rep, err := Load(context.Background(), db, discardLog(), "Cartera", []string{"id"}, rowsOfSize(DefaultBatchSize+1), 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rep.Batches != 2 {
		t.Fatalf("batches = %d, want 2", rep.Batches)
	}
}
