package warehouse

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// DefaultBatchSize is the insert batch size used when a load does not set
// its own.
const DefaultBatchSize = 1000

// LoadReport accounts for one load: how much went in, and where it stopped
// if it did.
type LoadReport struct {
	Inserted int64
	Batches  int
	// FailedBatch is the zero-based index of the batch that failed, or
	// -1 when the load ran to completion. FailedStart and FailedEnd
	// bound the failed batch's rows within the input slice, so the
	// operator can locate the offending region of the source file.
	FailedBatch int
	FailedStart int
	FailedEnd   int
}

// Load inserts rows into table in batches, one transaction per batch.
// Batches commit in input order. On the first failed batch the transaction
// is rolled back and the load stops: earlier batches stay committed, the
// failed batch leaves no partial rows, and nothing after it is attempted.
func Load(ctx context.Context, db DB, log *logrus.Entry, table string, columns []string, rows [][]any, batchSize int) (LoadReport, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	rep := LoadReport{FailedBatch: -1}

	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}

		tx, err := db.BeginTx(ctx)
		if err != nil {
			rep.FailedBatch = rep.Batches
			rep.FailedStart, rep.FailedEnd = start, end
			return rep, fmt.Errorf("begin batch %d: %w", rep.Batches, err)
		}
		n, err := tx.CopyInto(ctx, table, columns, rows[start:end])
		if err != nil {
			_ = tx.Rollback(ctx)
			rep.FailedBatch = rep.Batches
			rep.FailedStart, rep.FailedEnd = start, end
			return rep, fmt.Errorf("insert rows %d-%d into %s: %w", start, end-1, table, err)
		}
		if err := tx.Commit(ctx); err != nil {
			rep.FailedBatch = rep.Batches
			rep.FailedStart, rep.FailedEnd = start, end
			return rep, fmt.Errorf("commit batch %d into %s: %w", rep.Batches, table, err)
		}

		rep.Inserted += n
		rep.Batches++
		log.WithFields(logrus.Fields{
			"table": table,
			"batch": rep.Batches,
			"rows":  n,
		}).Debug("batch committed")
	}
	return rep, nil
}
