// Package pipeline runs the dataset loads. Every dataset follows the same
// linear flow (read, resolve, shape, dedup, load) and differs only in its
// declarative Pipeline value, so adding a dataset means adding a value, not
// an engine.
package pipeline

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"salesloader/internal/dedup"
	"salesloader/internal/domain"
	"salesloader/internal/records"
	"salesloader/internal/resolve"
	"salesloader/internal/source"
	"salesloader/internal/warehouse"
)

// Stage identifies where in the flow a run failed.
type Stage string

const (
	StageSource  Stage = "source"
	StageResolve Stage = "resolve"
	StageDedup   Stage = "dedup"
	StageLoad    Stage = "load"
)

// StageError pins a failure to the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// Outcome is the terminal state of one run.
type Outcome string

const (
	// Completed means every surviving row was inserted.
	Completed Outcome = "completed"
	// CompletedEmpty means the run succeeded but had nothing to insert,
	// because the source was empty or every row was filtered out.
	CompletedEmpty Outcome = "completed-empty"
	// Failed means the run stopped at some stage. Batches committed
	// before the failure stay committed.
	Failed Outcome = "failed"
)

// Report summarizes one run for logging and operator review.
type Report struct {
	Pipeline string
	Outcome  Outcome
	// RowsRead counts data rows parsed from the source.
	RowsRead int
	// Resolved counts rows that matched the customer reference;
	// Unmapped lists the distinct names that did not, first-seen order.
	Resolved int
	Unmapped []string
	// Skipped counts rows the shaping step dropped (unknown products,
	// zero quotas, and the like).
	Skipped int
	// Duplicates counts rows already present in the warehouse.
	Duplicates int
	Load       warehouse.LoadReport
	FailedAt   Stage
	Err        error
}

// Pipeline declares one dataset load. The zero value of an optional field
// disables the corresponding step: empty Resolve.NameColumn skips customer
// resolution, empty KeyFields makes the load a plain append.
type Pipeline struct {
	Name    string
	Table   string
	Columns []string

	Resolve resolve.Options
	// Match builds the reference index; required when Resolve.NameColumn
	// is set.
	Match resolve.Matcher

	KeyFields []dedup.Field
	// KeyFilter restricts the existing-key scan, for datasets that share
	// their table with other loads.
	KeyFilter sq.Eq

	// Shape turns one resolved source record into a target row aligned
	// with Columns. Returning false drops the row.
	Shape func(rec records.Record, id resolve.Identity, now time.Time) ([]any, bool)

	BatchSize int
}

// Env is the shared run environment.
type Env struct {
	DB            warehouse.DB
	Log           *logrus.Entry
	CustomerTable string
	// DefaultZoneID is assigned to resolved customers the reference has
	// not placed in a zone.
	DefaultZoneID int64
	Now           func() time.Time
}

// Run executes the pipeline against an already parsed source table. The
// returned Report is never nil; when err is non-nil it is a *StageError and
// the report's FailedAt/Err fields mirror it.
func (p *Pipeline) Run(ctx context.Context, env Env, tbl *source.Table) (*Report, error) {
	log := env.Log.WithField("pipeline", p.Name)
	rep := &Report{Pipeline: p.Name, RowsRead: len(tbl.Rows)}
	if tbl.Skipped > 0 {
		log.WithField("rows", tbl.Skipped).Warn("malformed source rows discarded")
	}

	// Reference customers and existing keys are independent reads, so
	// fetch them concurrently.
	var (
		refs     []domain.Customer
		existing dedup.Set
	)
	g, gctx := errgroup.WithContext(ctx)
	if p.Resolve.NameColumn != "" {
		g.Go(func() error {
			var err error
			refs, err = warehouse.Customers(gctx, env.DB, env.CustomerTable)
			if err != nil {
				return &StageError{Stage: StageResolve, Err: err}
			}
			return nil
		})
	}
	if len(p.KeyFields) > 0 {
		g.Go(func() error {
			var err error
			existing, err = warehouse.ExistingKeys(gctx, env.DB, p.Table, p.KeyFields, p.KeyFilter)
			if err != nil {
				return &StageError{Stage: StageDedup, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return p.fail(rep, err)
	}

	// Resolve. Rows that fail to resolve carry no usable identity and
	// are dropped; their names surface in the report instead.
	rows := make([][]any, 0, len(tbl.Rows))
	now := env.Now()
	if p.Resolve.NameColumn != "" {
		ix, err := resolve.NewIndex(refs, p.Match, env.DefaultZoneID)
		if err != nil {
			return p.fail(rep, &StageError{Stage: StageResolve, Err: err})
		}
		resolved, unmapped := resolve.Rows(tbl.Rows, ix, p.Resolve)
		rep.Unmapped = unmapped
		for _, r := range resolved {
			if !r.OK {
				continue
			}
			rep.Resolved++
			row, ok := p.Shape(r.Record, r.Identity, now)
			if !ok {
				rep.Skipped++
				continue
			}
			rows = append(rows, row)
		}
		if len(unmapped) > 0 {
			log.WithField("names", len(unmapped)).Warn("unmapped customer names")
		}
	} else {
		for _, rec := range tbl.Rows {
			row, ok := p.Shape(rec, resolve.Identity{}, now)
			if !ok {
				rep.Skipped++
				continue
			}
			rows = append(rows, row)
		}
	}

	// Dedup against the warehouse.
	if len(p.KeyFields) > 0 {
		before := len(rows)
		rows = dedup.FilterNew(p.KeyFields, p.keyIdx(), rows, existing)
		rep.Duplicates = before - len(rows)
	}

	if len(rows) == 0 {
		rep.Outcome = CompletedEmpty
		log.Info("nothing new to load")
		return rep, nil
	}

	load, err := warehouse.Load(ctx, env.DB, log, p.Table, p.Columns, rows, p.BatchSize)
	rep.Load = load
	if err != nil {
		if warehouse.IsConstraintViolation(err) {
			log.WithFields(logrus.Fields{
				"batch": load.FailedBatch,
				"rows":  fmt.Sprintf("%d-%d", load.FailedStart, load.FailedEnd-1),
			}).Error("batch rejected by a warehouse constraint")
		}
		return p.fail(rep, &StageError{Stage: StageLoad, Err: err})
	}

	rep.Outcome = Completed
	log.WithFields(logrus.Fields{
		"read":       rep.RowsRead,
		"inserted":   load.Inserted,
		"batches":    load.Batches,
		"duplicates": rep.Duplicates,
		"unmapped":   len(rep.Unmapped),
	}).Info("load completed")
	return rep, nil
}

// keyIdx maps each key field to its position within Columns. Pipelines are
// static declarations, so a key column absent from Columns is a programming
// error and panics at startup rather than corrupting fingerprints.
func (p *Pipeline) keyIdx() []int {
	idx := make([]int, len(p.KeyFields))
	for i, f := range p.KeyFields {
		pos := -1
		for j, c := range p.Columns {
			if c == f.Column {
				pos = j
				break
			}
		}
		if pos < 0 {
			panic(fmt.Sprintf("pipeline %s: key column %s not in output columns", p.Name, f.Column))
		}
		idx[i] = pos
	}
	return idx
}

func (p *Pipeline) fail(rep *Report, err error) (*Report, error) {
	rep.Outcome = Failed
	if se, ok := err.(*StageError); ok {
		rep.FailedAt = se.Stage
	}
	rep.Err = err
	return rep, err
}
