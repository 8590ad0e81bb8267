// Command loader ingests the accounting exports and planning workbook
// tables into the sales warehouse. Each dataset runs as an independent
// pipeline: a failure in one does not stop the others, but any failure
// makes the process exit nonzero.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"salesloader/internal/config"
	"salesloader/internal/pipeline"
	"salesloader/internal/report"
	"salesloader/internal/source"
	"salesloader/internal/warehouse"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg.Verbose)
	ctx := context.Background()

	db, err := openWarehouse(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("connect to warehouse")
	}
	defer db.Close(ctx)

	unmapped, err := report.NewUnmappedWriter(cfg.UnmappedCSV)
	if err != nil {
		log.WithError(err).Fatal("open unmapped-names report")
	}

	env := pipeline.Env{
		DB:            db,
		Log:           log,
		CustomerTable: cfg.CustomerTable,
		DefaultZoneID: int64(cfg.DefaultZoneID),
		Now:           time.Now,
	}

	failed := false
	for _, name := range datasets(cfg.Datasets) {
		var err error
		switch name {
		case "balances":
			err = runCSV(ctx, env, cfg, unmapped, cfg.BalancesCSV, pipeline.BalancesSource(), pipeline.Balances())
		case "pending":
			err = runCSV(ctx, env, cfg, unmapped, cfg.PendingCSV, pipeline.PendingSource(), pipeline.PendingOrders())
		case "sales":
			err = runCSV(ctx, env, cfg, unmapped, cfg.SalesCSV, pipeline.SalesSource(), pipeline.TotalSales())
		case "forecast":
			err = runForecast(ctx, env, cfg, unmapped)
		default:
			log.WithField("dataset", name).Warn("unknown dataset, skipping")
			continue
		}
		if err != nil {
			failed = true
			log.WithField("dataset", name).WithError(err).Error("dataset failed")
		}
	}

	if err := unmapped.Close(); err != nil {
		log.WithError(err).Error("close unmapped-names report")
		failed = true
	} else if unmapped.Count() > 0 {
		log.WithFields(logrus.Fields{
			"names": unmapped.Count(),
			"file":  cfg.UnmappedCSV,
		}).Warn("some customer names did not resolve")
	}
	if failed {
		os.Exit(1)
	}
}

func newLogger(verbose bool) *logrus.Entry {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return logrus.NewEntry(l)
}

func openWarehouse(ctx context.Context, cfg *config.Config) (warehouse.DB, error) {
	switch cfg.Driver {
	case "postgres":
		return warehouse.NewPostgres(ctx, cfg.WarehouseDSN())
	case "sqlserver", "mssql":
		return warehouse.NewMSSQL(cfg.WarehouseDSN())
	}
	return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
}

// datasets expands the -datasets flag into pipeline names.
func datasets(s string) []string {
	if strings.TrimSpace(s) == "all" {
		return []string{"balances", "pending", "sales", "forecast"}
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// runCSV runs one single-file pipeline end to end.
func runCSV(ctx context.Context, env pipeline.Env, cfg *config.Config, unmapped *report.UnmappedWriter, path string, opt source.Options, p *pipeline.Pipeline) error {
	tbl, err := readTable(path, opt)
	if err != nil {
		return &pipeline.StageError{Stage: pipeline.StageSource, Err: err}
	}
	p.BatchSize = cfg.BatchSize
	rep, err := p.Run(ctx, env, tbl)
	record(rep, unmapped)
	return err
}

// runForecast parses every extracted workbook table in the configured
// directory, groups the tables by kind, and runs the three workbook
// pipelines. The pipelines are independent; all of them run even when an
// earlier one fails.
func runForecast(ctx context.Context, env pipeline.Env, cfg *config.Config, unmapped *report.UnmappedWriter) error {
	year := cfg.ForecastYear
	if year == 0 {
		year = env.Now().Year()
	}

	entries, err := os.ReadDir(cfg.ForecastDir)
	if err != nil {
		return &pipeline.StageError{Stage: pipeline.StageSource, Err: err}
	}

	byKind := make(map[pipeline.TableKind][]pipeline.Extract)
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		tableName := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		meta, ok := pipeline.ParseTableName(tableName, year)
		if !ok {
			env.Log.WithField("file", entry.Name()).Debug("file name is not a workbook table, skipping")
			continue
		}
		tbl, err := readTable(filepath.Join(cfg.ForecastDir, entry.Name()), pipeline.ForecastTableSource(meta.Kind))
		if err != nil {
			return &pipeline.StageError{Stage: pipeline.StageSource, Err: fmt.Errorf("%s: %w", entry.Name(), err)}
		}
		byKind[meta.Kind] = append(byKind[meta.Kind], pipeline.Extract{Meta: meta, Table: tbl})
	}

	runs := []struct {
		p   *pipeline.Pipeline
		tbl *source.Table
	}{
		{pipeline.ZoneQuotas(), pipeline.MergeZoneQuotas(byKind[pipeline.KindZoneQuota])},
		{pipeline.Forecast(), pipeline.MergeForecast(byKind[pipeline.KindForecast])},
		{pipeline.CategoryQuotas(), pipeline.MergeCategory(byKind[pipeline.KindCategory])},
	}
	var errs []error
	for _, run := range runs {
		run.p.BatchSize = cfg.BatchSize
		rep, err := run.p.Run(ctx, env, run.tbl)
		record(rep, unmapped)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", run.p.Name, err))
		}
	}
	return errors.Join(errs...)
}

func readTable(path string, opt source.Options) (*source.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return source.ReadCSV(f, opt)
}

func record(rep *pipeline.Report, unmapped *report.UnmappedWriter) {
	if rep == nil {
		return
	}
	for _, name := range rep.Unmapped {
		unmapped.Add(rep.Pipeline, name)
	}
}
