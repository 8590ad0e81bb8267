// Package report writes the per-run operator artifacts: the CSV of customer
// names the loads could not resolve against the reference table.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// UnmappedWriter accumulates unresolved names across pipelines into one CSV.
type UnmappedWriter struct {
	f     *os.File
	w     *csv.Writer
	count int
}

// NewUnmappedWriter creates (or truncates) the CSV at path and writes the
// header row.
func NewUnmappedWriter(path string) (*UnmappedWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"pipeline", "name"}); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &UnmappedWriter{f: f, w: w}, nil
}

// Add records one unresolved name under the pipeline it surfaced in.
func (u *UnmappedWriter) Add(pipeline, name string) {
	u.count++
	_ = u.w.Write([]string{pipeline, name})
}

// Count reports how many names have been recorded.
func (u *UnmappedWriter) Count() int { return u.count }

// Close flushes and closes the file.
func (u *UnmappedWriter) Close() error {
	u.w.Flush()
	if err := u.w.Error(); err != nil {
		_ = u.f.Close()
		return err
	}
	return u.f.Close()
}
