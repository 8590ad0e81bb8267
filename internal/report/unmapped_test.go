package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

func TestUnmappedWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "unmapped.csv")
	w, err := NewUnmappedWriter(path)
	if err != nil {
		t.Fatalf("NewUnmappedWriter: %v", err)
	}
	w.Add("balances", "Mystery Shop")
	w.Add("forecast", "CLIENT X")
	if w.Count() != 2 {
		t.Fatalf("Count = %d", w.Count())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0][0] != "pipeline" || rows[1][1] != "Mystery Shop" || rows[2][0] != "forecast" {
		t.Fatalf("rows = %v", rows)
	}
}
