// Package source reads the spreadsheet-style CSV exports the loads consume.
// The exports are not plain tables: report headers occupy the first rows, a
// totals line trails the data, and column labels keep the trailing spaces
// the reporting tool emits. Options describe that shape per dataset.
package source

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"salesloader/internal/records"
)

var utf8BOM = "\xef\xbb\xbf"

// Options describes the physical shape of one export and how its raw column
// labels map to canonical names.
type Options struct {
	// HeaderOffset is the number of physical lines discarded before the
	// row holding the column labels. Blank lines count; the report
	// headers the accounting tool emits contain them.
	HeaderOffset int
	// FooterTrim is the number of trailing data rows discarded (totals
	// lines and the like).
	FooterTrim int
	// Rename maps raw labels, byte-exact including any trailing spaces,
	// to canonical column names. Two raw labels may map to the same
	// canonical name when exports disagree on a label; at most one of
	// them appears per file.
	Rename map[string]string
	// Drop lists raw labels whose columns are discarded.
	Drop []string
	// Required lists canonical names that must be present after
	// renaming. A missing one is a FormatError: the export format
	// changed and every downstream value would be garbage.
	Required []string
}

// FormatError reports an export whose header row does not carry the
// expected columns.
type FormatError struct {
	Missing []string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("export format changed: missing columns %s", strings.Join(e.Missing, ", "))
}

// Table is a parsed export: canonical column names plus one record per
// data row.
type Table struct {
	Columns []string
	Rows    []records.Record
	// Skipped counts malformed physical rows (wrong field count) that
	// were discarded.
	Skipped int
}

// ReadCSV parses one export. Cell values are trimmed of surrounding
// whitespace; empty cells become nil. Rows whose field count does not match
// the header are counted in Skipped and dropped.
func ReadCSV(r io.Reader, opt Options) (*Table, error) {
	// The offset is consumed as raw lines before the csv parser sees the
	// stream: the parser drops blank lines, and the report headers being
	// skipped here contain them.
	br := bufio.NewReader(r)
	for i := 0; i < opt.HeaderOffset; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			return nil, &FormatError{Missing: opt.Required}
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	raw, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(raw) == 0 {
		return nil, &FormatError{Missing: opt.Required}
	}

	header := raw[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	drop := make(map[string]bool, len(opt.Drop))
	for _, label := range opt.Drop {
		drop[label] = true
	}

	// keep[i] is the canonical name of physical column i, "" if dropped.
	keep := make([]string, len(header))
	present := make(map[string]bool, len(header))
	for i, label := range header {
		if drop[label] {
			continue
		}
		name, ok := opt.Rename[label]
		if !ok {
			name = defaultName(label)
		}
		if name == "" {
			continue
		}
		keep[i] = name
		present[name] = true
	}

	var missing []string
	for _, name := range opt.Required {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &FormatError{Missing: missing}
	}

	body := raw[1:]
	if opt.FooterTrim > 0 {
		if opt.FooterTrim >= len(body) {
			body = nil
		} else {
			body = body[:len(body)-opt.FooterTrim]
		}
	}

	t := &Table{}
	for _, name := range keep {
		if name != "" {
			t.Columns = append(t.Columns, name)
		}
	}
	for _, row := range body {
		if len(row) != len(header) {
			t.Skipped++
			continue
		}
		rec := make(records.Record, len(t.Columns))
		for i, name := range keep {
			if name == "" {
				continue
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				rec[name] = nil
			} else {
				rec[name] = cell
			}
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// defaultName converts an unmapped raw label to a snake_case canonical name.
func defaultName(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
