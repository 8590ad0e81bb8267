// Package sanitize converts raw export cells into load-ready values. Every
// function is total: malformed input maps to a documented fallback instead of
// an error, because a handful of dirty cells must not abort a load of
// thousands of rows.
package sanitize

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// SentinelDate replaces dates the export wrote in no recognizable layout.
// It is visibly wrong on purpose, so bad dates can be found in the warehouse.
var SentinelDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// ExportDateLayouts are the date spellings the accounting exports use.
var ExportDateLayouts = []string{"1/2/2006", "01/02/2006", "2006-01-02"}

// Money parses an accounting-style amount: currency symbols and thousands
// separators are stripped, and a parenthesized value is negative.
// Unparsable input yields zero.
func Money(s string) decimal.Decimal {
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && len(s) > 1 {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if neg {
		return d.Neg()
	}
	return d
}

// Quantity parses a unit count. Thousands separators are tolerated, as is a
// trailing decimal part some spreadsheet exports attach to whole numbers.
// Unparsable input yields zero.
func Quantity(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

// Date parses s against each layout in order and truncates the result to
// calendar-date granularity. When nothing matches it returns SentinelDate.
func Date(s string, layouts ...string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOnly(t)
		}
	}
	return SentinelDate
}

// DateOnly drops the time-of-day component of t.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Text trims s, substitutes def when the result is empty, and truncates to
// at most max bytes when max is positive. Target columns have fixed widths,
// so truncation beats a rejected batch. The cut lands on a rune boundary;
// Spanish values would otherwise leave a broken trailing byte.
func Text(s string, max int, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		s = def
	}
	if max > 0 && len(s) > max {
		cut := max
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}
