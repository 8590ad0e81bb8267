// Package records defines the loose row representation shared by the source
// reader and the transform stages. A Record maps canonical column names to
// cell values: raw strings straight off the file, nil for empty cells, or
// typed values stamped on by an upstream stage (e.g. workbook metadata).
package records

// Record is one tabular row keyed by canonical column name.
type Record map[string]any

// String returns the value for key as a string, or "" when the key is
// missing, nil, or not string-typed.
func (r Record) String(key string) string {
	if s, ok := r[key].(string); ok {
		return s
	}
	return ""
}

// Int returns the value for key as an int64 when it carries one of the
// integer types a stamping stage may have used; otherwise 0.
func (r Record) Int(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// Has reports whether key is present with a non-nil value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}
