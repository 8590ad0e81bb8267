package warehouse

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"salesloader/internal/dedup"
	"salesloader/internal/domain"
)

// Customers reads the whole customer reference table. The table is small
// (thousands of rows) and every load joins against it, so it is fetched
// once per run and indexed in memory.
func Customers(ctx context.Context, db DB, table string) ([]domain.Customer, error) {
	q, args, err := sq.Select("id_cliente", "nombre_cliente", "id_zone").
		From(table).
		PlaceholderFormat(db.Placeholder()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build customer query: %w", err)
	}

	rows, err := db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var out []domain.Customer
	for rows.Next() {
		var (
			c    domain.Customer
			name sql.NullString
			zone sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &name, &zone); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		c.Name = name.String
		if zone.Valid {
			z := zone.Int64
			c.ZoneID = &z
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	return out, nil
}

// ExistingKeys scans the natural-key projection of table and fingerprints
// every row, producing the set a load filters its candidates against.
// filter optionally restricts the scan (e.g. zone quotas live in a shared
// table under a sentinel customer id).
func ExistingKeys(ctx context.Context, db DB, table string, fields []dedup.Field, filter sq.Eq) (dedup.Set, error) {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Column
	}
	builder := sq.Select(cols...).From(table).PlaceholderFormat(db.Placeholder())
	if len(filter) > 0 {
		builder = builder.Where(filter)
	}
	q, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build key query: %w", err)
	}

	rows, err := db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s keys: %w", table, err)
	}
	defer rows.Close()

	ints := make([]sql.NullInt64, len(fields))
	strs := make([]sql.NullString, len(fields))
	dates := make([]sql.NullTime, len(fields))
	dest := make([]any, len(fields))
	for i, f := range fields {
		switch f.Kind {
		case dedup.Int:
			dest[i] = &ints[i]
		case dedup.Date:
			dest[i] = &dates[i]
		default:
			dest[i] = &strs[i]
		}
	}

	set := make(dedup.Set)
	vals := make([]any, len(fields))
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s keys: %w", table, err)
		}
		for i, f := range fields {
			switch f.Kind {
			case dedup.Int:
				if ints[i].Valid {
					vals[i] = ints[i].Int64
				} else {
					vals[i] = nil
				}
			case dedup.Date:
				if dates[i].Valid {
					vals[i] = dates[i].Time
				} else {
					vals[i] = nil
				}
			default:
				if strs[i].Valid {
					vals[i] = strs[i].String
				} else {
					vals[i] = nil
				}
			}
		}
		set.Add(dedup.Fingerprint(fields, vals))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s keys: %w", table, err)
	}
	return set, nil
}
