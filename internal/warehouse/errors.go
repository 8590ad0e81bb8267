package warehouse

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	mssql "github.com/microsoft/go-mssqldb"
)

// SQL Server error numbers and Postgres SQLSTATE codes for the constraint
// faults a load can hit: duplicate key (unique index or constraint) and
// foreign key violation.
const (
	msDuplicateKeyIndex      = 2601
	msDuplicateKeyConstraint = 2627
	msConstraintConflict     = 547

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// IsConstraintViolation reports whether err is a duplicate-key or
// foreign-key rejection from either supported engine. Loads use this to
// distinguish "the warehouse already has this data" from infrastructure
// failures when reporting a failed batch.
func IsConstraintViolation(err error) bool {
	var ms mssql.Error
	if errors.As(err, &ms) {
		switch ms.Number {
		case msDuplicateKeyIndex, msDuplicateKeyConstraint, msConstraintConflict:
			return true
		}
	}
	var pg *pgconn.PgError
	if errors.As(err, &pg) {
		switch pg.Code {
		case pgUniqueViolation, pgForeignKeyViolation:
			return true
		}
	}
	return false
}
