package warehouse

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	mssql "github.com/microsoft/go-mssqldb"
)

func TestIsConstraintViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"mssql duplicate index", mssql.Error{Number: 2601}, true},
		{"mssql duplicate constraint", mssql.Error{Number: 2627}, true},
		{"mssql fk conflict", mssql.Error{Number: 547}, true},
		{"mssql other", mssql.Error{Number: 208}, false},
		{"pg unique", &pgconn.PgError{Code: "23505"}, true},
		{"pg fk", &pgconn.PgError{Code: "23503"}, true},
		{"pg other", &pgconn.PgError{Code: "42601"}, false},
		{"plain", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, c := range cases {
		if got := IsConstraintViolation(c.err); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestIsConstraintViolationWrapped(t *testing.T) {
	err := fmt.Errorf("insert rows 0-999 into Ventas_Totales: %w", mssql.Error{Number: 2627})
	if !IsConstraintViolation(err) {
		t.Fatalf("wrapped engine error not recognized")
	}
}
