// Package config centralizes process configuration. All tunables are
// sourced from command-line flags with environment-variable fallbacks, and
// a .env file in the working directory seeds the environment when present,
// matching how the operators who run the loads keep their credentials.
//
// Typical usage:
//
//	cfg := config.Load() // reads .env, os.Environ, and os.Args
//
// For tests, prefer LoadFromArgs to keep them hermetic:
//
//	fs := flag.NewFlagSet("test", flag.ContinueOnError)
//	getenv := func(k string) string { return testEnv[k] }
//	cfg := config.LoadFromArgs(fs, getenv, []string{"-batch_size=50"})
package config

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all process configuration. All fields are plain values so
// the struct can be copied freely after construction.
type Config struct {
	// Source file locations.
	BalancesCSV string // open-balances export
	PendingCSV  string // pending-orders export
	SalesCSV    string // total-sales export
	ForecastDir string // directory of extracted workbook tables

	// Datasets selects which pipelines run, comma-separated, or "all".
	Datasets string

	// UnmappedCSV is where unresolved customer names are written for
	// operator review.
	UnmappedCSV string

	// DB describes the target warehouse.
	Driver   string // "sqlserver" or "postgres"
	DSN      string // full DSN; when empty it is built from the parts below
	Server   string
	Port     string
	Database string
	Username string
	Password string

	// CustomerTable is the reference table loads resolve names against.
	CustomerTable string

	// Load tunables.
	BatchSize     int
	DefaultZoneID int
	// ForecastYear is stamped on workbook rows, which carry no year of
	// their own. Zero means the current year.
	ForecastYear int

	Verbose bool
}

// LoadFromArgs builds a Config by defining flags on fs, wiring each flag to
// an environment-variable fallback via getenv, and then parsing args.
//
// Precedence:
//  1. Environment values seed each flag's default.
//  2. Explicit CLI flags (in args) override the seeded defaults.
func LoadFromArgs(fs *flag.FlagSet, getenv func(string) string, args []string) *Config {
	cfg := &Config{}

	envOr := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}
	intEnvOr := func(k string, d int) int {
		if v := getenv(k); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				return i
			}
		}
		return d
	}

	// Source files
	fs.StringVar(&cfg.BalancesCSV, "balances_csv", envOr("BALANCES_CSV", "cartera.csv"), "Path to the open-balances export")
	fs.StringVar(&cfg.PendingCSV, "pending_csv", envOr("PENDING_CSV", "pending_orders.csv"), "Path to the pending-orders export")
	fs.StringVar(&cfg.SalesCSV, "sales_csv", envOr("SALES_CSV", "ventas_totales.csv"), "Path to the total-sales export")
	fs.StringVar(&cfg.ForecastDir, "forecast_dir", envOr("FORECAST_DIR", "./forecast"), "Directory of extracted workbook tables")
	fs.StringVar(&cfg.Datasets, "datasets", envOr("DATASETS", "all"), "Comma-separated datasets to run: balances,pending,sales,forecast or 'all'")
	fs.StringVar(&cfg.UnmappedCSV, "unmapped_csv", envOr("UNMAPPED_CSV", "./unmapped.csv"), "Where to write unresolved customer names")

	// DB connectivity. The env names match the .env file the operators
	// already keep for the warehouse.
	fs.StringVar(&cfg.Driver, "db_driver", envOr("DB_DRIVER", "sqlserver"), "Warehouse driver: 'sqlserver' or 'postgres'")
	fs.StringVar(&cfg.DSN, "dsn", getenv("DB_DSN"), "Full DSN (optional; built from parts when empty)")
	fs.StringVar(&cfg.Server, "db_server", envOr("SERVER_NAME", "localhost"), "Warehouse host")
	fs.StringVar(&cfg.Port, "db_port", envOr("PORT", "1433"), "Warehouse port")
	fs.StringVar(&cfg.Database, "db_name", envOr("DATABASE_NAME", ""), "Warehouse database name")
	fs.StringVar(&cfg.Username, "db_user", envOr("DB_USERNAME", ""), "Warehouse username")
	fs.StringVar(&cfg.Password, "db_password", envOr("DB_PASSWORD", ""), "Warehouse password")
	fs.StringVar(&cfg.CustomerTable, "customer_table", envOr("CUSTOMER_TABLE", "Clientes"), "Customer reference table")

	// Load tunables
	fs.IntVar(&cfg.BatchSize, "batch_size", intEnvOr("BATCH_SIZE", 1000), "Rows per insert batch")
	fs.IntVar(&cfg.DefaultZoneID, "default_zone", intEnvOr("DEFAULT_ZONE_ID", 1), "Zone assigned to customers without one")
	fs.IntVar(&cfg.ForecastYear, "forecast_year", intEnvOr("FORECAST_YEAR", 0), "Planning year for workbook tables (0 = current year)")
	fs.BoolVar(&cfg.Verbose, "v", false, "Enable debug logging")

	if args == nil {
		args = []string{}
	}
	_ = fs.Parse(args)
	return cfg
}

// Load is the production entry point. It seeds the environment from .env
// when one exists, then parses flag.CommandLine against os.Args.
func Load() *Config {
	_ = godotenv.Load()
	return LoadFromArgs(flag.CommandLine, os.Getenv, os.Args[1:])
}

// WarehouseDSN returns the connection string for the configured engine,
// preferring an explicitly supplied DSN.
func (c *Config) WarehouseDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	scheme := "sqlserver"
	q := url.Values{"database": {c.Database}}
	if c.Driver == "postgres" {
		scheme = "postgres"
		q = url.Values{"sslmode": {"disable"}}
	}
	u := url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(c.Username, c.Password),
		Host:     fmt.Sprintf("%s:%s", c.Server, c.Port),
		RawQuery: q.Encode(),
	}
	if c.Driver == "postgres" {
		u.Path = "/" + c.Database
	}
	return u.String()
}
