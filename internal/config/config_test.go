package config

import (
	"flag"
	"testing"
)

func loadTest(t *testing.T, env map[string]string, args []string) *Config {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	getenv := func(k string) string { return env[k] }
	return LoadFromArgs(fs, getenv, args)
}

func TestDefaults(t *testing.T) {
	cfg := loadTest(t, nil, nil)
	if cfg.Driver != "sqlserver" {
		t.Errorf("Driver = %q", cfg.Driver)
	}
	if cfg.BatchSize != 1000 {
		t.Errorf("BatchSize = %d", cfg.BatchSize)
	}
	if cfg.DefaultZoneID != 1 {
		t.Errorf("DefaultZoneID = %d", cfg.DefaultZoneID)
	}
	if cfg.CustomerTable != "Clientes" {
		t.Errorf("CustomerTable = %q", cfg.CustomerTable)
	}
	if cfg.Datasets != "all" {
		t.Errorf("Datasets = %q", cfg.Datasets)
	}
}

func TestEnvFallback(t *testing.T) {
	env := map[string]string{
		"SERVER_NAME":   "warehouse.example.com",
		"PORT":          "14330",
		"DATABASE_NAME": "Ventas",
		"DB_USERNAME":   "loader",
		"DB_PASSWORD":   "s3cret",
		"BATCH_SIZE":    "250",
	}
	cfg := loadTest(t, env, nil)
	if cfg.Server != "warehouse.example.com" || cfg.Port != "14330" {
		t.Errorf("server = %s:%s", cfg.Server, cfg.Port)
	}
	if cfg.Database != "Ventas" || cfg.Username != "loader" || cfg.Password != "s3cret" {
		t.Errorf("credentials not picked up: %+v", cfg)
	}
	if cfg.BatchSize != 250 {
		t.Errorf("BatchSize = %d", cfg.BatchSize)
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	env := map[string]string{"BATCH_SIZE": "250", "DATASETS": "sales"}
	cfg := loadTest(t, env, []string{"-batch_size=50", "-datasets=balances,forecast"})
	if cfg.BatchSize != 50 {
		t.Errorf("BatchSize = %d", cfg.BatchSize)
	}
	if cfg.Datasets != "balances,forecast" {
		t.Errorf("Datasets = %q", cfg.Datasets)
	}
}

func TestInvalidIntEnvFallsBack(t *testing.T) {
	cfg := loadTest(t, map[string]string{"BATCH_SIZE": "lots"}, nil)
	if cfg.BatchSize != 1000 {
		t.Errorf("BatchSize = %d, want default", cfg.BatchSize)
	}
}

func TestWarehouseDSN(t *testing.T) {
	cfg := loadTest(t, map[string]string{
		"SERVER_NAME":   "db.local",
		"PORT":          "1433",
		"DATABASE_NAME": "Ventas",
		"DB_USERNAME":   "loader",
		"DB_PASSWORD":   "pw",
	}, nil)
	want := "sqlserver://loader:pw@db.local:1433?database=Ventas"
	if got := cfg.WarehouseDSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}

	cfg.Driver = "postgres"
	want = "postgres://loader:pw@db.local:1433/Ventas?sslmode=disable"
	if got := cfg.WarehouseDSN(); got != want {
		t.Errorf("postgres DSN = %q, want %q", got, want)
	}

	cfg.DSN = "sqlserver://explicit"
	if got := cfg.WarehouseDSN(); got != "sqlserver://explicit" {
		t.Errorf("explicit DSN not preferred: %q", got)
	}
}
