package config

import (
	"os"
	"testing"
)

func TestConfig_Defaults(t *testing.T) {
	os.Unsetenv("DATABASE_DRIVER")
	os.Unsetenv("HTTP_PORT")
	os.Unsetenv("CORS_ORIGINS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DatabaseDriver != "postgres" {
		t.Errorf("DatabaseDriver = %q, want %q", cfg.DatabaseDriver, "postgres")
	}
	if cfg.HTTPPort != 3200 {
		t.Errorf("HTTPPort = %d, want %d", cfg.HTTPPort, 3200)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:5173" {
		t.Errorf("CORSOrigins = %v, want default dev origin", cfg.CORSOrigins)
	}
}

func TestConfig_DriverFromEnv(t *testing.T) {
	os.Setenv("DATABASE_DRIVER", "sqlite")
	os.Setenv("SQLITE_PATH", "/tmp/test.db")
	defer os.Unsetenv("DATABASE_DRIVER")
	defer os.Unsetenv("SQLITE_PATH")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DatabaseDriver != "sqlite" {
		t.Errorf("DatabaseDriver = %q, want %q", cfg.DatabaseDriver, "sqlite")
	}
	if cfg.SQLitePath != "/tmp/test.db" {
		t.Errorf("SQLitePath = %q, want %q", cfg.SQLitePath, "/tmp/test.db")
	}
}

func TestConfig_GormPostgresDriver(t *testing.T) {
	os.Setenv("DATABASE_DRIVER", "gorm-postgres")
	defer os.Unsetenv("DATABASE_DRIVER")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DatabaseDriver != "gorm-postgres" {
		t.Errorf("DatabaseDriver = %q, want %q", cfg.DatabaseDriver, "gorm-postgres")
	}
}

func TestConfig_CORSOriginsList(t *testing.T) {
	os.Setenv("CORS_ORIGINS", "https://admin.example.com, https://staging.example.com ,")
	defer os.Unsetenv("CORS_ORIGINS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"https://admin.example.com", "https://staging.example.com"}
	if len(cfg.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.CORSOrigins, want)
	}
	for i, origin := range want {
		if cfg.CORSOrigins[i] != origin {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.CORSOrigins[i], origin)
		}
	}
}
