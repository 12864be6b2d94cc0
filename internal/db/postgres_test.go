package db

import (
	"testing"
	"time"
)

func TestPoolConfig(t *testing.T) {
	cfg, err := poolConfig("postgres://u:p@localhost:5432/storefront?sslmode=disable", 6)
	if err != nil {
		t.Fatalf("poolConfig: %v", err)
	}
	if cfg.MaxConns != 6 || cfg.MinConns != 1 {
		t.Fatalf("unexpected pool size max=%d min=%d", cfg.MaxConns, cfg.MinConns)
	}
	if cfg.HealthCheckPeriod != 30*time.Second || cfg.MaxConnIdleTime != 5*time.Minute {
		t.Fatalf("unexpected timings %+v", cfg)
	}
	if got := cfg.ConnConfig.RuntimeParams["application_name"]; got != ApplicationName {
		t.Fatalf("application_name = %q", got)
	}
}

func TestPoolConfigKeepsDSNSettings(t *testing.T) {
	cfg, err := poolConfig("postgres://u:p@localhost/db?pool_max_conns=3&pool_min_conns=2&application_name=ops", 0)
	if err != nil {
		t.Fatalf("poolConfig: %v", err)
	}
	if cfg.MaxConns != 3 || cfg.MinConns != 2 {
		t.Fatalf("DSN pool size overridden max=%d min=%d", cfg.MaxConns, cfg.MinConns)
	}
	if got := cfg.ConnConfig.RuntimeParams["application_name"]; got != "ops" {
		t.Fatalf("application_name = %q", got)
	}
}

func TestPoolConfigRejectsBadDSN(t *testing.T) {
	if _, err := poolConfig("postgres://%zz", 4); err == nil {
		t.Fatalf("expected parse error")
	}
}
