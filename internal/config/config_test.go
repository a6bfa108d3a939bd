package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GROCERY_ADDR", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("JWT_TTL_HOURS", "")

	cfg := Load()
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.Addr)
	}
	if cfg.Store.Driver != DriverBolt {
		t.Fatalf("expected default driver %q, got %q", DriverBolt, cfg.Store.Driver)
	}
	if cfg.TokenTTL != 72*time.Hour {
		t.Fatalf("expected 72h token ttl, got %v", cfg.TokenTTL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ALLOW_RESET", "1")
	t.Setenv("LOCAL_SESSION", "true")
	t.Setenv("JWT_TTL_HOURS", "not-a-number")

	cfg := Load()
	if cfg.Store.Driver != DriverPostgres {
		t.Fatalf("driver should be lowercased, got %q", cfg.Store.Driver)
	}
	if cfg.Store.RedisDB != 3 {
		t.Fatalf("expected redis db 3, got %d", cfg.Store.RedisDB)
	}
	if !cfg.AllowReset || !cfg.LocalSession {
		t.Fatalf("expected boolean flags to be parsed, got %+v", cfg)
	}
	if cfg.TokenTTL != 72*time.Hour {
		t.Fatalf("invalid int should fall back to default, got %v", cfg.TokenTTL)
	}
}
