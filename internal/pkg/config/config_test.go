package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Fatalf("unexpected port %q", cfg.Port)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Fatalf("unexpected TTL %v", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.BcryptCost != bcrypt.DefaultCost {
		t.Fatalf("unexpected bcrypt cost %d", cfg.Auth.BcryptCost)
	}
	if cfg.Store.Driver != DriverSQLite || cfg.Store.SQLitePath != "tickets.db" {
		t.Fatalf("unexpected store config %+v", cfg.Store)
	}
	if cfg.Redis.Enabled {
		t.Fatalf("redis should be disabled by default")
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("default env should be development")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":    "s3cret",
		"TOKEN_TTL":     "15m",
		"STORE_DRIVER":  "postgres",
		"DATABASE_URL":  "postgres://u:p@localhost/helpdesk",
		"REDIS_ENABLED": "true",
		"ENV":           "production",
	}))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.Auth.TokenTTL != 15*time.Minute || cfg.Store.Driver != DriverPostgres || !cfg.Redis.Enabled {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("production must not be development")
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":     {},
		"bad driver":         {"JWT_SECRET": "s", "STORE_DRIVER": "oracle"},
		"postgres no dsn":    {"JWT_SECRET": "s", "STORE_DRIVER": "postgres"},
		"non-positive ttl":   {"JWT_SECRET": "s", "TOKEN_TTL": "0s"},
		"negative ratelimit": {"JWT_SECRET": "s", "AUTH_RATE_LIMIT": "-1"},
	}
	for name, env := range cases {
		if _, err := load(context.Background(), envconfig.MapLookuper(env)); err == nil {
			t.Fatalf("%s: expected error", name)
		} else if !strings.HasPrefix(err.Error(), "config:") {
			t.Fatalf("%s: unexpected error format %q", name, err)
		}
	}
}
