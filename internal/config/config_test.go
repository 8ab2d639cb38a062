package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/marketdash/market-proxy/pkg/cache"
)

func loadWith(t *testing.T, env map[string]string) (Config, error) {
	t.Helper()
	return load(context.Background(), envconfig.MapLookuper(env))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadWith(t, map[string]string{})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Cache.Type != "memory" {
		t.Errorf("Cache.Type = %q, want memory", cfg.Cache.Type)
	}
	if cfg.Cache.MaxSize != 1024 {
		t.Errorf("Cache.MaxSize = %d, want 1024", cfg.Cache.MaxSize)
	}
	if cfg.Normalize.AnnualPeriodLabel != "Q4" {
		t.Errorf("AnnualPeriodLabel = %q, want Q4", cfg.Normalize.AnnualPeriodLabel)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("AllowedOrigins = %v, want localhost default", cfg.Server.AllowedOrigins)
	}
}

func TestLoad_TTLTable(t *testing.T) {
	cfg, err := loadWith(t, map[string]string{
		"CACHE_TTL_SECONDS":            "7200",
		"CACHE_REALTIME_TTL_SECONDS":   "60",
		"CACHE_HISTORICAL_TTL_SECONDS": "600",
	})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	table := cfg.Cache.TTLTable()
	if table.TTL(cache.TTLDefault) != 2*time.Hour {
		t.Errorf("default TTL = %v, want 2h", table.TTL(cache.TTLDefault))
	}
	if table.TTL(cache.TTLRealtime) != time.Minute {
		t.Errorf("realtime TTL = %v, want 1m", table.TTL(cache.TTLRealtime))
	}
	if table.TTL(cache.TTLHistorical) != 10*time.Minute {
		t.Errorf("historical TTL = %v, want 10m", table.TTL(cache.TTLHistorical))
	}
}

func TestLoad_RedisRequiresAddr(t *testing.T) {
	_, err := loadWith(t, map[string]string{"CACHE_TYPE": "redis"})
	if err == nil {
		t.Fatal("expected error for CACHE_TYPE=redis without REDIS_ADDR")
	}

	cfg, err := loadWith(t, map[string]string{
		"CACHE_TYPE": "redis",
		"REDIS_ADDR": "localhost:6379",
	})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.Cache.RedisAddr)
	}
}

func TestLoad_RejectsInvalidCacheType(t *testing.T) {
	if _, err := loadWith(t, map[string]string{"CACHE_TYPE": "bogus"}); err == nil {
		t.Fatal("expected error for unknown cache type")
	}
}

func TestLoad_MultipleOrigins(t *testing.T) {
	cfg, err := loadWith(t, map[string]string{
		"ALLOWED_ORIGINS": "https://dash.example.com,https://staging.example.com",
	})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v, want 2 entries", cfg.Server.AllowedOrigins)
	}
}
