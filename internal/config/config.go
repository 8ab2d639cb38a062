// Package config loads the proxy configuration from the environment.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/marketdash/market-proxy/pkg/cache"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Cache     CacheConfig
	Polygon   PolygonConfig
	Yahoo     YahooConfig
	Normalize NormalizeConfig
}

type ServerConfig struct {
	Port                   int `env:"SERVER_PORT, default=8080"`
	ShutdownTimeoutSeconds int `env:"SERVER_SHUTDOWN_TIMEOUT_SECS, default=25"`

	// AllowedOrigins is the CORS allow-list for browser clients.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS, default=http://localhost:3000"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL, default=info"`
	Pretty bool   `env:"LOG_PRETTY, default=false"`
}

// CacheConfig specifies the response-cache backend and freshness policy.
type CacheConfig struct {
	// Type selects the store implementation: "memory" (default) or "redis".
	Type string `env:"CACHE_TYPE, default=memory"`

	// MaxSize bounds the memory store's entry count.
	MaxSize int `env:"CACHE_MAX_SIZE, default=1024"`

	// Per-class TTLs in seconds.
	DefaultTTLSeconds    int `env:"CACHE_TTL_SECONDS, default=21600"`
	RealtimeTTLSeconds   int `env:"CACHE_REALTIME_TTL_SECONDS, default=300"`
	HistoricalTTLSeconds int `env:"CACHE_HISTORICAL_TTL_SECONDS, default=3600"`

	// RedisAddr is the Redis server address (host:port), required when
	// Type is "redis".
	RedisAddr string `env:"REDIS_ADDR"`
}

// Validate checks the cache settings for consistency.
func (c CacheConfig) Validate() error {
	switch c.Type {
	case "memory":
		if c.MaxSize <= 0 {
			return fmt.Errorf("CACHE_MAX_SIZE must be positive, got %d", c.MaxSize)
		}
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when CACHE_TYPE=redis")
		}
	default:
		return fmt.Errorf("unknown CACHE_TYPE %q (want memory or redis)", c.Type)
	}

	if c.DefaultTTLSeconds <= 0 || c.RealtimeTTLSeconds <= 0 || c.HistoricalTTLSeconds <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	return nil
}

// TTLTable converts the configured per-class TTLs into the cache's
// expiration table.
func (c CacheConfig) TTLTable() cache.TTLTable {
	return cache.TTLTable{
		cache.TTLDefault:    time.Duration(c.DefaultTTLSeconds) * time.Second,
		cache.TTLRealtime:   time.Duration(c.RealtimeTTLSeconds) * time.Second,
		cache.TTLHistorical: time.Duration(c.HistoricalTTLSeconds) * time.Second,
	}
}

type PolygonConfig struct {
	BaseURL        string `env:"POLYGON_BASE_URL, default=https://api.polygon.io"`
	APIKey         string `env:"POLYGON_API_KEY"`
	TimeoutSeconds int    `env:"POLYGON_TIMEOUT_SECS, default=10"`
}

type YahooConfig struct {
	BaseURL        string `env:"YAHOO_BASE_URL, default=https://query1.finance.yahoo.com"`
	TimeoutSeconds int    `env:"YAHOO_TIMEOUT_SECS, default=10"`
}

// NormalizeConfig tunes normalization behavior.
type NormalizeConfig struct {
	// AnnualPeriodLabel is the fiscal-period label for annual reporting
	// periods. The conventional value "Q4" keeps annual and quarterly
	// periods sortable together; operators who consider that labeling
	// wrong can override it.
	AnnualPeriodLabel string `env:"FINANCIALS_ANNUAL_PERIOD_LABEL, default=Q4"`
}

// Load reads the configuration from the OS environment.
func Load(ctx context.Context) (Config, error) {
	return load(ctx, nil)
}

func load(ctx context.Context, lookup envconfig.Lookuper) (Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookup, // nil defaults to OS environment
	})
	if err != nil {
		return cfg, err
	}

	if err := cfg.Cache.Validate(); err != nil {
		return cfg, fmt.Errorf("cache config: %w", err)
	}

	return cfg, nil
}
