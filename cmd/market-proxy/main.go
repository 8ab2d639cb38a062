// Command market-proxy runs the caching market-data proxy.
//
// It serves normalized ticker endpoints under /api/ticker/{ticker},
// Prometheus metrics under /metrics and a health probe under /health.
// All configuration comes from the environment; see internal/config.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/marketdash/market-proxy/internal/api"
	"github.com/marketdash/market-proxy/internal/config"
	"github.com/marketdash/market-proxy/internal/server"
	"github.com/marketdash/market-proxy/pkg/cache"
	"github.com/marketdash/market-proxy/pkg/logging"
	"github.com/marketdash/market-proxy/pkg/provider/polygon"
	"github.com/marketdash/market-proxy/pkg/provider/yahoo"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.Setup(logging.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
	})

	var hooks server.ShutdownHooks

	store, err := buildStore(ctx, cfg.Cache, logger, &hooks)
	if err != nil {
		return err
	}

	c := cache.New(store, cfg.Cache.TTLTable())
	pg := polygon.New(polygon.Config{
		BaseURL: cfg.Polygon.BaseURL,
		APIKey:  cfg.Polygon.APIKey,
		Timeout: time.Duration(cfg.Polygon.TimeoutSeconds) * time.Second,
	})
	yh := yahoo.New(yahoo.Config{
		BaseURL: cfg.Yahoo.BaseURL,
		Timeout: time.Duration(cfg.Yahoo.TimeoutSeconds) * time.Second,
	})

	mux := api.New(c, pg, yh, cfg.Normalize.AnnualPeriodLabel).Routes()
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.Chain(logger, cfg.Server.AllowedOrigins, mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Int("port", cfg.Server.Port).
			Str("cache_type", cfg.Cache.Type).
			Msg("market proxy listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	timeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	return awaitExit(ctx, srv, &hooks, errCh, timeout, logger)
}

// awaitExit blocks until the server fails or the context is cancelled,
// then drains the server and runs the shutdown hooks. Hooks run on both
// paths so backend connections are always released.
func awaitExit(ctx context.Context, srv *http.Server, hooks *server.ShutdownHooks, errCh <-chan error, timeout time.Duration, logger zerolog.Logger) error {
	var serveErr error
	select {
	case err := <-errCh:
		serveErr = fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if serveErr == nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("server shutdown incomplete")
		}
	}
	hooks.Execute(shutdownCtx)

	return serveErr
}

// buildStore selects the cache backend. Redis gets a connectivity check
// at startup so misconfiguration fails fast instead of degrading every
// request to a miss.
func buildStore(ctx context.Context, cfg config.CacheConfig, logger zerolog.Logger, hooks *server.ShutdownHooks) (cache.Store, error) {
	switch cfg.Type {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		hooks.Add("redis", client.Close)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("using redis cache store")
		return cache.NewRedisStore(client), nil
	default:
		logger.Info().Int("max_size", cfg.MaxSize).Msg("using in-memory cache store")
		return cache.NewMemoryStore(cfg.MaxSize), nil
	}
}
