// Package cache implements the market-proxy response cache.
//
// The cache is read-through: a lookup derives a deterministic key from
// the resource kind, ticker and request parameters, consults the
// configured store, and on a miss invokes a caller-supplied fetch
// closure whose result is written back with a TTL-class expiration.
//
// # Key derivation
//
// Keys fold in a calendar-date freshness bucket so that date-less
// requests ("current overview of AAPL") roll over once per UTC day,
// while explicitly dated requests stay stable across days. Snapshot
// keys omit the bucket entirely and rely on the short realtime TTL.
// Tickers are upper-cased before key construction, and compound
// parameters are serialized in sorted order so two identical requests
// always share an entry.
//
// # Stores
//
// Two backends implement the Store interface:
//
//   - MemoryStore: bounded, least-recently-used eviction, lazy expiry.
//   - RedisStore: shared cache for multi-replica deployments, expiry
//     delegated to Redis key TTLs.
//
// # Basic usage
//
//	store := cache.NewMemoryStore(1024)
//	c := cache.New(store, cache.DefaultTTLTable())
//
//	doc, status, err := c.LookupOrFetch(ctx, cache.KindOverview, "AAPL", nil, "",
//		func(ctx context.Context) (any, error) {
//			raw, err := polygonClient.TickerOverview(ctx, "AAPL", "")
//			if err != nil {
//				return nil, err
//			}
//			return normalize.Overview(normalize.ProviderPolygon, raw)
//		})
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - marketproxy_cache_hits_total{kind}
//   - marketproxy_cache_misses_total{kind}
//   - marketproxy_cache_evictions_total
//   - marketproxy_cache_store_errors_total{operation}
//   - marketproxy_cache_fetch_collapsed_total
package cache
