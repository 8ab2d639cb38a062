package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// hitsTotal tracks cache hits by resource kind.
	hitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketproxy_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"kind"},
	)

	// missesTotal tracks cache misses by resource kind.
	missesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketproxy_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"kind"},
	)

	// evictionsTotal tracks capacity evictions from the memory store.
	evictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketproxy_cache_evictions_total",
			Help: "Total number of entries evicted at capacity",
		},
	)

	// storeErrors tracks store operation errors.
	storeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketproxy_cache_store_errors_total",
			Help: "Total number of cache store operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)

	// fetchCollapsedTotal tracks upstream fetches avoided by collapsing
	// concurrent requests for the same key.
	fetchCollapsedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketproxy_cache_fetch_collapsed_total",
			Help: "Total number of duplicate in-flight fetches collapsed",
		},
	)
)
