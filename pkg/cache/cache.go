package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Status reports whether a lookup was served from cache.
type Status string

const (
	// StatusHit means the response came from the cache.
	StatusHit Status = "HIT"

	// StatusMiss means the response was fetched upstream.
	StatusMiss Status = "MISS"
)

// FetchFunc produces a fresh document for a cache key. The transport
// layer supplies it as a closure over the upstream client call and the
// normalization step, so this package never imports a concrete
// provider. The returned value must be JSON-marshalable.
type FetchFunc func(ctx context.Context) (any, error)

// Cache is the read-through response cache. Lookups derive a
// deterministic key, consult the store, and on a miss invoke the
// supplied fetch closure; the result is written back only when the
// fetch fully succeeds, so a cancelled or failed fetch never leaves a
// partial entry behind.
//
// Concurrent misses for the same key are collapsed to a single
// outstanding fetch. This is a best-effort optimization: callers must
// not rely on at-most-one upstream call per key.
type Cache struct {
	store   Store
	deriver *Deriver
	ttls    TTLTable
	group   singleflight.Group
	logger  zerolog.Logger

	// now is the clock used for expiration stamps (overridable in tests).
	now func() time.Time
}

// New creates a cache over the given store. A nil store is a
// programming error.
func New(store Store, ttls TTLTable) *Cache {
	if store == nil {
		panic("cache: store cannot be nil")
	}
	if ttls == nil {
		ttls = DefaultTTLTable()
	}
	return &Cache{
		store:   store,
		deriver: NewDeriver(),
		ttls:    ttls,
		logger:  log.With().Str("component", "cache").Logger(),
		now:     time.Now,
	}
}

// LookupOrFetch returns the cached document for the request, fetching
// and storing a fresh one on a miss.
//
// Store read errors degrade to a miss and store write errors are
// logged but do not fail the request; the caller still receives the
// freshly fetched document. Fetch errors are returned unchanged so the
// transport layer can map the provider's status code onto its own
// response.
func (c *Cache) LookupOrFetch(ctx context.Context, kind ResourceKind, ticker string, params map[string]string, explicitDate string, fetch FetchFunc) ([]byte, Status, error) {
	key := c.deriver.Derive(kind, ticker, params, explicitDate)
	keyStr := key.String()

	entry, err := c.store.Get(ctx, keyStr)
	if err == nil {
		hitsTotal.WithLabelValues(string(kind)).Inc()
		c.logger.Debug().Str("key", keyStr).Msg("cache hit")
		return entry.Data, StatusHit, nil
	}
	if err != ErrCacheMiss {
		c.logger.Warn().Err(err).Str("key", keyStr).Msg("cache get error")
	}

	missesTotal.WithLabelValues(string(kind)).Inc()

	data, err, shared := c.group.Do(keyStr, func() (any, error) {
		doc, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshal document: %w", err)
		}

		now := c.now()
		entry := &Entry{
			Data:      payload,
			StoredAt:  now,
			ExpiresAt: now.Add(c.ttls.TTL(kind.TTLClass())),
		}
		if err := c.store.Set(ctx, keyStr, entry); err != nil {
			c.logger.Warn().Err(err).Str("key", keyStr).Msg("cache set error")
		} else {
			c.logger.Debug().
				Str("key", keyStr).
				Dur("ttl", entry.TTL(now)).
				Msg("cached document")
		}

		return payload, nil
	})
	if err != nil {
		return nil, StatusMiss, err
	}
	if shared {
		fetchCollapsedTotal.Inc()
	}

	return data.([]byte), StatusMiss, nil
}

// TTL reports the configured time-to-live for a resource kind. The
// transport layer uses it for Cache-Control headers.
func (c *Cache) TTL(kind ResourceKind) time.Duration {
	return c.ttls.TTL(kind.TTLClass())
}
