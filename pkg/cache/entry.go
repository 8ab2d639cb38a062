// Package cache provides the market-proxy response cache: deterministic
// key derivation, TTL-class expiration and bounded storage backends.
package cache

import (
	"time"
)

// TTLClass is a named expiration policy bucket. The cache computes an
// entry's expiration at insertion time from a per-class table, so a
// single cache instance can serve slow-changing overview data,
// fast-changing snapshots and medium-lived history without operators
// running one cache per freshness requirement.
type TTLClass string

const (
	// TTLDefault applies to slow-changing resources (company overview,
	// financial statements).
	TTLDefault TTLClass = "default"

	// TTLRealtime applies to intraday market snapshots.
	TTLRealtime TTLClass = "realtime"

	// TTLHistorical applies to historical price series.
	TTLHistorical TTLClass = "historical"
)

// TTLTable maps each class to its time-to-live.
type TTLTable map[TTLClass]time.Duration

// DefaultTTLTable returns the standard expiration table.
func DefaultTTLTable() TTLTable {
	return TTLTable{
		TTLDefault:    6 * time.Hour,
		TTLRealtime:   5 * time.Minute,
		TTLHistorical: 1 * time.Hour,
	}
}

// TTL resolves the duration for a class, falling back to the default
// class when the table has no row for it.
func (t TTLTable) TTL(class TTLClass) time.Duration {
	if d, ok := t[class]; ok {
		return d
	}
	return t[TTLDefault]
}

// Entry represents a cached response document. Entries are owned by the
// store that holds them; callers receive the document bytes, never the
// entry itself.
type Entry struct {
	// Data is the serialized response document.
	Data []byte `json:"data"`

	// StoredAt is when the entry was written.
	StoredAt time.Time `json:"stored_at"`

	// ExpiresAt is when the entry becomes stale.
	ExpiresAt time.Time `json:"expires_at"`
}

// ExpiredAt reports whether the entry is stale at the given instant.
func (e *Entry) ExpiredAt(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// TTL returns the remaining time until expiration, or 0 if already stale.
func (e *Entry) TTL(now time.Time) time.Duration {
	ttl := e.ExpiresAt.Sub(now)
	if ttl < 0 {
		return 0
	}
	return ttl
}
