package cache

import (
	"context"
	"errors"
)

var (
	// ErrCacheMiss indicates the requested key was not found or has expired.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates a stored entry could not be decoded.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is a key/value backend holding cache entries. Implementations
// must be safe for concurrent use and must never return an expired
// entry from Get.
type Store interface {
	// Get retrieves an entry by key string.
	// Returns ErrCacheMiss if the key is absent or the entry is expired.
	Get(ctx context.Context, key string) (*Entry, error)

	// Set stores an entry under the key string, evicting older entries
	// if the backend is bounded and at capacity.
	Set(ctx context.Context, key string, entry *Entry) error

	// Delete removes an entry. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
