package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryStore is a bounded in-memory Store.
//
// Eviction policy: least-recently-used. A successful Get promotes the
// entry to most-recently-used; when Set would exceed capacity, the
// least-recently-used entry is removed first. Expired entries are
// dropped lazily on access.
type MemoryStore struct {
	mu         sync.Mutex
	maxEntries int
	ll         *list.List
	items      map[string]*list.Element

	// now is the clock used for expiry checks (overridable in tests).
	now func() time.Time
}

type memoryItem struct {
	key   string
	entry *Entry
}

// NewMemoryStore creates a memory store holding at most maxEntries
// entries. maxEntries must be positive; a non-positive capacity is a
// programming error.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		panic("cache: memory store capacity must be positive")
	}
	return &MemoryStore{
		maxEntries: maxEntries,
		ll:         list.New(),
		items:      make(map[string]*list.Element),
		now:        time.Now,
	}
}

// Get retrieves an entry, promoting it to most-recently-used.
// Returns ErrCacheMiss for absent or expired keys.
func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return nil, ErrCacheMiss
	}

	item := elem.Value.(*memoryItem)
	if item.entry.ExpiredAt(s.now()) {
		s.removeElement(elem)
		return nil, ErrCacheMiss
	}

	s.ll.MoveToFront(elem)
	return item.entry, nil
}

// Set stores an entry, evicting the least-recently-used entry when the
// store is at capacity and the key is new.
func (s *MemoryStore) Set(_ context.Context, key string, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[key]; ok {
		s.ll.MoveToFront(elem)
		elem.Value.(*memoryItem).entry = entry
		return nil
	}

	if s.ll.Len() >= s.maxEntries {
		if oldest := s.ll.Back(); oldest != nil {
			s.removeElement(oldest)
			evictionsTotal.Inc()
		}
	}

	s.items[key] = s.ll.PushFront(&memoryItem{key: key, entry: entry})
	return nil
}

// Delete removes an entry if present.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[key]; ok {
		s.removeElement(elem)
	}
	return nil
}

// Len returns the number of stored entries, including any not yet
// lazily expired.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ll.Len()
}

// removeElement drops an element from both list and index.
// Caller must hold s.mu.
func (s *MemoryStore) removeElement(elem *list.Element) {
	s.ll.Remove(elem)
	delete(s.items, elem.Value.(*memoryItem).key)
}
