package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func testEntry(now time.Time, data string, ttl time.Duration) *Entry {
	return &Entry{
		Data:      []byte(data),
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	store := NewMemoryStore(10)
	store.now = func() time.Time { return now }

	if err := store.Set(ctx, "k", testEntry(now, `{"v":1}`, time.Hour)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	entry, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(entry.Data) != `{"v":1}` {
		t.Errorf("Data = %s, want {\"v\":1}", entry.Data)
	}
}

func TestMemoryStore_MissOnAbsentKey(t *testing.T) {
	store := NewMemoryStore(10)

	if _, err := store.Get(context.Background(), "absent"); err != ErrCacheMiss {
		t.Errorf("Get(absent) error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryStore_Expiration(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	store := NewMemoryStore(10)
	store.now = func() time.Time { return now }

	if err := store.Set(ctx, "k", testEntry(now, `{}`, time.Hour)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Advance past the TTL
	now = now.Add(time.Hour + time.Second)

	if _, err := store.Get(ctx, "k"); err != ErrCacheMiss {
		t.Errorf("Get(expired) error = %v, want ErrCacheMiss", err)
	}
	if store.Len() != 0 {
		t.Errorf("expired entry not removed, Len = %d", store.Len())
	}
}

func TestMemoryStore_CapacityEviction(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	const capacity = 5
	store := NewMemoryStore(capacity)
	store.now = func() time.Time { return now }

	for i := 0; i < capacity+1; i++ {
		key := fmt.Sprintf("k%d", i)
		if err := store.Set(ctx, key, testEntry(now, `{}`, time.Hour)); err != nil {
			t.Fatalf("Set(%s) failed: %v", key, err)
		}
	}

	if store.Len() != capacity {
		t.Errorf("Len = %d, want %d", store.Len(), capacity)
	}

	// Oldest entry evicted, the rest retrievable
	if _, err := store.Get(ctx, "k0"); err != ErrCacheMiss {
		t.Errorf("Get(k0) error = %v, want ErrCacheMiss (evicted)", err)
	}
	for i := 1; i <= capacity; i++ {
		key := fmt.Sprintf("k%d", i)
		if _, err := store.Get(ctx, key); err != nil {
			t.Errorf("Get(%s) error = %v, want hit", key, err)
		}
	}
}

func TestMemoryStore_GetPromotesEntry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	store := NewMemoryStore(2)
	store.now = func() time.Time { return now }

	store.Set(ctx, "a", testEntry(now, `{}`, time.Hour))
	store.Set(ctx, "b", testEntry(now, `{}`, time.Hour))

	// Touch "a" so "b" becomes least recently used
	if _, err := store.Get(ctx, "a"); err != nil {
		t.Fatalf("Get(a) failed: %v", err)
	}

	store.Set(ctx, "c", testEntry(now, `{}`, time.Hour))

	if _, err := store.Get(ctx, "b"); err != ErrCacheMiss {
		t.Errorf("Get(b) error = %v, want ErrCacheMiss (evicted)", err)
	}
	if _, err := store.Get(ctx, "a"); err != nil {
		t.Errorf("Get(a) error = %v, want hit (promoted)", err)
	}
}

func TestMemoryStore_UpdateExistingKey(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	store := NewMemoryStore(2)
	store.now = func() time.Time { return now }

	store.Set(ctx, "k", testEntry(now, `{"v":1}`, time.Hour))
	store.Set(ctx, "k", testEntry(now, `{"v":2}`, time.Hour))

	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1 after overwriting same key", store.Len())
	}

	entry, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(entry.Data) != `{"v":2}` {
		t.Errorf("Data = %s, want latest write", entry.Data)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	store := NewMemoryStore(2)
	store.now = func() time.Time { return now }

	store.Set(ctx, "k", testEntry(now, `{}`, time.Hour))

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "k"); err != ErrCacheMiss {
		t.Errorf("Get after Delete error = %v, want ErrCacheMiss", err)
	}

	// Deleting an absent key is not an error
	if err := store.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(absent) error = %v, want nil", err)
	}
}

func TestMemoryStore_PanicsOnInvalidCapacity(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewMemoryStore(0) should panic")
		}
	}()
	NewMemoryStore(0)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(64)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", j%16)
				store.Set(ctx, key, testEntry(time.Now(), `{}`, time.Hour))
				store.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	if store.Len() > 64 {
		t.Errorf("Len = %d exceeds capacity", store.Len())
	}
}
