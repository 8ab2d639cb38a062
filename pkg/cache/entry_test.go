package cache

import (
	"testing"
	"time"
)

func TestEntry_ExpiredAt(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	entry := &Entry{
		Data:      []byte(`{}`),
		StoredAt:  base,
		ExpiresAt: base.Add(time.Hour),
	}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"well before expiry", base.Add(30 * time.Minute), false},
		{"exactly at expiry", base.Add(time.Hour), true},
		{"after expiry", base.Add(2 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := entry.ExpiredAt(tt.now); got != tt.want {
				t.Errorf("ExpiredAt(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestEntry_TTL(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	entry := &Entry{ExpiresAt: base.Add(time.Hour)}

	if got := entry.TTL(base); got != time.Hour {
		t.Errorf("TTL = %v, want 1h", got)
	}
	if got := entry.TTL(base.Add(2 * time.Hour)); got != 0 {
		t.Errorf("TTL after expiry = %v, want 0", got)
	}
}

func TestTTLTable_Fallback(t *testing.T) {
	table := TTLTable{TTLDefault: 6 * time.Hour}

	if got := table.TTL(TTLRealtime); got != 6*time.Hour {
		t.Errorf("missing class TTL = %v, want default fallback", got)
	}
}

func TestDefaultTTLTable(t *testing.T) {
	table := DefaultTTLTable()

	if table.TTL(TTLRealtime) >= table.TTL(TTLHistorical) {
		t.Error("realtime TTL should be shorter than historical")
	}
	if table.TTL(TTLHistorical) >= table.TTL(TTLDefault) {
		t.Error("historical TTL should be shorter than default")
	}
}
