package queue

import (
	"fmt"
	"testing"
)

func TestHistoryLog_Record(t *testing.T) {
	tests := []struct {
		name      string
		capacity  int
		records   int
		wantCount int
		wantTotal uint64
	}{
		{
			name:      "under capacity",
			capacity:  20,
			records:   5,
			wantCount: 5,
			wantTotal: 5,
		},
		{
			name:      "exactly at capacity",
			capacity:  20,
			records:   20,
			wantCount: 20,
			wantTotal: 20,
		},
		{
			name:      "over capacity evicts oldest",
			capacity:  20,
			records:   25,
			wantCount: 20,
			wantTotal: 25,
		},
		{
			name:      "non-positive capacity falls back to default",
			capacity:  0,
			records:   30,
			wantCount: DefaultHistoryCapacity,
			wantTotal: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistoryLog(tt.capacity)
			for i := 0; i < tt.records; i++ {
				h.Record(fmt.Sprintf("event.%d", i), ResultSuccess)
			}
			if got := h.Count(); got != tt.wantCount {
				t.Errorf("Count() = %d, want %d", got, tt.wantCount)
			}
			if got := h.TotalRecorded(); got != tt.wantTotal {
				t.Errorf("TotalRecorded() = %d, want %d", got, tt.wantTotal)
			}
		})
	}
}

func TestHistoryLog_EvictionOrder(t *testing.T) {
	// 25 successes with capacity 20: the oldest 5 are gone and the rest
	// come back newest-first.
	h := NewHistoryLog(20)
	for i := 0; i < 25; i++ {
		h.Record(fmt.Sprintf("event.%d", i), ResultSuccess)
	}

	recent := h.Recent(20)
	if len(recent) != 20 {
		t.Fatalf("Recent(20) len = %d, want 20", len(recent))
	}
	for i, o := range recent {
		want := fmt.Sprintf("event.%d", 24-i)
		if o.EventType != want {
			t.Errorf("Recent()[%d].EventType = %q, want %q", i, o.EventType, want)
		}
	}
}

func TestHistoryLog_Recent(t *testing.T) {
	tests := []struct {
		name    string
		records int
		n       int
		wantLen int
	}{
		{name: "fewer entries than requested", records: 3, n: 10, wantLen: 3},
		{name: "more entries than requested", records: 15, n: 10, wantLen: 10},
		{name: "zero requested", records: 5, n: 0, wantLen: 0},
		{name: "negative requested", records: 5, n: -1, wantLen: 0},
		{name: "empty log", records: 0, n: 10, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistoryLog(20)
			for i := 0; i < tt.records; i++ {
				h.Record(fmt.Sprintf("event.%d", i), ResultFailed)
			}
			got := h.Recent(tt.n)
			if len(got) != tt.wantLen {
				t.Errorf("Recent(%d) len = %d, want %d", tt.n, len(got), tt.wantLen)
			}
		})
	}
}

func TestHistoryLog_RecentDoesNotMutate(t *testing.T) {
	h := NewHistoryLog(20)
	h.Record("user.created", ResultSuccess)
	h.Record("order.paid", ResultFailed)

	first := h.Recent(10)
	second := h.Recent(10)

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("Recent() lens = %d, %d, want 2, 2", len(first), len(second))
	}
	if first[0].EventType != "order.paid" || first[0].Result != ResultFailed {
		t.Errorf("newest = %+v, want order.paid/failed", first[0])
	}
	if h.Count() != 2 {
		t.Errorf("Count() = %d after reads, want 2", h.Count())
	}
}

func TestHistoryLog_RecordedAtSet(t *testing.T) {
	h := NewHistoryLog(5)
	h.Record("user.created", ResultSuccess)
	got := h.Recent(1)
	if len(got) != 1 {
		t.Fatal("expected one outcome")
	}
	if got[0].RecordedAt.IsZero() {
		t.Error("RecordedAt not set")
	}
}
