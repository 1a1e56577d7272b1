package queue

import (
	"sync"
	"time"
)

// DefaultHistoryCapacity bounds the outcome history kept in memory.
const DefaultHistoryCapacity = 20

// Result is the terminal state of a delivery.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailed  Result = "failed"
)

// Outcome records one terminal delivery result.
type Outcome struct {
	EventType  string    `json:"event"`
	Result     Result    `json:"status"`
	RecordedAt time.Time `json:"timestamp"`
}

// HistoryLog is a fixed-capacity, newest-first record of terminal outcomes.
// Once the capacity is exceeded the oldest entry is evicted, so memory use
// stays bounded no matter how many outcomes are recorded. Implemented as a
// ring over a fixed slice; insert and evict are O(1).
type HistoryLog struct {
	mu    sync.Mutex
	buf   []Outcome
	next  int    // index the next outcome is written to
	count int    // entries currently held, <= len(buf)
	total uint64 // all outcomes ever recorded

	now func() time.Time
}

// NewHistoryLog returns a log holding at most capacity outcomes.
// Non-positive capacity falls back to DefaultHistoryCapacity.
func NewHistoryLog(capacity int) *HistoryLog {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &HistoryLog{
		buf: make([]Outcome, capacity),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Record inserts a terminal outcome as the newest entry, evicting the
// oldest once the log is full.
func (h *HistoryLog) Record(eventType string, result Result) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf[h.next] = Outcome{EventType: eventType, Result: result, RecordedAt: h.now()}
	h.next = (h.next + 1) % len(h.buf)
	if h.count < len(h.buf) {
		h.count++
	}
	h.total++
}

// Recent returns up to n outcomes, newest first, without mutating the log.
func (h *HistoryLog) Recent(n int) []Outcome {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n > h.count {
		n = h.count
	}
	if n <= 0 {
		return nil
	}
	out := make([]Outcome, n)
	for i := 0; i < n; i++ {
		idx := (h.next - 1 - i + len(h.buf)*2) % len(h.buf)
		out[i] = h.buf[idx]
	}
	return out
}

// Count returns the number of outcomes currently held.
func (h *HistoryLog) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// TotalRecorded returns the number of outcomes ever recorded, including
// entries that have since been evicted.
func (h *HistoryLog) TotalRecorded() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.total
}
