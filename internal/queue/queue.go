package queue

import (
	"sync"
	"time"
)

// Event is a validated webhook payload admitted at the gateway boundary.
// Immutable once enqueued.
type Event struct {
	Type string `json:"event"`
	Data any    `json:"data,omitempty"`
}

// Item tracks one pending delivery. Attempts counts failed delivery
// attempts so far; reads and writes of it go through the queue mutex.
type Item struct {
	Event      Event
	Attempts   int
	EnqueuedAt time.Time
}

// ItemView is a read-only snapshot row exposed for observability.
type ItemView struct {
	Event    string `json:"event"`
	Attempts int    `json:"retries"`
}

// DeliveryQueue holds pending items in FIFO admission order. Enqueue and
// Snapshot are safe to call while a pass is running; removal only happens
// at the end of a pass, atomically, so a mid-pass snapshot never shows an
// item twice and never misses one that has not been visited yet.
//
// Length is unbounded; a producer can grow it without limit.
type DeliveryQueue struct {
	mu    sync.Mutex
	items []*Item

	now func() time.Time
}

func NewDeliveryQueue() *DeliveryQueue {
	return &DeliveryQueue{now: func() time.Time { return time.Now().UTC() }}
}

// Enqueue appends a new pending item with zero attempts. Validation is the
// caller's job; the queue accepts whatever was admitted upstream.
func (q *DeliveryQueue) Enqueue(ev Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, &Item{Event: ev, EnqueuedAt: q.now()})
}

// Len returns the number of pending items.
func (q *DeliveryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Snapshot returns a copy of the pending items for observability. The
// returned slice shares no state with the queue.
func (q *DeliveryQueue) Snapshot() []ItemView {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]ItemView, len(q.items))
	for i, it := range q.items {
		out[i] = ItemView{Event: it.Event.Type, Attempts: it.Attempts}
	}
	return out
}

// incrementAttempts counts a failed delivery attempt against the item and
// returns the new count. The write happens under the queue mutex so a
// concurrent Snapshot never reads a half-written value.
func (q *DeliveryQueue) incrementAttempts(it *Item) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	it.Attempts++
	return it.Attempts
}

// pending returns the set of items present right now, in order. The
// processor visits exactly this set during a pass; items enqueued after
// the call join the queue but are not part of the pass.
func (q *DeliveryQueue) pending() []*Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	snap := make([]*Item, len(q.items))
	copy(snap, q.items)
	return snap
}

// remove rebuilds the queue without the terminally resolved items. Items
// enqueued while the pass was running are preserved in order. This replaces
// the whole slice at once instead of splicing during iteration, which would
// skip neighbors when multiple removals land in one pass.
func (q *DeliveryQueue) remove(resolved map[*Item]struct{}) {
	if len(resolved) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	remaining := make([]*Item, 0, len(q.items)-len(resolved))
	for _, it := range q.items {
		if _, done := resolved[it]; done {
			continue
		}
		remaining = append(remaining, it)
	}
	q.items = remaining
}
