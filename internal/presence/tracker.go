// Package presence maintains the set of currently-connected customers
// from transport presence diffs.
package presence

import (
	"sync"

	"chatsync/entity"
)

// Tracker counts live connections per customer. A customer is online
// while their count is above zero. State lives only for the current
// session: on transport reconnect the tracker is Reset and a fresh
// presence sync is expected to follow.
type Tracker struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{counts: make(map[string]int)}
}

// ApplyDiff applies one presence diff. Counters clamp at zero: a
// spurious leave can never drive a counter negative.
func (t *Tracker) ApplyDiff(diff entity.PresenceDiff) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, id := range diff.Joins {
		t.counts[id]++
	}
	for _, id := range diff.Leaves {
		if t.counts[id] <= 1 {
			delete(t.counts, id)
			continue
		}
		t.counts[id]--
	}
}

// IsOnline reports whether the customer has at least one live
// connection.
func (t *Tracker) IsOnline(customerID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[customerID] > 0
}

// Reset drops all state, for transport reconnects.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.counts = make(map[string]int)
	t.mu.Unlock()
}
