// Package lifecycle tracks per-conversation status transitions,
// including the optimistic "closing" display state shown while a close
// request is in flight.
package lifecycle

import (
	"sync"

	"chatsync/entity"
)

// Display statuses. Closing is purely optimistic: the conversation is
// rendered with the closed treatment in lists but stays selected if
// currently viewed.
const (
	StatusOpen    = "open"
	StatusClosing = "closing"
	StatusClosed  = "closed"
)

// Tracker holds the display status and priority flag for every
// conversation seen this session. Priority is an orthogonal flag, not a
// lifecycle stage.
type Tracker struct {
	mu         sync.Mutex
	statuses   map[string]string
	pending    map[string]string // prior status of an in-flight transition
	priorities map[string]bool
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		statuses:   make(map[string]string),
		pending:    make(map[string]string),
		priorities: make(map[string]bool),
	}
}

// Track seeds the tracker from an externally fetched conversation.
func (t *Tracker) Track(c entity.Conversation) {
	t.mu.Lock()
	defer t.mu.Unlock()

	status := c.Status
	if status != StatusClosed {
		status = StatusOpen
	}
	t.statuses[c.ID] = status
	t.priorities[c.ID] = c.Priority == entity.PriorityHigh
}

// Status returns the display status. Conversations the tracker has not
// seen are open.
func (t *Tracker) Status(conversationID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.statuses[conversationID]; ok {
		return s
	}
	return StatusOpen
}

// IsClosing reports whether a close request is in flight.
func (t *Tracker) IsClosing(conversationID string) bool {
	return t.Status(conversationID) == StatusClosing
}

// MarkClosing transitions to the optimistic closing state before the
// confirming request returns.
func (t *Tracker) MarkClosing(conversationID string) {
	t.transition(conversationID, StatusClosing)
}

// ConfirmClosed finalizes a close once the backing request succeeds.
func (t *Tracker) ConfirmClosed(conversationID string) {
	t.confirm(conversationID, StatusClosed)
}

// Reopen optimistically returns a closed conversation to open; the same
// confirm/rollback contract applies.
func (t *Tracker) Reopen(conversationID string) {
	t.transition(conversationID, StatusOpen)
}

// ConfirmReopened finalizes a reopen.
func (t *Tracker) ConfirmReopened(conversationID string) {
	t.confirm(conversationID, StatusOpen)
}

// Rollback reverts an in-flight transition to the prior status with no
// partial state retained. No-op when nothing is in flight.
func (t *Tracker) Rollback(conversationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prior, ok := t.pending[conversationID]
	if !ok {
		return
	}
	delete(t.pending, conversationID)
	t.statuses[conversationID] = prior
}

// SetPriority sets the priority flag.
func (t *Tracker) SetPriority(conversationID string, priority bool) {
	t.mu.Lock()
	t.priorities[conversationID] = priority
	t.mu.Unlock()
}

// IsPriority reports the priority flag.
func (t *Tracker) IsPriority(conversationID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.priorities[conversationID]
}

func (t *Tracker) transition(conversationID, to string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prior, ok := t.statuses[conversationID]
	if !ok {
		prior = StatusOpen
	}
	// Only the first optimistic transition records the prior status;
	// a rollback must land on the state before the whole exchange.
	if _, inFlight := t.pending[conversationID]; !inFlight {
		t.pending[conversationID] = prior
	}
	t.statuses[conversationID] = to
}

func (t *Tracker) confirm(conversationID, final string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.pending, conversationID)
	t.statuses[conversationID] = final
}
