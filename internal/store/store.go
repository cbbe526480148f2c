// Package store holds, per conversation, an ordered and deduplicated
// sequence of messages. Sequences are cache state for the live view,
// not a database: they are replaced on initial load and discarded with
// the conversation channel.
package store

import (
	"sort"
	"sync"

	"chatsync/entity"
)

// Store keeps the message sequences for all conversations seen this
// session. Safe for concurrent use by the dispatch goroutine and the
// view.
type Store struct {
	mu            sync.RWMutex
	conversations map[string][]entity.Message
}

// New creates an empty store.
func New() *Store {
	return &Store{conversations: make(map[string][]entity.Message)}
}

// LoadInitial replaces the sequence for a conversation with the given
// messages sorted by effective timestamp. The sort is stable: ties keep
// their original relative order.
func (s *Store) LoadInitial(conversationID string, msgs []entity.Message) {
	seq := make([]entity.Message, len(msgs))
	copy(seq, msgs)
	sort.SliceStable(seq, func(i, j int) bool {
		return less(seq[i], seq[j])
	})

	s.mu.Lock()
	s.conversations[conversationID] = seq
	s.mu.Unlock()
}

// Append inserts a single live message preserving effective-timestamp
// order. Appending a message whose non-empty id is already present is a
// no-op. The transport is not trusted to deliver in order, so the
// insertion position is searched rather than assumed to be the tail,
// though for live events it almost always is.
func (s *Store) Append(conversationID string, msg entity.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.conversations[conversationID]

	if msg.ID != "" {
		for i := range seq {
			if seq[i].ID == msg.ID {
				return
			}
		}
	}

	// Walk back from the tail; equal timestamps keep arrival order.
	i := len(seq)
	for i > 0 && less(msg, seq[i-1]) {
		i--
	}

	seq = append(seq, entity.Message{})
	copy(seq[i+1:], seq[i:])
	seq[i] = msg
	s.conversations[conversationID] = seq
}

// Get returns a copy of the current ordered sequence for a conversation;
// empty for a conversation the store has never seen.
func (s *Store) Get(conversationID string) []entity.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq := s.conversations[conversationID]
	out := make([]entity.Message, len(seq))
	copy(out, seq)
	return out
}

// Last returns the most recent message by stored order, not arrival
// order.
func (s *Store) Last(conversationID string) (entity.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq := s.conversations[conversationID]
	if len(seq) == 0 {
		return entity.Message{}, false
	}
	return seq[len(seq)-1], true
}

// Drop discards the cached sequence for a conversation, for channel
// teardown.
func (s *Store) Drop(conversationID string) {
	s.mu.Lock()
	delete(s.conversations, conversationID)
	s.mu.Unlock()
}
