package devserver

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"chatsync/entity"
)

// state is the dev server's in-memory backing store. It exists so the
// engine can be exercised end to end locally; nothing here survives a
// restart.
type state struct {
	mu            sync.Mutex
	conversations map[string]entity.Conversation
	messages      map[string][]entity.Message
}

func newState() *state {
	return &state{
		conversations: make(map[string]entity.Conversation),
		messages:      make(map[string][]entity.Message),
	}
}

// seed creates a demo customer and one open conversation so the engine
// has something to join out of the box.
func (st *state) seed(accountID string) entity.Conversation {
	conv := entity.Conversation{
		ID:         uuid.NewString(),
		AccountID:  accountID,
		CustomerID: uuid.NewString(),
		Status:     entity.ConversationOpen,
		Priority:   entity.PriorityNormal,
		CreatedAt:  time.Now().UTC(),
	}

	st.mu.Lock()
	st.conversations[conv.ID] = conv
	st.mu.Unlock()
	return conv
}

func (st *state) listConversations(status string) []entity.Conversation {
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]entity.Conversation, 0, len(st.conversations))
	for _, c := range st.conversations {
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (st *state) listCustomerConversations(customerID string) []entity.Conversation {
	st.mu.Lock()
	defer st.mu.Unlock()

	var out []entity.Conversation
	for _, c := range st.conversations {
		if c.CustomerID == customerID {
			out = append(out, c)
		}
	}
	return out
}

func (st *state) createConversation(accountID, customerID string) entity.Conversation {
	conv := entity.Conversation{
		ID:         uuid.NewString(),
		AccountID:  accountID,
		CustomerID: customerID,
		Status:     entity.ConversationOpen,
		Priority:   entity.PriorityNormal,
		CreatedAt:  time.Now().UTC(),
	}

	st.mu.Lock()
	st.conversations[conv.ID] = conv
	st.mu.Unlock()
	return conv
}

// update mutates one conversation under the lock; it reports whether
// the conversation exists.
func (st *state) update(conversationID string, fn func(*entity.Conversation)) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	c, ok := st.conversations[conversationID]
	if !ok {
		return false
	}
	fn(&c)
	st.conversations[conversationID] = c
	return true
}

func (st *state) appendMessage(msg entity.Message) {
	st.mu.Lock()
	st.messages[msg.ConversationID] = append(st.messages[msg.ConversationID], msg)
	st.mu.Unlock()
}

func (st *state) listMessages(conversationID string) []entity.Message {
	st.mu.Lock()
	defer st.mu.Unlock()

	msgs := st.messages[conversationID]
	out := make([]entity.Message, len(msgs))
	copy(out, msgs)
	return out
}
