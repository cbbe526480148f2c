package entity

import "time"

// Message sender types.
const (
	MessageTypeCustomer = "customer"
	MessageTypeAgent    = "agent"
	MessageTypeBot      = "bot"
)

// Message is a single message within a conversation. ID is empty for
// locally created optimistic messages until the server confirms them.
// At most one of CustomerID and UserID is set; it identifies the sender.
//
// CreatedAt is assigned by the server and is authoritative by default.
// SentAt is set by the sending client before network submission and is
// only trusted when it is earlier than CreatedAt (see store.EffectiveTime).
type Message struct {
	ID             string     `json:"id,omitempty"`
	ConversationID string     `json:"conversation_id" validate:"required"`
	Body           string     `json:"body"`
	CreatedAt      time.Time  `json:"created_at"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	CustomerID     string     `json:"customer_id,omitempty"`
	UserID         string     `json:"user_id,omitempty"`
	Type           string     `json:"type" validate:"omitempty,oneof=customer agent bot"`
}

// SenderKey identifies the sender for display grouping: consecutive
// messages with the same key stack under one avatar.
func (m *Message) SenderKey() string {
	return m.Type + ":" + m.CustomerID + ":" + m.UserID
}

// OutboundMessage is the payload pushed over the channel for a new
// agent message (the "shout" event).
type OutboundMessage struct {
	Body           string     `json:"body" validate:"required"`
	Sender         string     `json:"sender"`
	ConversationID string     `json:"conversation_id" validate:"required"`
	AccountID      string     `json:"account_id"`
	CustomerID     string     `json:"customer_id,omitempty"`
	UserID         string     `json:"user_id,omitempty"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
}
