package entity

import "time"

// Conversation statuses.
const (
	ConversationOpen   = "open"
	ConversationClosed = "closed"
)

// Conversation priorities.
const (
	PriorityNormal = "normal"
	PriorityHigh   = "priority"
)

// Mention records that a user was mentioned in a conversation and when
// they first saw the mention (nil until seen).
type Mention struct {
	UserID string     `json:"user_id"`
	SeenAt *time.Time `json:"seen_at,omitempty"`
}

// Conversation represents a single customer-support conversation as seen
// by the dashboard. An empty AssigneeID means unassigned.
type Conversation struct {
	ID         string    `json:"id" validate:"required"`
	AccountID  string    `json:"account_id"`
	CustomerID string    `json:"customer_id" validate:"required"`
	Status     string    `json:"status" validate:"oneof=open closed"`
	Priority   string    `json:"priority" validate:"omitempty,oneof=normal priority"`
	AssigneeID string    `json:"assignee_id,omitempty"`
	Read       bool      `json:"read"`
	Mentions   []Mention `json:"mentions,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsPriority reports whether the conversation carries the priority flag.
func (c *Conversation) IsPriority() bool {
	return c.Priority == PriorityHigh
}
