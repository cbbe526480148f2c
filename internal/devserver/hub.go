package devserver

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"chatsync/entity"
)

// wsFrame is the channel wire format: one JSON object per websocket
// text message.
type wsFrame struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Ref     string          `json:"ref,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Hub maintains the set of active websocket clients, their topic
// subscriptions, and per-topic fanout. Connections carrying a customer
// id also feed presence diffs to the topics they join.
type Hub struct {
	store *state
	log   *slog.Logger

	mu      sync.RWMutex
	clients map[*client]bool
	topics  map[string]map[*client]bool
}

// newHub creates a hub over the shared in-memory state.
func newHub(store *state, log *slog.Logger) *Hub {
	return &Hub{
		store:   store,
		log:     log,
		clients: make(map[*client]bool),
		topics:  make(map[string]map[*client]bool),
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	var left []string
	for topic, members := range h.topics {
		if members[c] {
			delete(members, c)
			left = append(left, topic)
		}
	}
	h.mu.Unlock()

	if c.customerID != "" {
		for _, topic := range left {
			h.broadcastPresence(topic, nil, []string{c.customerID})
		}
	}
}

// handleFrame dispatches one inbound frame from a client.
func (h *Hub) handleFrame(c *client, f wsFrame) {
	switch f.Event {
	case "phx_join":
		h.join(c, f)
	case "phx_leave":
		h.leave(c, f)
	case "heartbeat":
		h.reply(c, f, "ok", nil)
	case "shout":
		h.shout(c, f)
	default:
		h.log.Debug("ignoring client event",
			slog.String("topic", f.Topic),
			slog.String("event", f.Event),
		)
	}
}

func (h *Hub) join(c *client, f wsFrame) {
	if !strings.HasPrefix(f.Topic, "conversation:") && f.Topic != "room:lobby" {
		h.reply(c, f, "error", map[string]string{"reason": "unknown topic"})
		return
	}

	h.mu.Lock()
	members, ok := h.topics[f.Topic]
	if !ok {
		members = make(map[*client]bool)
		h.topics[f.Topic] = members
	}
	members[c] = true
	h.mu.Unlock()

	h.reply(c, f, "ok", nil)

	if c.customerID != "" {
		h.broadcastPresence(f.Topic, []string{c.customerID}, nil)
	}
}

func (h *Hub) leave(c *client, f wsFrame) {
	h.mu.Lock()
	if members, ok := h.topics[f.Topic]; ok {
		delete(members, c)
	}
	h.mu.Unlock()

	h.reply(c, f, "ok", nil)

	if c.customerID != "" {
		h.broadcastPresence(f.Topic, nil, []string{c.customerID})
	}
}

// shout confirms a pushed message (server id and timestamp), stores it,
// and fans it out to everyone on the topic, sender included.
func (h *Hub) shout(c *client, f wsFrame) {
	var out entity.OutboundMessage
	if err := json.Unmarshal(f.Payload, &out); err != nil {
		h.log.Warn("malformed shout", slog.String("topic", f.Topic), slog.String("error", err.Error()))
		return
	}
	if strings.TrimSpace(out.Body) == "" {
		return
	}

	msgType := entity.MessageTypeAgent
	if out.CustomerID != "" {
		msgType = entity.MessageTypeCustomer
	}
	if out.Sender != "" {
		msgType = out.Sender
	}

	msg := entity.Message{
		ID:             uuid.NewString(),
		ConversationID: out.ConversationID,
		Body:           out.Body,
		CreatedAt:      time.Now().UTC(),
		SentAt:         out.SentAt,
		CustomerID:     out.CustomerID,
		UserID:         out.UserID,
		Type:           msgType,
	}
	h.store.appendMessage(msg)

	h.broadcast(f.Topic, "shout", msg)
}

// reply sends a phx_reply for the given inbound frame.
func (h *Hub) reply(c *client, f wsFrame, status string, response any) {
	body := map[string]any{"status": status}
	if response != nil {
		body["response"] = response
	} else {
		body["response"] = map[string]any{}
	}
	payload, _ := json.Marshal(body)
	c.enqueue(wsFrame{Topic: f.Topic, Event: "phx_reply", Ref: f.Ref, Payload: payload})
}

// broadcast fans an event out to every member of a topic.
func (h *Hub) broadcast(topic, event string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}
	f := wsFrame{Topic: topic, Event: event, Payload: body}

	h.mu.RLock()
	for member := range h.topics[topic] {
		member.enqueue(f)
	}
	h.mu.RUnlock()
}

func (h *Hub) broadcastPresence(topic string, joins, leaves []string) {
	if joins == nil {
		joins = []string{}
	}
	if leaves == nil {
		leaves = []string{}
	}
	h.broadcast(topic, "presence_diff", entity.PresenceDiff{Joins: joins, Leaves: leaves})
}
