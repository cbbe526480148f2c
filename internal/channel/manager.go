// Package channel owns the lifecycle of per-conversation push/subscribe
// subscriptions: join, leave, send, and dispatch of inbound events to
// the registered listeners. It has no knowledge of how messages are
// stored or rendered.
package channel

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"chatsync/entity"
	"chatsync/internal/lib/sl"
	"chatsync/internal/transport"
)

// Subscription statuses.
const (
	StatusJoining = "joining"
	StatusJoined  = "joined"
	StatusErrored = "errored"
	StatusLeft    = "left"
)

// Subscription is a handle to one conversation channel. Its status is
// owned by the Manager that created it.
type Subscription struct {
	m              *Manager
	conversationID string
	topic          string
	epoch          uint64
	status         string
}

// ConversationID returns the conversation this subscription belongs to.
func (s *Subscription) ConversationID() string {
	return s.conversationID
}

// Status returns the current subscription status.
func (s *Subscription) Status() string {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.status
}

// Manager enforces the at-most-one-joined-subscription invariant for a
// single dashboard view: joining a new conversation's channel leaves any
// previously joined channel for a different conversation. The transport
// connection itself is shared across the session; only the Manager that
// created a subscription may join or leave on its behalf.
type Manager struct {
	transport transport.Transport
	log       *slog.Logger
	validate  *validator.Validate

	mu      sync.Mutex
	current *Subscription
	epoch   uint64

	messages MessageListener
	presence PresenceListener
	joins    JoinListener
	effects  EffectListener
}

// NewManager creates a channel manager over an already-connected
// transport.
func NewManager(t transport.Transport, log *slog.Logger) *Manager {
	return &Manager{
		transport: t,
		log:       log.With(sl.Module("channel.manager")),
		validate:  validator.New(),
	}
}

// SetMessageListener sets the listener for inbound messages.
func (m *Manager) SetMessageListener(l MessageListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = l
}

// SetPresenceListener sets the listener for presence diffs.
func (m *Manager) SetPresenceListener(l PresenceListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presence = l
}

// SetJoinListener sets the listener for join outcomes.
func (m *Manager) SetJoinListener(l JoinListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joins = l
}

// SetEffectListener sets the consumer of effect descriptors.
func (m *Manager) SetEffectListener(l EffectListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.effects = l
}

// Join subscribes to conversation:{id}. If a subscription for a
// different conversation is active it is left first. Each join carries
// an epoch number; a join ack that arrives after the view has moved on
// is discarded. The returned handle starts in the joining state; the
// outcome is delivered to the JoinListener.
func (m *Manager) Join(conversationID string) (*Subscription, error) {
	m.mu.Lock()

	if cur := m.current; cur != nil {
		if cur.conversationID == conversationID && (cur.status == StatusJoining || cur.status == StatusJoined) {
			m.mu.Unlock()
			return cur, nil
		}
		m.supersedeLocked(cur)
	}

	m.epoch++
	sub := &Subscription{
		m:              m,
		conversationID: conversationID,
		topic:          "conversation:" + conversationID,
		epoch:          m.epoch,
		status:         StatusJoining,
	}
	m.current = sub
	m.mu.Unlock()

	if err := m.transport.Join(sub.topic, &topicHandler{m: m, sub: sub}); err != nil {
		m.mu.Lock()
		sub.status = StatusErrored
		m.mu.Unlock()
		return sub, fmt.Errorf("joining %s: %w", sub.topic, err)
	}

	m.log.Debug("joining channel", slog.String("topic", sub.topic))
	return sub, nil
}

// Leave tears down the subscription. Idempotent if already left.
func (m *Manager) Leave(sub *Subscription) {
	if sub == nil {
		return
	}

	m.mu.Lock()
	if sub.status == StatusLeft {
		m.mu.Unlock()
		return
	}
	m.supersedeLocked(sub)
	m.mu.Unlock()
}

// Send pushes a new message over the joined channel. It returns without
// effect when the handle is not joined or the body is empty or
// whitespace-only: both are caller mistakes, not faults.
func (m *Manager) Send(sub *Subscription, out entity.OutboundMessage) {
	if sub == nil || strings.TrimSpace(out.Body) == "" {
		return
	}

	m.mu.Lock()
	joined := sub.status == StatusJoined
	m.mu.Unlock()
	if !joined {
		return
	}

	out.ConversationID = sub.conversationID
	if err := m.transport.Push(sub.topic, transport.EventShout, out); err != nil {
		// Delivery is best effort; the transport may drop events.
		m.log.Warn("push failed", slog.String("topic", sub.topic), sl.Err(err))
	}
}

// supersedeLocked marks a subscription left and unsubscribes its topic.
// Caller holds m.mu.
func (m *Manager) supersedeLocked(sub *Subscription) {
	sub.status = StatusLeft
	if m.current == sub {
		m.current = nil
	}
	if err := m.transport.Leave(sub.topic); err != nil {
		m.log.Warn("leave failed", slog.String("topic", sub.topic), sl.Err(err))
	}
}

// topicHandler routes transport callbacks for one subscription. Every
// callback checks the subscription's epoch against the manager's, so
// results belonging to a superseded join are ignored.
type topicHandler struct {
	m   *Manager
	sub *Subscription
}

func (h *topicHandler) JoinOK(topic string, _ json.RawMessage) {
	m := h.m

	m.mu.Lock()
	if h.sub.epoch != m.epoch || h.sub.status != StatusJoining {
		m.mu.Unlock()
		m.log.Debug("discarding stale join ack", slog.String("topic", topic))
		m.transport.Leave(topic)
		return
	}
	h.sub.status = StatusJoined
	joins, effects := m.joins, m.effects
	m.mu.Unlock()

	if joins != nil {
		joins.Joined(h.sub.conversationID)
	}
	if effects != nil {
		effects.Effect(Effect{Type: EffectScrollToLatest, ConversationID: h.sub.conversationID})
	}
}

func (h *topicHandler) JoinError(topic string, reason error) {
	m := h.m

	m.mu.Lock()
	if h.sub.epoch != m.epoch || h.sub.status != StatusJoining {
		m.mu.Unlock()
		m.log.Debug("discarding stale join error", slog.String("topic", topic))
		return
	}
	h.sub.status = StatusErrored
	joins := m.joins
	m.mu.Unlock()

	m.log.Error("channel join failed", slog.String("topic", topic), sl.Err(reason))
	if joins != nil {
		joins.JoinFailed(h.sub.conversationID, reason)
	}
}

func (h *topicHandler) Event(ev transport.Event) {
	m := h.m

	m.mu.Lock()
	stale := h.sub.epoch != m.epoch || h.sub.status != StatusJoined
	messages, presence, effects := m.messages, m.presence, m.effects
	m.mu.Unlock()
	if stale {
		return
	}

	switch ev.Name {
	case transport.EventShout:
		var msg entity.Message
		if err := json.Unmarshal(ev.Payload, &msg); err != nil {
			m.log.Warn("malformed shout payload", slog.String("topic", ev.Topic), sl.Err(err))
			return
		}
		if msg.ConversationID == "" {
			msg.ConversationID = h.sub.conversationID
		}
		if err := m.validate.Struct(&msg); err != nil {
			m.log.Warn("invalid shout payload", slog.String("topic", ev.Topic), sl.Err(err))
			return
		}

		if messages != nil {
			messages.Append(msg.ConversationID, msg)
		}
		// Agents should not be beeped at by their own messages.
		if effects != nil && msg.UserID == "" {
			effects.Effect(Effect{Type: EffectNotificationSound, ConversationID: msg.ConversationID})
		}

	case transport.EventPresenceDiff:
		var diff entity.PresenceDiff
		if err := json.Unmarshal(ev.Payload, &diff); err != nil {
			m.log.Warn("malformed presence diff", slog.String("topic", ev.Topic), sl.Err(err))
			return
		}
		if presence != nil {
			presence.ApplyDiff(diff)
		}

	default:
		m.log.Debug("ignoring event", slog.String("topic", ev.Topic), slog.String("event", ev.Name))
	}
}
