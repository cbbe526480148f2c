package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chatsync/internal/lib/sl"
)

const writeWait = 10 * time.Second

// frame is the wire format: one JSON object per websocket text message.
type frame struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Ref     string          `json:"ref,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// replyPayload is the body of a phx_reply frame.
type replyPayload struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

// Socket is a websocket-backed Transport. One Socket is shared by all
// topic subscriptions of a session; inbound frames are dispatched from
// a single goroutine so handler callbacks never overlap.
type Socket struct {
	conn *websocket.Conn
	log  *slog.Logger

	writeMu sync.Mutex

	mu       sync.Mutex
	handlers map[string]Handler
	pending  map[string]string // join ref -> topic
	closed   bool

	done chan struct{}
}

// Dial opens the websocket connection and starts the read and heartbeat
// loops. The caller owns the Socket and must Close it when the session
// ends.
func Dial(ctx context.Context, url string, heartbeat time.Duration, log *slog.Logger) (*Socket, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}

	s := &Socket{
		conn:     conn,
		log:      log.With(sl.Module("transport.socket")),
		handlers: make(map[string]Handler),
		pending:  make(map[string]string),
		done:     make(chan struct{}),
	}

	go s.readPump()
	if heartbeat > 0 {
		go s.heartbeatLoop(heartbeat)
	}

	s.log.Info("socket connected", slog.String("url", url))
	return s, nil
}

// Join implements Transport.
func (s *Socket) Join(topic string, h Handler) error {
	ref := uuid.NewString()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("socket closed")
	}
	s.handlers[topic] = h
	s.pending[ref] = topic
	s.mu.Unlock()

	if err := s.write(frame{Topic: topic, Event: eventJoin, Ref: ref, Payload: json.RawMessage(`{}`)}); err != nil {
		s.mu.Lock()
		delete(s.handlers, topic)
		delete(s.pending, ref)
		s.mu.Unlock()
		return fmt.Errorf("joining %s: %w", topic, err)
	}
	return nil
}

// Leave implements Transport.
func (s *Socket) Leave(topic string) error {
	s.mu.Lock()
	if _, ok := s.handlers[topic]; !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.handlers, topic)
	for ref, t := range s.pending {
		if t == topic {
			delete(s.pending, ref)
		}
	}
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return nil
	}
	return s.write(frame{Topic: topic, Event: eventLeave, Ref: uuid.NewString(), Payload: json.RawMessage(`{}`)})
}

// Push implements Transport.
func (s *Socket) Push(topic, event string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", event, err)
	}
	return s.write(frame{Topic: topic, Event: event, Ref: uuid.NewString(), Payload: body})
}

// Close tears down the connection. Pending joins and handlers are
// discarded; no further callbacks are delivered.
func (s *Socket) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.handlers = make(map[string]Handler)
	s.pending = make(map[string]string)
	s.mu.Unlock()

	close(s.done)
	return s.conn.Close()
}

func (s *Socket) write(f frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(f)
}

// readPump reads frames and dispatches them serially. It exits when the
// connection drops or the socket is closed.
func (s *Socket) readPump() {
	for {
		var f frame
		if err := s.conn.ReadJSON(&f); err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if !closed {
				s.log.Warn("socket read failed", sl.Err(err))
			}
			return
		}
		s.dispatch(f)
	}
}

// dispatch routes one inbound frame. Malformed frames are logged and
// dropped; they never crash the engine.
func (s *Socket) dispatch(f frame) {
	if f.Event == eventReply {
		s.dispatchReply(f)
		return
	}

	s.mu.Lock()
	h := s.handlers[f.Topic]
	s.mu.Unlock()
	if h == nil {
		return
	}

	h.Event(Event{Topic: f.Topic, Name: f.Event, Payload: f.Payload})
}

func (s *Socket) dispatchReply(f frame) {
	s.mu.Lock()
	topic, ok := s.pending[f.Ref]
	if ok {
		delete(s.pending, f.Ref)
	}
	h := s.handlers[topic]
	s.mu.Unlock()

	// Replies without a pending join ref are heartbeat or push acks.
	if !ok || h == nil {
		return
	}

	var reply replyPayload
	if err := json.Unmarshal(f.Payload, &reply); err != nil {
		s.log.Warn("malformed join reply", slog.String("topic", topic), sl.Err(err))
		h.JoinError(topic, fmt.Errorf("malformed join reply: %w", err))
		return
	}

	if reply.Status == "ok" {
		h.JoinOK(topic, reply.Response)
		return
	}
	h.JoinError(topic, fmt.Errorf("join rejected: %s", string(reply.Response)))
}

func (s *Socket) heartbeatLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Push("phoenix", eventHeartbeat, map[string]any{}); err != nil {
				s.log.Warn("heartbeat failed", sl.Err(err))
				return
			}
		case <-s.done:
			return
		}
	}
}
