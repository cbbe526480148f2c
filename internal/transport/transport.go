// Package transport defines the narrow message-passing surface the sync
// engine needs from a push/subscribe connection, together with a
// websocket implementation speaking a Phoenix-style channel protocol.
// The engine only ever talks to the Transport interface, so it can be
// tested against a fake.
package transport

import "encoding/json"

// Event names delivered over conversation topics.
const (
	EventShout        = "shout"
	EventPresenceDiff = "presence_diff"
)

// Protocol-level events.
const (
	eventJoin      = "phx_join"
	eventLeave     = "phx_leave"
	eventReply     = "phx_reply"
	eventHeartbeat = "heartbeat"
)

// Event is a single inbound frame delivered to a topic handler.
type Event struct {
	Topic   string
	Name    string
	Payload json.RawMessage
}

// Handler receives the join result and subsequent events for one joined
// topic. Callbacks run on the transport's dispatch goroutine, one at a
// time, in delivery order.
type Handler interface {
	JoinOK(topic string, response json.RawMessage)
	JoinError(topic string, reason error)
	Event(ev Event)
}

// Transport multiplexes topic subscriptions over a single persistent
// connection. The connection is created once per session and injected;
// subscription lifecycle belongs exclusively to whoever called Join.
type Transport interface {
	// Join subscribes to a topic and requests entry. The result arrives
	// asynchronously on the handler. A second Join on the same topic
	// replaces the previous handler.
	Join(topic string, h Handler) error

	// Leave unsubscribes from a topic. Idempotent: leaving a topic that
	// was never joined is a no-op.
	Leave(topic string) error

	// Push sends an event to a topic. Delivery is not guaranteed.
	Push(topic, event string, payload any) error
}
