package transport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanHandler funnels callbacks into channels the test can wait on.
type chanHandler struct {
	joinOK  chan string
	joinErr chan error
	events  chan Event
}

func newChanHandler() *chanHandler {
	return &chanHandler{
		joinOK:  make(chan string, 4),
		joinErr: make(chan error, 4),
		events:  make(chan Event, 4),
	}
}

func (h *chanHandler) JoinOK(topic string, _ json.RawMessage) { h.joinOK <- topic }
func (h *chanHandler) JoinError(topic string, reason error)   { h.joinErr <- reason }
func (h *chanHandler) Event(ev Event)                         { h.events <- ev }

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// fakeChannelServer accepts one connection and answers joins according
// to joinStatus, then pushes any frames queued on outbound.
func fakeChannelServer(t *testing.T, joinStatus string, outbound <-chan frame) *httptest.Server {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		go func() {
			for f := range outbound {
				conn.WriteJSON(f)
			}
		}()

		for {
			var f frame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			if f.Event == eventJoin && joinStatus != "" {
				payload, _ := json.Marshal(map[string]any{
					"status":   joinStatus,
					"response": map[string]any{},
				})
				conn.WriteJSON(frame{Topic: f.Topic, Event: eventReply, Ref: f.Ref, Payload: payload})
			}
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func dialTest(t *testing.T, ts *httptest.Server) *Socket {
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	sock, err := Dial(context.Background(), url, 0, log)
	require.NoError(t, err)
	t.Cleanup(func() { sock.Close() })
	return sock
}

func waitTopic(t *testing.T, ch chan string) string {
	select {
	case topic := <-ch:
		return topic
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for join result")
		return ""
	}
}

func TestJoinOKRoutedToHandler(t *testing.T) {
	outbound := make(chan frame)
	ts := fakeChannelServer(t, "ok", outbound)
	sock := dialTest(t, ts)

	h := newChanHandler()
	require.NoError(t, sock.Join("conversation:c1", h))

	assert.Equal(t, "conversation:c1", waitTopic(t, h.joinOK))
}

func TestJoinErrorRoutedToHandler(t *testing.T) {
	outbound := make(chan frame)
	ts := fakeChannelServer(t, "error", outbound)
	sock := dialTest(t, ts)

	h := newChanHandler()
	require.NoError(t, sock.Join("conversation:c1", h))

	select {
	case err := <-h.joinErr:
		assert.Contains(t, err.Error(), "join rejected")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for join error")
	}
}

func TestEventsDeliveredToJoinedTopic(t *testing.T) {
	outbound := make(chan frame, 1)
	ts := fakeChannelServer(t, "ok", outbound)
	sock := dialTest(t, ts)

	h := newChanHandler()
	require.NoError(t, sock.Join("conversation:c1", h))
	waitTopic(t, h.joinOK)

	outbound <- frame{
		Topic:   "conversation:c1",
		Event:   EventShout,
		Payload: json.RawMessage(`{"body":"hi"}`),
	}

	select {
	case ev := <-h.events:
		assert.Equal(t, EventShout, ev.Name)
		assert.Equal(t, "conversation:c1", ev.Topic)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestEventsForUnjoinedTopicAreDropped(t *testing.T) {
	outbound := make(chan frame, 2)
	ts := fakeChannelServer(t, "ok", outbound)
	sock := dialTest(t, ts)

	h := newChanHandler()
	require.NoError(t, sock.Join("conversation:c1", h))
	waitTopic(t, h.joinOK)

	outbound <- frame{Topic: "conversation:other", Event: EventShout, Payload: json.RawMessage(`{}`)}
	outbound <- frame{Topic: "conversation:c1", Event: EventShout, Payload: json.RawMessage(`{}`)}

	// Only the joined topic's event arrives; the other one vanished.
	select {
	case ev := <-h.events:
		assert.Equal(t, "conversation:c1", ev.Topic)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	assert.Empty(t, h.events)
}

func TestLeaveBeforeReplyDropsPendingJoin(t *testing.T) {
	// A server that never answers the join: the leave must clear the
	// pending ref so a late reply has nowhere to land.
	outbound := make(chan frame)
	ts := fakeChannelServer(t, "", outbound)
	sock := dialTest(t, ts)

	h := newChanHandler()
	require.NoError(t, sock.Join("conversation:c1", h))
	require.NoError(t, sock.Leave("conversation:c1"))

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, h.joinOK)
	assert.Empty(t, h.joinErr)

	sock.mu.Lock()
	assert.Empty(t, sock.pending)
	assert.Empty(t, sock.handlers)
	sock.mu.Unlock()
}

func TestLeaveUnjoinedTopicIsNoop(t *testing.T) {
	outbound := make(chan frame)
	ts := fakeChannelServer(t, "ok", outbound)
	sock := dialTest(t, ts)

	assert.NoError(t, sock.Leave("conversation:never"))
}

func TestJoinAfterCloseFails(t *testing.T) {
	outbound := make(chan frame)
	ts := fakeChannelServer(t, "ok", outbound)
	sock := dialTest(t, ts)

	require.NoError(t, sock.Close())
	assert.Error(t, sock.Join("conversation:c1", newChanHandler()))
}
