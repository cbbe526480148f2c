package devserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// client is a single websocket connection: a dashboard session, or a
// customer widget when customerID is set.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan wsFrame

	customerID string

	mu     sync.Mutex
	closed bool
}

// enqueue queues a frame for delivery, dropping it when the client is
// gone or its buffer is full.
func (c *client) enqueue(f wsFrame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- f:
	default:
	}
}

func (c *client) markClosed() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// readPump pumps frames from the websocket connection to the hub. It
// handles ping/pong keepalive and detects disconnects.
func (c *client) readPump(log *slog.Logger) {
	defer func() {
		c.markClosed()
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var f wsFrame
		if err := json.Unmarshal(raw, &f); err != nil {
			log.Warn("failed to parse client frame", slog.String("error", err.Error()))
			continue
		}
		c.hub.handleFrame(c, f)
	}
}

// writePump pumps frames from the hub to the websocket connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case f, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(f); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// serveWs handles websocket upgrade requests. A customer_id query
// parameter marks the connection as a customer widget for presence.
func serveWs(hub *Hub, log *slog.Logger, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &client{
		hub:        hub,
		conn:       conn,
		send:       make(chan wsFrame, 256),
		customerID: r.URL.Query().Get("customer_id"),
	}

	hub.register(c)

	go c.writePump()
	go c.readPump(log)
}
