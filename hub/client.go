package hub

import (
	"encoding/json"
	"time"

	"food-delivery-engine/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

// Client wraps one live websocket connection. All socket writes go through
// the send channel and the write pump, so concurrent publishers never
// interleave bytes on the wire.
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uint
	role   models.UserRole

	// interest bookkeeping, guarded by the hub mutex
	orders   map[uint]struct{}
	tracking bool
}

func newClient(h *Hub, conn *websocket.Conn, userID uint, role models.UserRole) *Client {
	return &Client{
		id:     uuid.NewString(),
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
		role:   role,
		orders: make(map[uint]struct{}),
	}
}

// Serve registers the client and runs both pumps. It returns when the
// connection dies; by then the client is deregistered from every interest
// set.
func (c *Client) Serve() {
	c.hub.Register(c)
	go c.writePump()
	c.readPump()
}

type joinRequest struct {
	Join         *uint `json:"join"`
	JoinTracking *struct {
		UserID uint            `json:"userId"`
		Role   models.UserRole `json:"role"`
	} `json:"joinTracking"`
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var req joinRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			continue
		}
		if req.Join != nil {
			c.hub.JoinOrder(c, *req.Join)
		}
		if req.JoinTracking != nil {
			// Interests come from the verified connection identity, not
			// from whatever the message claims.
			c.hub.JoinTracking(c)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
