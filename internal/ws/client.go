package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"friendship-service/internal/models"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outbound queue per connection; a slow reader that fills it up is
	// disconnected rather than allowed to block event dispatch.
	sendQueueSize = 256
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Conn is the slice of *websocket.Conn the hub uses, extracted so tests
// can substitute an in-memory connection.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	Close() error
}

// inboundFrame is what a connected client may send: a chat message to a
// friend. The sender is taken from the connection, never from the frame.
type inboundFrame struct {
	Receiver      string `json:"receiver"`
	Content       string `json:"content"`
	AttachmentURL string `json:"attachmentUrl"`
}

type errorFrame struct {
	Error string `json:"error"`
}

// Client is one open WebSocket connection. The user's identity is captured
// at upgrade time from the request and recovered from here when frames
// arrive.
type Client struct {
	Email string
	Conn  Conn

	hub       *Hub
	send      chan []byte
	closeOnce sync.Once
}

func NewClient(hub *Hub, conn Conn, email string) *Client {
	return &Client{
		Email: email,
		Conn:  conn,
		hub:   hub,
		send:  make(chan []byte, sendQueueSize),
	}
}

// enqueue hands a payload to the write pump without ever blocking the
// caller. A full queue means the reader is too slow; drop the connection.
func (c *Client) enqueue(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// ReadPump consumes inbound frames and dispatches them to the domain
// service. It owns the connection's read side and unregisters the client
// on any read error.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read", "user", c.Email, "error", err)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.reportError("invalid frame")
			continue
		}

		msg := &models.Message{
			SenderEmail:   c.Email,
			ReceiverEmail: frame.Receiver,
			Content:       frame.Content,
			AttachmentURL: frame.AttachmentURL,
		}
		if err := c.hub.sender.SendMessage(context.Background(), msg); err != nil {
			slog.Warn("websocket message rejected", "user", c.Email, "error", err)
			c.reportError(err.Error())
		}
	}
}

func (c *Client) reportError(msg string) {
	if payload, err := json.Marshal(errorFrame{Error: msg}); err == nil {
		c.enqueue(payload)
	}
}

// WritePump drains the send queue to the socket and keeps the connection
// alive with pings. It exits when the queue is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
