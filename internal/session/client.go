package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
	sendQueue  = 64
)

// Client is one websocket connection attached to a room. Messages reach it
// in order through a bounded queue. Draw frames skip the queue: only the
// newest undelivered frame is kept, so a slow connection drops stale frames
// instead of falling behind the canvas.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	frames chan []byte
	closed bool // owned by the hub goroutine

	DocumentID string
	ClientID   string
	Role       Role
}

func NewClient(hub *Hub, conn *websocket.Conn, documentID, clientID string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendQueue),
		frames:     make(chan []byte, 1),
		DocumentID: documentID,
		ClientID:   clientID,
	}
}

// Serve pumps the connection until the peer goes away or the hub closes
// the client, then leaves the room.
func (c *Client) Serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	go c.writeLoop(ctx)

	c.conn.SetReadLimit(maxMsgSize)
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				slog.Debug("session read", "client", c.ClientID, "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("undecodable input", "client", c.ClientID, "document", c.DocumentID, "error", err)
			continue
		}
		c.hub.Dispatch(c, &msg)
	}
}

func (c *Client) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		// Queued messages always go out before a pending frame.
		select {
		case data, ok := <-c.send:
			if !ok || !c.write(ctx, data) {
				return
			}
			continue
		default:
		}

		select {
		case data, ok := <-c.send:
			if !ok || !c.write(ctx, data) {
				return
			}
		case data := <-c.frames:
			if !c.write(ctx, data) {
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, data []byte) bool {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	if err := c.conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		slog.Debug("session write", "client", c.ClientID, "error", err)
		return false
	}
	return true
}

// Send queues msg behind earlier messages. A client whose queue is full
// misses msg. It must be called on the hub goroutine.
func (c *Client) Send(msg *Message) {
	if c.closed {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "type", msg.Type, "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		slog.Warn("session queue full, dropping message", "client", c.ClientID, "type", msg.Type)
	}
}

// SendFrame replaces any frame the client has not received yet. It must be
// called on the hub goroutine, which is the only producer of frames.
func (c *Client) SendFrame(msg *Message) {
	if c.closed {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal frame", "error", err)
		return
	}
	select {
	case <-c.frames:
	default:
	}
	c.frames <- data
}

func (c *Client) close() {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
