package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
	maxFrameBytes = 1 << 20
	sendQueueSize = 32
)

// Principal is the identity bound to a connection when the handshake
// credential verifies. A nil principal means the connection is anonymous;
// anonymous connections stay open but cannot join rooms or send.
type Principal struct {
	UserID uint
	Email  string
	Role   string
}

// Client is one live socket. Outbound frames go through a buffered channel
// drained by a single writer goroutine, so broadcasters never block on a
// slow peer.
type Client struct {
	ID string

	conn      *websocket.Conn
	principal *Principal

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// NewClient wraps an upgraded connection. conn may be nil in tests that only
// exercise room bookkeeping.
func NewClient(conn *websocket.Conn, principal *Principal) *Client {
	c := &Client{
		ID:        uuid.NewString(),
		conn:      conn,
		principal: principal,
		send:      make(chan []byte, sendQueueSize),
	}
	if conn != nil {
		conn.SetReadLimit(maxFrameBytes)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
	}
	return c
}

// Principal returns the connect-time identity, or nil when anonymous.
func (c *Client) Principal() *Principal {
	return c.principal
}

// ReadFrame blocks for the next text or binary frame, refreshing the read
// deadline each time.
func (c *Client) ReadFrame() ([]byte, error) {
	for {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return nil, err
		}
		mt, payload, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		return payload, nil
	}
}

// Enqueue hands a frame to the writer goroutine. It never blocks; a full
// queue or a closed client drops the frame and reports false.
func (c *Client) Enqueue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Close shuts the outbound queue, terminating the writer goroutine. Safe to
// call more than once and safe against concurrent Enqueue.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Frames exposes the outbound queue for tests that run without a socket.
func (c *Client) Frames() <-chan []byte {
	return c.send
}

// WritePump drains the send queue onto the socket and keeps the connection
// alive with pings. It exits when the queue is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
