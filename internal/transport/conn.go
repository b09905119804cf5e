package transport

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Default transport limits.
const (
	DefaultHandshakeTimeout = 5 * time.Second
	DefaultWriteTimeout     = 10 * time.Second
	DefaultMaxFrameBytes    = 64 << 20
)

// conn serializes writes to one websocket connection. gorilla/websocket
// allows one concurrent writer and one concurrent reader.
type conn struct {
	id           PeerID
	ws           *websocket.Conn
	writeTimeout time.Duration
	limiter      *rate.Limiter // nil = unlimited

	mu     sync.Mutex
	closed bool
}

func newConn(id PeerID, ws *websocket.Conn, writeTimeout time.Duration, maxFrameBytes int64) *conn {
	if maxFrameBytes > 0 {
		ws.SetReadLimit(maxFrameBytes)
	}
	return &conn{id: id, ws: ws, writeTimeout: writeTimeout}
}

func (c *conn) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	if c.writeTimeout > 0 {
		if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	return c.ws.WriteMessage(messageType, data)
}

func (c *conn) writeText(token string) error {
	return c.write(websocket.TextMessage, []byte(token))
}

func (c *conn) writeBinary(frame []byte) error {
	return c.write(websocket.BinaryMessage, frame)
}

// close sends a close message with code when possible and closes the socket.
// It is idempotent.
func (c *conn) close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = c.ws.Close()
}

// allow applies the inbound rate limit.
func (c *conn) allow() bool {
	return c.limiter == nil || c.limiter.Allow()
}

func isNormalClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
