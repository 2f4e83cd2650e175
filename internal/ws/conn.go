package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"

	"github.com/deepankarpant15/BanterBox/pkg/metrics"
)

const (
	defaultUsername = "anonymous"
	defaultRoom     = "general"
)

// Conn is one live client link: the websocket plus the connection's declared
// identity. Until the first "join room" the connection belongs to no
// broadcast group even though its current room defaults to "general".
type Conn struct {
	id   string
	sock *websocket.Conn
	out  chan []byte

	mu       sync.RWMutex
	username string
	room     string
	joined   bool // member of the room's broadcast group
}

// Accept upgrades HTTP to websocket (allow all origins)
func Accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
}

// NewConn wraps a websocket connection with defaults (already normalized).
func NewConn(sock *websocket.Conn) *Conn {
	return &Conn{
		id:       uuid.NewString(),
		sock:     sock,
		out:      make(chan []byte, 256),
		username: defaultUsername,
		room:     defaultRoom,
	}
}

func (c *Conn) ID() string { return c.id }

func (c *Conn) Username() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.username
}

func (c *Conn) Room() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

func (c *Conn) setUsername(name string) {
	c.mu.Lock()
	c.username = name
	c.mu.Unlock()
}

// join stores the normalized identity and adds the connection to the room's
// broadcast group.
func (c *Conn) join(username, room string) {
	c.mu.Lock()
	c.username = username
	c.room = room
	c.joined = true
	c.mu.Unlock()
}

// leave removes the connection from its broadcast group; the stored room is
// kept as the last-known room for disconnect announcements.
func (c *Conn) leave() {
	c.mu.Lock()
	c.joined = false
	c.mu.Unlock()
}

// inRoom reports whether the connection receives broadcasts for room.
func (c *Conn) inRoom(room string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.joined && c.room == room
}

// send enqueues an outbound frame without blocking. Frames are dropped when
// the client cannot keep up.
func (c *Conn) send(b []byte) {
	select {
	case c.out <- b:
	default:
		metrics.DroppedFrames.Inc()
	}
}

// Read blocks until it receives a text/binary message.
// Returns false if the connection is closed.
func (c *Conn) Read(ctx context.Context) ([]byte, bool) {
	for {
		typ, data, err := c.sock.Read(ctx)
		if err != nil {
			return nil, false
		}
		if typ == websocket.MessageText || typ == websocket.MessageBinary {
			return data, true
		}
	}
}

// WriteLoop sends outbound messages + periodic pings.
// Exits when ctx is cancelled.
func (c *Conn) WriteLoop(ctx context.Context) {
	t := time.NewTicker(20 * time.Second)
	defer t.Stop()

	for {
		select {
		case b := <-c.out:
			_ = c.sock.Write(ctx, websocket.MessageText, b)
		case <-t.C:
			_ = c.sock.Ping(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Close closes the websocket normally.
func (c *Conn) Close() error { return c.sock.Close(websocket.StatusNormalClosure, "bye") }
