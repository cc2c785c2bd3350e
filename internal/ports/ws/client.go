package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

var (
	// ErrSlowConsumer is returned when a client's outbound queue is full. The message is dropped.
	ErrSlowConsumer = errors.New("client send queue full")
	ErrClientClosed = errors.New("client closed")
)

const writeTimeout = 5 * time.Second

// Client is one websocket connection. It satisfies domain.Conn.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	mu     sync.Mutex
	closed bool
	ready  bool
	held   [][]byte
}

func newClient(id string, conn *websocket.Conn, buffer int) *Client {
	return &Client{
		id:   id,
		conn: conn,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func (c *Client) ID() string { return c.id }

// Send queues data for the writer. Until the connect result has gone out,
// messages are held back so the client always sees that result first.
func (c *Client) Send(_ context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	if !c.ready {
		c.held = append(c.held, data)
		return nil
	}
	return c.enqueueLocked(data)
}

func (c *Client) enqueueLocked(data []byte) error {
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSlowConsumer
	}
}

// greet sends the connect result followed by anything queued during the handshake.
func (c *Client) greet(result []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	if err := c.enqueueLocked(result); err != nil {
		return err
	}
	for _, m := range c.held {
		if err := c.enqueueLocked(m); err != nil {
			return err
		}
	}
	c.held = nil
	c.ready = true
	return nil
}

// close stops accepting messages. The writer drains what is queued, then closes the socket.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) writeLoop(ctx context.Context, ping time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(ping)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				_ = c.conn.Close(websocket.StatusGoingAway, "write failed")
				return
			}
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			_ = c.conn.Ping(pctx)
			cancel()
		case <-ctx.Done():
			return
		}
	}
}
