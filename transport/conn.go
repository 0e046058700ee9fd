package transport

import (
	"net"
	"sync"

	"github.com/dchest/uniuri"
	"github.com/maelstorm-web/maelstorm/dispatcher"
	"go.uber.org/atomic"
)

var _ dispatcher.Conn = new(Conn)

// Conn is a connection context the dispatcher writes responses into. Writes are serialized
// and unbuffered.
type Conn struct {
	id        string
	client    Client
	mu        sync.Mutex
	closed    *atomic.Bool
	responded chan struct{}
	done      chan struct{}
}

func NewConn(client Client) *Conn {
	return &Conn{
		id:        uniuri.NewLen(12),
		client:    client,
		closed:    atomic.NewBool(false),
		responded: make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

func (c *Conn) ID() string {
	return c.id
}

func (c *Conn) Remote() net.Addr {
	return c.client.Remote()
}

func (c *Conn) Active() bool {
	return !c.closed.Load()
}

// Write writes the whole data into the connection. It also signals Await, so a single call
// must carry a whole response.
func (c *Conn) Write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return net.ErrClosed
	}

	for len(b) > 0 {
		n, err := c.client.Write(b)
		if err != nil {
			return err
		}

		b = b[n:]
	}

	select {
	case c.responded <- struct{}{}:
	default:
	}

	return nil
}

// Close closes the connection. Only the first call has an effect.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	close(c.done)

	return c.client.Close()
}

// Await blocks until a response is written or the connection is closed. It returns false
// in the latter case.
func (c *Conn) Await() bool {
	select {
	case <-c.responded:
		return true
	case <-c.done:
		return false
	}
}

// Interrupt breaks the pending read, if any. The connection remains writable, so a request
// being processed at the moment still gets its response.
func (c *Conn) Interrupt() {
	c.client.Interrupt()
}
