package transport

import (
	"errors"
	"net"
	"time"

	"go.uber.org/atomic"
)

// ErrInterrupted is returned by Read after the client was interrupted.
var ErrInterrupted = errors.New("read interrupted")

type Client interface {
	Read() ([]byte, error)
	Pushback([]byte)
	Write([]byte) (int, error)
	Remote() net.Addr
	// Interrupt makes the current and all the following reads fail with ErrInterrupted.
	Interrupt()
	Close() error
}

type client struct {
	conn        net.Conn
	buff        []byte
	pending     []byte
	timeout     time.Duration
	interrupted *atomic.Bool
}

func NewClient(conn net.Conn, timeout time.Duration, buff []byte) Client {
	return &client{
		buff:        buff,
		conn:        conn,
		timeout:     timeout,
		interrupted: atomic.NewBool(false),
	}
}

// Read reads data into the internal buffer and returns a piece of it back. Timeouts are also
// handled automatically.
func (c *client) Read() ([]byte, error) {
	if len(c.pending) > 0 {
		pending := c.pending
		c.pending = nil

		return pending, nil
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, err
	}

	// the deadline must be set before the check, otherwise an interruption happening
	// in between would be overridden
	if c.interrupted.Load() {
		return nil, ErrInterrupted
	}

	n, err := c.conn.Read(c.buff)
	if err != nil && c.interrupted.Load() {
		return nil, ErrInterrupted
	}

	return c.buff[:n], err
}

// Pushback preserves a chunk of data from previous read for the next read.
func (c *client) Pushback(b []byte) {
	c.pending = b
}

// Write writes data into the underlying connection.
func (c *client) Write(b []byte) (int, error) {
	return c.conn.Write(b)
}

// Remote returns the remote address of the connection.
func (c *client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *client) Interrupt() {
	c.interrupted.Store(true)
	_ = c.conn.SetReadDeadline(time.Unix(1, 0))
}

// Close closes the connection.
func (c *client) Close() error {
	return c.conn.Close()
}
