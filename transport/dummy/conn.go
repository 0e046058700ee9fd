package dummy

import (
	"io"
	"net"
	"time"
)

var _ net.Conn = new(Conn)

// Conn is a net.Conn, which reads the data it was initialised with and collects everything
// written into it.
type Conn struct {
	Data      []byte
	toRead    []byte
	nop       bool
	closed    bool
	deadlines []time.Time
}

func NewConn(toRead []byte) *Conn {
	return &Conn{toRead: toRead}
}

func (c *Conn) Read(b []byte) (n int, err error) {
	if c.closed || len(c.toRead) == 0 {
		return 0, io.EOF
	}

	n = copy(b, c.toRead)
	c.toRead = c.toRead[n:]

	return n, nil
}

func (c *Conn) Write(b []byte) (n int, err error) {
	if !c.nop {
		c.Data = append(c.Data, b...)
	}

	return len(b), nil
}

func (c *Conn) Close() error {
	c.closed = true
	return nil
}

func (c *Conn) LocalAddr() net.Addr {
	return nil
}

func (c *Conn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000}
}

func (c *Conn) SetDeadline(t time.Time) error {
	return c.SetReadDeadline(t)
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	c.deadlines = append(c.deadlines, t)
	return nil
}

func (c *Conn) SetWriteDeadline(time.Time) error {
	return nil
}

// Deadlines returns all the read deadlines set, in order.
func (c *Conn) Deadlines() []time.Time {
	return c.deadlines
}

func (c *Conn) Nop() *Conn {
	c.nop = true
	return c
}
