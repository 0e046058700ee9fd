package dummy

import (
	"io"
	"net"
	"os"
	"sync"

	"github.com/maelstorm-web/maelstorm/transport"
)

var _ transport.Client = new(Client)

// Client returns the data it was initialised with piece by piece, once or in a loop. It also
// tracks all the written data, making it thereby a universal mock suitable for most of the
// tests. Reads block after the data is exhausted until the client is closed or interrupted,
// the way an idle connection behaves.
type Client struct {
	mu          sync.Mutex
	closed      bool
	loop        bool
	journaling  bool
	pointer     int
	tmp         []byte
	written     []byte
	data        [][]byte
	remote      net.Addr
	idle        bool
	wake        chan struct{}
	interrupted bool
}

func NewMockClient(data ...[]byte) *Client {
	return &Client{
		data:       data,
		journaling: true,
		wake:       make(chan struct{}),
	}
}

func (c *Client) Read() (data []byte, err error) {
	c.mu.Lock()

	switch {
	case c.closed:
		c.mu.Unlock()
		return nil, io.EOF
	case len(c.tmp) > 0:
		data, c.tmp = c.tmp, nil
		c.mu.Unlock()

		return data, nil
	case c.interrupted:
		c.mu.Unlock()
		return nil, transport.ErrInterrupted
	}

	if c.pointer >= len(c.data) {
		if !c.loop || len(c.data) == 0 {
			if !c.idle {
				c.mu.Unlock()
				return nil, io.EOF
			}

			wake := c.wake
			c.mu.Unlock()
			<-wake

			return c.Read()
		}

		c.pointer = 0
	}

	piece := c.data[c.pointer]
	c.pointer++
	c.mu.Unlock()

	return piece, nil
}

func (c *Client) Pushback(takeback []byte) {
	c.mu.Lock()
	c.tmp = takeback
	c.mu.Unlock()
}

func (c *Client) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, os.ErrClosed
	}

	if c.journaling {
		c.written = append(c.written, p...)
	}

	return len(p), nil
}

func (c *Client) Remote() net.Addr {
	return c.remote
}

func (c *Client) Interrupt() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.interrupted {
		c.interrupted = true
		c.wakeUp()
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		c.wakeUp()
	}

	return nil
}

func (c *Client) wakeUp() {
	close(c.wake)
	c.wake = make(chan struct{})
}

// LoopReads makes the client start over once all the data was read.
func (c *Client) LoopReads() *Client {
	c.loop = true
	return c
}

// Idle makes reads block instead of returning io.EOF once all the data was read.
func (c *Client) Idle() *Client {
	c.idle = true
	return c
}

func (c *Client) WithRemote(addr net.Addr) *Client {
	c.remote = addr
	return c
}

func (c *Client) Journaling(flag bool) *Client {
	c.journaling = flag
	return c
}

func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

func (c *Client) Written() string {
	if !c.journaling {
		panic("mock client: cannot access written data: journaling is disabled!")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return string(c.written)
}
