package transport

import (
	"errors"
	"net"
	"os"
	"sync"
	"time"

	"github.com/maelstorm-web/maelstorm/config"
	"go.uber.org/atomic"
)

type listener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

type TCP struct {
	l     listener
	wg    *sync.WaitGroup
	stop  *atomic.Bool
	conns *sync.Map
}

func NewTCP() *TCP {
	tcp := newTCP(nil)
	return &tcp
}

func newTCP(l listener) TCP {
	return TCP{
		l:     l,
		wg:    new(sync.WaitGroup),
		stop:  atomic.NewBool(false),
		conns: new(sync.Map),
	}
}

func bindTCP(addr string) (*net.TCPListener, error) {
	tcpaddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}

	return net.ListenTCP("tcp", tcpaddr)
}

func (t *TCP) Bind(addr string) (err error) {
	t.l, err = bindTCP(addr)
	return err
}

// Addr returns the bound address, or nil if not bound yet.
func (t *TCP) Addr() net.Addr {
	if t.l == nil {
		return nil
	}

	return t.l.Addr()
}

// Listen accepts connections until stopped. Every connection is served by the callback in
// its own goroutine and closed once the callback returns.
func (t *TCP) Listen(cfg config.NET, cb func(conn *Conn)) error {
	for !t.stop.Load() {
		err := t.l.SetDeadline(time.Now().Add(cfg.AcceptLoopInterruptPeriod))
		if err != nil {
			return err
		}

		netconn, err := t.l.Accept()
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}

			if t.stop.Load() && errors.Is(err, net.ErrClosed) {
				return nil
			}

			return err
		}

		conn := NewConn(NewClient(netconn, cfg.ReadTimeout, make([]byte, cfg.ReadBufferSize)))
		t.wg.Add(1)
		t.conns.Store(conn.ID(), conn)

		if t.stop.Load() {
			// Stop might have missed the connection while interrupting the others
			conn.Interrupt()
		}

		go func(conn *Conn) {
			defer t.wg.Done()
			defer t.conns.Delete(conn.ID())

			cb(conn)
			_ = conn.Close()
		}(conn)
	}

	return nil
}

// Stop stops accepting new connections and interrupts idle ones. Connections with
// requests in progress are closed once they're responded.
func (t *TCP) Stop() {
	t.stop.Store(true)
	if t.l != nil {
		// wake up the pending Accept
		_ = t.l.SetDeadline(time.Now())
	}

	t.conns.Range(func(_, value any) bool {
		value.(*Conn).Interrupt()
		return true
	})
}

func (t *TCP) Close() error {
	if t.l == nil {
		return nil
	}

	return t.l.Close()
}

// Wait blocks until all the connections are served.
func (t *TCP) Wait() {
	t.wg.Wait()
}
