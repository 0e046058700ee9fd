package transport

import (
	"sync"

	"github.com/maelstorm-web/maelstorm/config"
	"go.uber.org/multierr"
)

type supervisorState uint8

const (
	idle supervisorState = iota
	running
	stopped
)

type Transport interface {
	Bind(addr string) error
	Listen(cfg config.NET, cb func(conn *Conn)) error
	// Stop makes Listen return as soon as possible. It must not block.
	Stop()
	Close() error
	// Wait blocks until all the accepted connections are served.
	Wait()
}

// Supervisor runs multiple transports at once and stops all of them, as soon as any of
// them fails or Stop is called.
type Supervisor struct {
	mu       *sync.Mutex
	state    supervisorState
	ts       []boundTransport
	stopOnce *sync.Once
	stopch   chan struct{}
	done     chan struct{}
}

func NewSupervisor() Supervisor {
	return Supervisor{
		mu:       new(sync.Mutex),
		stopOnce: new(sync.Once),
		stopch:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Add binds the transport. If binding fails, all the transports added before are closed.
func (s *Supervisor) Add(addr string, transport Transport, cb func(*Conn)) error {
	err := transport.Bind(addr)
	if err != nil {
		return multierr.Append(err, s.close())
	}

	s.ts = append(s.ts, boundTransport{
		cb: cb,
		t:  transport,
	})

	return nil
}

// Run blocks until all the transports are stopped. The returned error is the one that caused
// the stop, combined with errors of closing the listeners.
func (s *Supervisor) Run(cfg config.NET) error {
	if len(s.ts) == 0 {
		return nil
	}

	s.mu.Lock()
	if s.state == stopped {
		s.mu.Unlock()
		return s.close()
	}

	s.state = running
	s.mu.Unlock()

	errch := make(chan error)
	defer close(s.done)

	for _, t := range s.ts {
		go func(t boundTransport) {
			errch <- t.t.Listen(cfg, t.cb)
		}(t)
	}

	select {
	case err := <-errch:
		return multierr.Append(err, s.stop(errch, len(s.ts)-1))
	case <-s.stopch:
		return s.stop(errch, len(s.ts))
	}
}

// Stop stops all the transports and blocks until every connection is served. If the
// supervisor isn't running yet, the following Run returns immediately. Concurrent calls
// all return only after the transports are drained.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if s.state != running {
		s.state = stopped
		s.mu.Unlock()

		return
	}
	s.mu.Unlock()

	s.stopOnce.Do(func() {
		close(s.stopch)
	})
	<-s.done
}

func (s *Supervisor) stop(errch <-chan error, listening int) (err error) {
	for _, t := range s.ts {
		t.t.Stop()
	}

	for range listening {
		err = multierr.Append(err, <-errch)
	}

	for _, t := range s.ts {
		t.t.Wait()
	}

	return multierr.Append(err, s.close())
}

func (s *Supervisor) close() (err error) {
	for _, t := range s.ts {
		err = multierr.Append(err, t.t.Close())
	}

	return err
}

type boundTransport struct {
	cb func(conn *Conn)
	t  Transport
}
