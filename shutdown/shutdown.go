// Package shutdown triggers the graceful shutdown of a server from any goroutine, including
// the ones serving connections.
package shutdown

import (
	"sync"

	"go.uber.org/zap"
)

// Handle is the component owning the listeners. ShutdownGracefully may block until every
// connection is served, therefore must never be called from a connection goroutine directly.
type Handle interface {
	ShutdownGracefully()
}

// HandleFunc adapts an ordinary function to the Handle interface.
type HandleFunc func()

func (f HandleFunc) ShutdownGracefully() {
	f()
}

// Coordinator runs the shutdown procedure of the handle it was constructed with in a
// dedicated goroutine.
type Coordinator struct {
	handle Handle
	log    *zap.Logger
	wg     sync.WaitGroup
}

func NewCoordinator(handle Handle, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}

	return &Coordinator{
		handle: handle,
		log:    log,
	}
}

// Request starts the shutdown and returns immediately. The caller may be a goroutine serving
// a connection, which the shutdown procedure would wait for, so it never runs in place.
func (c *Coordinator) Request() {
	c.log.Info("shutdown requested")

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.handle.ShutdownGracefully()
	}()
}

// Wait blocks until all the requested shutdown procedures return.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}
