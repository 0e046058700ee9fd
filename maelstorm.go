// Package maelstorm is an embeddable HTTP/1.x server. Requests are dispatched to an
// application processor, which computes responses asynchronously.
package maelstorm

import (
	"fmt"
	"net"
	"sync"

	"github.com/maelstorm-web/maelstorm/config"
	"github.com/maelstorm-web/maelstorm/dispatcher"
	"github.com/maelstorm-web/maelstorm/internal/codec/http1"
	"github.com/maelstorm-web/maelstorm/shutdown"
	"github.com/maelstorm-web/maelstorm/stats"
	"github.com/maelstorm-web/maelstorm/transport"
	"go.uber.org/zap"
)

var _ shutdown.Handle = new(App)

type hooks struct {
	OnStart, OnStop func()
}

// App owns the listeners of all the transports and their lifecycle.
type App struct {
	cfg         *config.Config
	log         *zap.Logger
	hooks       hooks
	collector   *stats.Collector
	registry    *stats.Registry
	coordinator *shutdown.Coordinator
	supervisor  transport.Supervisor

	mu    sync.Mutex
	addrs []net.Addr
}

// New returns a new App instance. Nil config means defaults, nil logger disables logging.
func New(cfg *config.Config, log *zap.Logger) *App {
	if cfg == nil {
		cfg = config.Default()
	}

	if log == nil {
		log = zap.NewNop()
	}

	a := &App{
		cfg:        cfg,
		log:        log,
		collector:  stats.NewCollector(),
		registry:   stats.NewRegistry(),
		supervisor: transport.NewSupervisor(),
	}
	a.coordinator = shutdown.NewCoordinator(a, log)

	return a
}

// NotifyOnStart calls the callback at the moment, when all the listeners are bound. However,
// it isn't strongly guaranteed that they'll be able to accept new connections immediately.
func (a *App) NotifyOnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback at the moment, when all the listeners are down. It's
// guaranteed that by then no new connections are accepted and all the clients are
// already disconnected.
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Stats returns the registry the dispatcher reports into. Additional sources may be
// registered as well.
func (a *App) Stats() *stats.Registry {
	return a.registry
}

// Collector returns the request counters.
func (a *App) Collector() *stats.Collector {
	return a.collector
}

// Addrs returns the addresses actually bound. Empty until Serve binds the listeners.
func (a *App) Addrs() []net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]net.Addr(nil), a.addrs...)
}

// Serve binds the listeners and serves them until the shutdown. The plain-text listener is
// always started, the TLS one only if its address is configured.
func (a *App) Serve(processor dispatcher.Processor) error {
	d := dispatcher.New(processor, a.collector, a.coordinator, a.log)
	a.registry.Register("http", d)

	cb := func(conn *transport.Conn) {
		transport.Serve(conn, http1.NewParser(a.cfg.HTTP, conn.Remote()), d)
	}

	var tls *transport.TLS
	if len(a.cfg.TLS.Addr) > 0 {
		tlsConfig, err := transport.TLSConfig(a.cfg.TLS, a.log)
		if err != nil {
			return err
		}

		tls = transport.NewTLS(tlsConfig)
	}

	tcp := transport.NewTCP()
	if err := a.supervisor.Add(a.cfg.Addr, tcp, cb); err != nil {
		return fmt.Errorf("bind %s: %w", a.cfg.Addr, err)
	}
	a.bound(tcp.Addr(), "plain")

	if tls != nil {
		if err := a.supervisor.Add(a.cfg.TLS.Addr, tls, cb); err != nil {
			return fmt.Errorf("bind %s: %w", a.cfg.TLS.Addr, err)
		}
		a.bound(tls.Addr(), "tls")
	}

	callIfNotNil(a.hooks.OnStart)
	err := a.supervisor.Run(a.cfg.NET)
	a.log.Info("stopped", zap.Error(err))
	callIfNotNil(a.hooks.OnStop)

	return err
}

func (a *App) bound(addr net.Addr, kind string) {
	a.mu.Lock()
	a.addrs = append(a.addrs, addr)
	a.mu.Unlock()

	a.log.Info("listening", zap.Stringer("addr", addr), zap.String("transport", kind))
}

// ShutdownGracefully stops accepting new connections and blocks until all the pending
// requests are responded and all the connections are closed. It must never be called from
// a processor: use RequestShutdown there.
func (a *App) ShutdownGracefully() {
	a.log.Info("shutting down gracefully")
	a.supervisor.Stop()
}

// RequestShutdown starts the graceful shutdown in a separate goroutine and returns
// immediately.
func (a *App) RequestShutdown() {
	a.coordinator.Request()
}

// Wait blocks until all the requested shutdowns are done.
func (a *App) Wait() {
	a.coordinator.Wait()
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
