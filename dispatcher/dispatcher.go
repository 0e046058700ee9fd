// Package dispatcher hands fully-assembled requests over to the application and writes its
// asynchronously computed responses back into the connections.
package dispatcher

import (
	"errors"
	"fmt"
	"time"

	"github.com/maelstorm-web/maelstorm/deferred"
	"github.com/maelstorm-web/maelstorm/http"
	"github.com/maelstorm-web/maelstorm/http/status"
	"github.com/maelstorm-web/maelstorm/shutdown"
	"github.com/maelstorm-web/maelstorm/stats"
	"go.uber.org/zap"
)

var (
	// ErrNoResult is reported when the processor returns no Deferred at all.
	ErrNoResult = errors.New("processor returned no result")
	// ErrNilResponse is reported when the processor resolves with a nil response.
	ErrNilResponse = errors.New("processor resolved with nil response")
	// ErrProcessorPanicked is wrapped by the error a panicking processor is turned into.
	ErrProcessorPanicked = errors.New("processor panicked")
)

const errorContentType = "text/html; charset=UTF-8"

var _ stats.Source = new(Dispatcher)

type Dispatcher struct {
	processor   Processor
	responder   *Responder
	stats       *stats.Collector
	coordinator *shutdown.Coordinator
	log         *zap.Logger
}

// New returns a dispatcher. The collector is mandatory, the coordinator may be nil if
// the application never requests the shutdown itself.
func New(
	processor Processor, collector *stats.Collector, coordinator *shutdown.Coordinator, log *zap.Logger,
) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}

	return &Dispatcher{
		processor:   processor,
		responder:   NewResponder(),
		stats:       collector,
		coordinator: coordinator,
		log:         log,
	}
}

// OnMessage is called by the transport for every message it framed. Anything except a
// request results in closing the connection. It never blocks waiting for the processor:
// the response is written by whoever completes the Deferred.
func (d *Dispatcher) OnMessage(conn Conn, message any) {
	request, ok := message.(*http.Request)
	if !ok || request == nil {
		d.log.Error("unexpected message",
			zap.Any("message", message),
			zap.String("conn", conn.ID()),
		)
		d.stats.ErrorOccurred()

		if err := conn.Close(); err != nil {
			d.log.Debug("failed to close connection", zap.String("conn", conn.ID()), zap.Error(err))
		}

		return
	}

	start := time.Now()
	d.stats.RequestStarted()

	result := d.process(conn, request)
	err := result.Then(
		func(response *http.Response) {
			d.succeeded(conn, request, response, start)
		},
		func(err error) {
			d.failed(conn, request, err, start)
		},
	)
	if err != nil {
		// somebody else has already subscribed, so our continuation will never fire
		d.failed(conn, request, err, start)
	}
}

// process calls the processor, turning a panic or a missing result into a failed Deferred.
func (d *Dispatcher) process(conn Conn, request *http.Request) (result *deferred.Deferred[*http.Response]) {
	defer func() {
		if r := recover(); r != nil {
			result = deferred.Failed[*http.Response](fmt.Errorf("%w: %v", ErrProcessorPanicked, r))
		}
	}()

	result = d.processor.Process(conn, request)
	if result == nil {
		result = deferred.Failed[*http.Response](ErrNoResult)
	}

	return result
}

func (d *Dispatcher) succeeded(conn Conn, request *http.Request, response *http.Response, start time.Time) {
	if response == nil {
		d.failed(conn, request, ErrNilResponse, start)
		return
	}

	if err := response.Failure(); err != nil {
		d.failed(conn, request, err, start)
		return
	}

	d.write(conn, response, request)
	d.log.Debug("request processed", d.requestFields(request, start)...)
	d.stats.RequestFinished()
}

func (d *Dispatcher) failed(conn Conn, request *http.Request, err error, start time.Time) {
	d.stats.ErrorOccurred()

	// the body is left empty, the error goes only to the log
	response := http.NewResponse().
		Code(status.InternalServerError).
		ContentType(errorContentType)

	d.write(conn, response, request)
	d.log.Debug("request failed", d.requestFields(request, start)...)
	d.stats.RequestFinished()
	d.log.Error("request processing failed",
		zap.String("uri", request.Path),
		zap.String("conn", conn.ID()),
		zap.Error(err),
	)
}

func (d *Dispatcher) write(conn Conn, response *http.Response, request *http.Request) {
	if err := d.responder.Write(conn, response, request); err != nil {
		d.log.Debug("failed to write response", zap.String("conn", conn.ID()), zap.Error(err))
	}
}

func (d *Dispatcher) requestFields(request *http.Request, start time.Time) []zap.Field {
	return []zap.Field{
		zap.String("uri", request.Path),
		zap.Stringer("method", request.Method),
		zap.Duration("elapsed", time.Since(start)),
	}
}

// RequestShutdown starts the graceful shutdown of the server in a separate goroutine and
// returns immediately, therefore is safe to be called from the processor.
func (d *Dispatcher) RequestShutdown() {
	if d.coordinator == nil {
		d.log.Warn("shutdown requested, but no coordinator is set")
		return
	}

	d.coordinator.Request()
}

// Statistics returns the current values of the dispatcher's counters.
func (d *Dispatcher) Statistics() stats.Snapshot {
	return d.stats.Snapshot()
}

func (d *Dispatcher) Snapshot() stats.Snapshot {
	return d.Statistics()
}

func (d *Dispatcher) Displayed() bool {
	return d.stats.Displayed()
}
