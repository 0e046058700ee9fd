// Package handlers contains application processors: a router dispatching requests by their
// endpoint and a few built-in endpoints.
package handlers

import (
	"github.com/maelstorm-web/maelstorm/deferred"
	"github.com/maelstorm-web/maelstorm/dispatcher"
	"github.com/maelstorm-web/maelstorm/http"
	"github.com/maelstorm-web/maelstorm/http/status"
)

var _ dispatcher.Processor = new(Mux)

// Mux routes requests by the first segment of their path, as returned by http.Endpoint.
// Defective request targets are answered with 400, unknown endpoints with 404.
type Mux struct {
	routes   map[string]dispatcher.Processor
	fallback dispatcher.Processor
}

func NewMux() *Mux {
	return &Mux{
		routes: make(map[string]dispatcher.Processor),
	}
}

// Route registers the processor for the endpoint. Empty endpoint matches the root path.
func (m *Mux) Route(endpoint string, processor dispatcher.Processor) *Mux {
	m.routes[endpoint] = processor
	return m
}

func (m *Mux) RouteFunc(endpoint string, fn dispatcher.ProcessorFunc) *Mux {
	return m.Route(endpoint, fn)
}

// Fallback sets the processor for unknown endpoints instead of responding 404.
func (m *Mux) Fallback(processor dispatcher.Processor) *Mux {
	m.fallback = processor
	return m
}

func (m *Mux) Process(conn dispatcher.Conn, request *http.Request) *deferred.Deferred[*http.Response] {
	endpoint, err := http.Endpoint(request.Path)
	if err != nil {
		return deferred.Resolved(http.Error(err))
	}

	processor, found := m.routes[endpoint]
	switch {
	case found:
	case m.fallback != nil:
		processor = m.fallback
	default:
		return deferred.Resolved(http.Error(status.ErrNotFound))
	}

	return processor.Process(conn, request)
}
