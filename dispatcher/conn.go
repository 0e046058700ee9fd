package dispatcher

import (
	"net"

	"github.com/maelstorm-web/maelstorm/deferred"
	"github.com/maelstorm-web/maelstorm/http"
)

// Conn is a live connection, owned by the transport. The dispatcher only checks whether
// it's still active, writes responses into it and closes it.
type Conn interface {
	// ID identifies the connection in logs.
	ID() string
	Remote() net.Addr
	// Active reports whether the connection can still be written to.
	Active() bool
	// Write sends the data to the peer and flushes it immediately. It returns when the data
	// was handed off to the network.
	Write(b []byte) error
	Close() error
}

// Processor is implemented by the application. Process must eventually complete the returned
// Deferred exactly once, either with a response or with an error. It must never write into
// the connection directly: all the writes are done by the dispatcher.
type Processor interface {
	Process(conn Conn, request *http.Request) *deferred.Deferred[*http.Response]
}

// ProcessorFunc adapts an ordinary function to the Processor interface.
type ProcessorFunc func(conn Conn, request *http.Request) *deferred.Deferred[*http.Response]

func (f ProcessorFunc) Process(conn Conn, request *http.Request) *deferred.Deferred[*http.Response] {
	return f(conn, request)
}
