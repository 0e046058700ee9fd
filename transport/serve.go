package transport

import (
	"github.com/maelstorm-web/maelstorm/dispatcher"
	"github.com/maelstorm-web/maelstorm/internal/codec/http1"
)

// Handler consumes the messages framed out of connections.
type Handler interface {
	OnMessage(conn dispatcher.Conn, message any)
}

// Serve reads requests from the connection and passes them to the handler one by one: the
// next request is read only after the previous one was responded, so responses are never
// reordered. Bytes of pipelined requests are pushed back to the client. Framing errors are
// passed as http1.Malformed. Serve returns when the connection is closed, timed out or
// interrupted.
func Serve(conn *Conn, parser *http1.Parser, handler Handler) {
	for {
		data, err := conn.client.Read()
		if err != nil {
			return
		}

		request, extra, err := parser.Parse(data)
		if err != nil {
			handler.OnMessage(conn, http1.Malformed{Err: err})
			return
		}

		if request == nil {
			continue
		}

		handler.OnMessage(conn, request)
		if !conn.Await() {
			return
		}

		if len(extra) > 0 {
			conn.client.Pushback(extra)
		}
	}
}
