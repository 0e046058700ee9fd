package dispatcher

import (
	"strconv"
	"sync"

	"github.com/maelstorm-web/maelstorm/http"
	"github.com/maelstorm-web/maelstorm/internal/codec/http1"
	"go.uber.org/multierr"
)

const (
	defaultBuffSize = 1024
	maxPooledBuff   = 64 * 1024
)

// Responder writes responses into connections, respecting the keep-alive semantics of the
// requests they answer.
type Responder struct {
	buffers sync.Pool
}

func NewResponder() *Responder {
	return &Responder{
		buffers: sync.Pool{
			New: func() any {
				buff := make([]byte, 0, defaultBuffSize)
				return &buff
			},
		},
	}
}

// Write releases the request, and writes the response if the connection is still active.
// For keep-alive requests Content-Length and Connection headers are set, otherwise the
// connection is closed once the write is done. A request released already means the
// connection state is unknown, so it is closed without writing anything.
func (r *Responder) Write(conn Conn, response *http.Response, request *http.Request) error {
	if err := request.Release(); err != nil {
		return multierr.Append(err, conn.Close())
	}

	if !conn.Active() {
		return nil
	}

	keepAlive := http.IsKeepAlive(request)
	if keepAlive {
		response.
			SetHeader("Content-Length", strconv.Itoa(len(response.Body()))).
			SetHeader("Connection", "keep-alive")
	}

	buffPtr := r.buffers.Get().(*[]byte)
	buff := http1.Serialize((*buffPtr)[:0], request.Protocol, request.Method, response)
	err := conn.Write(buff)

	if cap(buff) <= maxPooledBuff {
		*buffPtr = buff[:0]
		r.buffers.Put(buffPtr)
	}

	if !keepAlive {
		err = multierr.Append(err, conn.Close())
	}

	return err
}
