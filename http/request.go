package http

import (
	"errors"
	"net"

	"github.com/maelstorm-web/maelstorm/http/method"
	"github.com/maelstorm-web/maelstorm/http/proto"
	"github.com/maelstorm-web/maelstorm/kv"
	"go.uber.org/atomic"
)

type (
	Headers = *kv.Storage
	Header  = kv.Pair
)

// ErrReleased is returned when a request is released more than once.
var ErrReleased = errors.New("request was already released")

// Request represents a fully-assembled HTTP request: the request line, all the headers and
// the whole body are available at once.
type Request struct {
	// Method is an enum representing the request method.
	Method method.Method
	// Path is the raw request-target, exactly as it was received. Query is not split off.
	Path string
	// Protocol is the enum of a protocol used for the request.
	Protocol proto.Protocol
	// Headers holds non-normalized header pairs, even though lookup is case-insensitive.
	Headers Headers
	// ContentLength is the length of the Body.
	ContentLength int
	// Chunked tells whether the body was received in chunked transfer encoding. The Body is
	// de-chunked anyway.
	Chunked bool
	// Body is the aggregated request body. It is owned by the request and becomes invalid
	// after Release.
	Body []byte
	// Remote holds the remote address of the peer.
	Remote net.Addr

	released *atomic.Bool
	onRelease func([]byte)
}

// NewRequest returns a request with empty headers. The onRelease callback (may be nil) receives
// the body storage back once the request is released.
func NewRequest(remote net.Addr, headers Headers, onRelease func([]byte)) *Request {
	if headers == nil {
		headers = kv.New()
	}

	return &Request{
		Method:    method.Unknown,
		Protocol:  proto.HTTP11,
		Headers:   headers,
		Remote:    remote,
		released:  atomic.NewBool(false),
		onRelease: onRelease,
	}
}

// Release frees the underlying body storage. A request must be released exactly once, the
// second call has no effect except returning ErrReleased.
func (r *Request) Release() error {
	if !r.released.CompareAndSwap(false, true) {
		return ErrReleased
	}

	body := r.Body
	r.Body = nil

	if r.onRelease != nil {
		r.onRelease(body)
	}

	return nil
}

// Released tells whether Release was already called.
func (r *Request) Released() bool {
	return r.released.Load()
}
