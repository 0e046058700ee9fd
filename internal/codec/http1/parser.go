// Package http1 frames HTTP/1.x requests out of a byte stream and renders responses back.
package http1

import (
	"bytes"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/indigo-web/chunkedbody"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
	"github.com/maelstorm-web/maelstorm/config"
	"github.com/maelstorm-web/maelstorm/http"
	"github.com/maelstorm-web/maelstorm/http/method"
	"github.com/maelstorm-web/maelstorm/http/proto"
	"github.com/maelstorm-web/maelstorm/http/status"
	"github.com/maelstorm-web/maelstorm/kv"
)

type parserState uint8

const (
	eRequestLine parserState = iota + 1
	eHeaders
	eBody
	eChunkedBody
)

// Malformed is emitted instead of a request, when the stream can't be framed. It carries the
// reason and is never a fully-assembled request.
type Malformed struct {
	Err error
}

func (m Malformed) String() string {
	return "malformed request: " + m.Err.Error()
}

// Parser is a stream-based HTTP/1.x request parser. It aggregates the whole message, body
// included, before returning the request, so the consumer never deals with partial messages.
// Bodies are taken from the pool and returned into it once the request is released.
type Parser struct {
	cfg         config.HTTP
	remote      net.Addr
	state       parserState
	line        []byte
	headersSize int
	request     *http.Request
	body        []byte
	bodyLeft    int
	chunked     *chunkedbody.Parser
	trailer     bool
	hasLength   bool
}

func NewParser(cfg config.HTTP, remote net.Addr) *Parser {
	return &Parser{
		cfg:    cfg,
		remote: remote,
		state:  eRequestLine,
	}
}

// Parse feeds the data into the parser. A non-nil request is returned once it's completely
// received, together with the data that wasn't consumed yet (the beginning of the next
// request, if pipelined). A nil request without an error means more data is needed. After
// an error the parser must not be used anymore.
func (p *Parser) Parse(data []byte) (request *http.Request, extra []byte, err error) {
	for len(data) > 0 {
		switch p.state {
		case eRequestLine, eHeaders:
			lf := bytes.IndexByte(data, '\n')
			if lf == -1 {
				if err = p.appendLine(data); err != nil {
					return nil, nil, err
				}

				return nil, nil, nil
			}

			if err = p.appendLine(data[:lf]); err != nil {
				return nil, nil, err
			}

			data = data[lf+1:]
			line := bytes.TrimSuffix(p.line, []byte{'\r'})

			if p.state == eRequestLine {
				err = p.parseRequestLine(line)
			} else {
				err = p.parseHeader(line)
			}

			p.line = p.line[:0]
			if err != nil {
				return nil, nil, err
			}

			if p.state == eRequestLine && p.request != nil {
				// the request has no body, so completed right after the headers
				return p.complete(), data, nil
			}
		case eBody:
			n := min(p.bodyLeft, len(data))
			p.body = append(p.body, data[:n]...)
			p.bodyLeft -= n
			data = data[n:]

			if p.bodyLeft == 0 {
				return p.complete(), data, nil
			}
		case eChunkedBody:
			chunk, rest, err := p.chunked.Parse(data, p.trailer)
			switch err {
			case nil, io.EOF:
			default:
				return nil, nil, status.ErrBadChunk
			}

			if len(p.body)+len(chunk) > p.cfg.MaxBodySize {
				return nil, nil, status.ErrBodyTooLarge
			}

			p.body = append(p.body, chunk...)
			data = rest

			if err == io.EOF {
				return p.complete(), data, nil
			}
		default:
			panic("BUG: unreachable parser state")
		}
	}

	return nil, nil, nil
}

func (p *Parser) appendLine(data []byte) error {
	limit := p.cfg.MaxRequestLineSize
	if p.state == eHeaders {
		p.headersSize += len(data)
		if p.headersSize > p.cfg.MaxHeadersSize {
			return status.ErrHeaderFieldsTooLarge
		}

		limit = p.cfg.MaxHeadersSize
	}

	if len(p.line)+len(data) > limit {
		if p.state == eHeaders {
			return status.ErrHeaderFieldsTooLarge
		}

		return status.ErrTooLongRequestLine
	}

	p.line = append(p.line, data...)

	return nil
}

func (p *Parser) parseRequestLine(line []byte) error {
	if len(line) == 0 {
		// RFC 9112, 2.2: empty lines preceding the request line should be ignored
		return nil
	}

	sp := bytes.IndexByte(line, ' ')
	if sp <= 0 {
		return status.ErrBadRequest
	}

	m := method.Parse(uf.B2S(line[:sp]))
	if m == method.Unknown {
		return status.ErrMethodNotImplemented
	}

	line = line[sp+1:]
	sp = bytes.LastIndexByte(line, ' ')
	if sp <= 0 {
		return status.ErrBadRequest
	}

	protocol := proto.FromBytes(line[sp+1:])
	if protocol == proto.Unknown {
		return status.ErrUnsupportedProtocol
	}

	request := http.NewRequest(p.remote, kv.NewPrealloc(p.cfg.HeadersPrealloc), releaseBody)
	request.Method = m
	request.Path = string(line[:sp])
	request.Protocol = protocol
	p.request = request
	p.state = eHeaders
	p.headersSize = 0

	return nil
}

func (p *Parser) parseHeader(line []byte) error {
	if len(line) == 0 {
		return p.headersCompleted()
	}

	if p.request.Headers.Len() >= p.cfg.MaxHeaders {
		return status.ErrTooManyHeaders
	}

	colon := bytes.IndexByte(line, ':')
	if colon <= 0 {
		return status.ErrBadRequest
	}

	key := string(bytes.TrimSpace(line[:colon]))
	value := string(bytes.TrimSpace(line[colon+1:]))
	p.request.Headers.Add(key, value)

	switch {
	case strcomp.EqualFold(key, "Content-Length"):
		length, err := strconv.ParseUint(value, 10, 63)
		if err != nil {
			return status.ErrBadRequest
		}

		if length > uint64(p.cfg.MaxBodySize) {
			return status.ErrBodyTooLarge
		}

		if p.hasLength && p.request.ContentLength != int(length) {
			// conflicting lengths make the message boundary ambiguous
			return status.ErrBadRequest
		}

		p.hasLength = true
		p.request.ContentLength = int(length)
	case strcomp.EqualFold(key, "Transfer-Encoding"):
		codings := strings.Split(value, ",")
		if !strcomp.EqualFold(strings.TrimSpace(codings[len(codings)-1]), "chunked") {
			return status.ErrUnsupportedEncoding
		}

		p.request.Chunked = true
	case strcomp.EqualFold(key, "Trailer"):
		p.trailer = true
	}

	return nil
}

func (p *Parser) headersCompleted() error {
	request := p.request

	switch {
	case request.Chunked:
		// Transfer-Encoding overrides Content-Length, RFC 9112, 6.3
		request.ContentLength = 0
		p.body = acquireBody(0)
		p.chunked = chunkedbody.NewParser(chunkedbody.DefaultSettings())
		p.state = eChunkedBody
	case request.ContentLength > 0:
		p.body = acquireBody(request.ContentLength)
		p.bodyLeft = request.ContentLength
		p.state = eBody
	default:
		// signals the caller that the request is ready, the state is reset by complete()
		p.state = eRequestLine
	}

	return nil
}

func (p *Parser) complete() *http.Request {
	request := p.request
	request.Body = p.body
	request.ContentLength = len(p.body)

	p.request = nil
	p.body = nil
	p.bodyLeft = 0
	p.chunked = nil
	p.trailer = false
	p.hasLength = false
	p.state = eRequestLine

	return request
}

const maxPooledBody = 64 * 1024

var bodyPool = sync.Pool{
	New: func() any {
		return make([]byte, 0, 4*1024)
	},
}

func acquireBody(size int) []byte {
	if size > maxPooledBody {
		return make([]byte, 0, size)
	}

	body := bodyPool.Get().([]byte)[:0]
	if cap(body) < size {
		body = make([]byte, 0, size)
	}

	return body
}

func releaseBody(body []byte) {
	if body == nil || cap(body) > maxPooledBody {
		return
	}

	//nolint:staticcheck // slices are fine to be pooled by value here
	bodyPool.Put(body[:0])
}
