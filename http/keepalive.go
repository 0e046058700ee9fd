package http

import (
	"strings"

	"github.com/indigo-web/utils/strcomp"
	"github.com/maelstorm-web/maelstorm/http/proto"
)

// IsKeepAlive decides whether the connection may be reused after responding to the request.
// HTTP/1.1 connections are persistent unless the client asked to close. HTTP/1.0 ones are
// persistent only when the client explicitly asked for it. The Connection header may carry
// a comma-separated list of tokens, which are compared case-insensitively.
func IsKeepAlive(request *Request) bool {
	var keepAlive, closing bool

	for value := range request.Headers.Values("Connection") {
		for _, token := range strings.Split(value, ",") {
			token = strings.TrimSpace(token)

			switch {
			case strcomp.EqualFold(token, "close"):
				closing = true
			case strcomp.EqualFold(token, "keep-alive"):
				keepAlive = true
			}
		}
	}

	switch request.Protocol {
	case proto.HTTP11:
		return !closing
	case proto.HTTP10:
		return keepAlive && !closing
	default:
		return false
	}
}
