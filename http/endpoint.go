package http

import (
	"fmt"

	"github.com/maelstorm-web/maelstorm/http/status"
)

// ErrDefectiveRequest is a client-caused structural defect of the request-target.
var ErrDefectiveRequest = status.NewError(status.BadRequest, "defective request")

// Endpoint returns the first segment of the request-target path, without the leading slash:
//
//	/foo          -> foo
//	/foo/bar      -> foo
//	/foo?bar      -> foo
//	/foo?bar/quux -> foo
//	/foo/bar?quux -> foo
//
// The uri must start with a slash. Otherwise, as well as if it's empty, the returned error
// wraps ErrDefectiveRequest.
func Endpoint(uri string) (string, error) {
	if len(uri) == 0 {
		return "", fmt.Errorf("%w: empty query", ErrDefectiveRequest)
	}

	if uri[0] != '/' {
		return "", fmt.Errorf(
			"%w: query doesn't start with a slash: <code>%s</code>", ErrDefectiveRequest, Escape(uri),
		)
	}

	questionmark, slash := -1, -1

scan:
	for i := 1; i < len(uri); i++ {
		switch uri[i] {
		case '?':
			if questionmark == -1 {
				questionmark = i
			}
		case '/':
			if slash == -1 {
				slash = i
			}
		default:
			if i > 1 && (questionmark > 1 || slash > 1) {
				// both boundaries that matter are already behind
				break scan
			}
		}
	}

	pos := len(uri)

	switch {
	case questionmark > 0 && slash > 0:
		pos = min(questionmark, slash)
	case questionmark > 0:
		pos = questionmark
	case slash > 0:
		pos = slash
	}

	return uri[1:pos], nil
}
