package http1

import (
	"github.com/maelstorm-web/maelstorm/http"
	"github.com/maelstorm-web/maelstorm/http/method"
	"github.com/maelstorm-web/maelstorm/http/proto"
	"github.com/maelstorm-web/maelstorm/http/status"
)

var crlf = []byte("\r\n")

// Serialize appends the response into the buff and returns it. The headers are rendered
// exactly as they are stored in the response, framing headers included: the serializer adds
// nothing on its own. The body is omitted for responses to HEAD requests.
func Serialize(buff []byte, protocol proto.Protocol, m method.Method, response *http.Response) []byte {
	if protocol == proto.Unknown {
		protocol = proto.HTTP11
	}

	buff = append(buff, protocol.String()...)
	buff = append(buff, ' ')
	buff = append(buff, status.StringCode(response.StatusCode())...)
	buff = append(buff, ' ')
	buff = append(buff, response.Reason()...)
	buff = append(buff, crlf...)

	for key, value := range response.Headers().Pairs() {
		buff = append(buff, key...)
		buff = append(buff, ':', ' ')
		buff = append(buff, value...)
		buff = append(buff, crlf...)
	}

	buff = append(buff, crlf...)

	if m != method.HEAD {
		buff = append(buff, response.Body()...)
	}

	return buff
}
