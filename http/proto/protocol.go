package proto

import "github.com/indigo-web/utils/uf"

type Protocol uint8

const (
	Unknown Protocol = 0
	HTTP10  Protocol = 1 << iota
	HTTP11

	HTTP1 = HTTP10 | HTTP11
)

func (p Protocol) String() string {
	switch p {
	case HTTP10:
		return "HTTP/1.0"
	case HTTP11:
		return "HTTP/1.1"
	default:
		return ""
	}
}

// FromBytes parses the protocol token of a request line. Anything except HTTP/1.0 and
// HTTP/1.1 is Unknown.
func FromBytes(raw []byte) Protocol {
	const (
		protoTokenLength   = len("HTTP/x.x")
		majorVersionOffset = len("HTTP/x") - 1
		minorVersionOffset = len("HTTP/x.x") - 1
		httpScheme         = "HTTP/"
	)

	if len(raw) != protoTokenLength || uf.B2S(raw[:majorVersionOffset]) != httpScheme {
		return Unknown
	}

	if raw[majorVersionOffset] != '1' || raw[minorVersionOffset-1] != '.' {
		return Unknown
	}

	switch raw[minorVersionOffset] {
	case '0':
		return HTTP10
	case '1':
		return HTTP11
	default:
		return Unknown
	}
}
