package status

import "strconv"

type (
	Code   uint16
	Status string
)

// HTTP status codes the server produces or is expected to be asked to produce by
// application handlers. The list follows the IANA registry naming.
const (
	Continue           Code = 100
	SwitchingProtocols Code = 101

	OK        Code = 200
	Created   Code = 201
	Accepted  Code = 202
	NoContent Code = 204

	MovedPermanently  Code = 301
	Found             Code = 302
	NotModified       Code = 304
	TemporaryRedirect Code = 307
	PermanentRedirect Code = 308

	BadRequest                  Code = 400
	Unauthorized                Code = 401
	Forbidden                   Code = 403
	NotFound                    Code = 404
	MethodNotAllowed            Code = 405
	RequestTimeout              Code = 408
	LengthRequired              Code = 411
	RequestEntityTooLarge       Code = 413
	RequestURITooLong           Code = 414
	UnsupportedMediaType        Code = 415
	TooManyRequests             Code = 429
	RequestHeaderFieldsTooLarge Code = 431

	InternalServerError     Code = 500
	NotImplemented          Code = 501
	BadGateway              Code = 502
	ServiceUnavailable      Code = 503
	GatewayTimeout          Code = 504
	HTTPVersionNotSupported Code = 505
)

var texts = map[Code]Status{
	Continue:                    "Continue",
	SwitchingProtocols:          "Switching Protocols",
	OK:                          "OK",
	Created:                     "Created",
	Accepted:                    "Accepted",
	NoContent:                   "No Content",
	MovedPermanently:            "Moved Permanently",
	Found:                       "Found",
	NotModified:                 "Not Modified",
	TemporaryRedirect:           "Temporary Redirect",
	PermanentRedirect:           "Permanent Redirect",
	BadRequest:                  "Bad Request",
	Unauthorized:                "Unauthorized",
	Forbidden:                   "Forbidden",
	NotFound:                    "Not Found",
	MethodNotAllowed:            "Method Not Allowed",
	RequestTimeout:              "Request Timeout",
	LengthRequired:              "Length Required",
	RequestEntityTooLarge:       "Request Entity Too Large",
	RequestURITooLong:           "Request URI Too Long",
	UnsupportedMediaType:        "Unsupported Media Type",
	TooManyRequests:             "Too Many Requests",
	RequestHeaderFieldsTooLarge: "Request Header Fields Too Large",
	InternalServerError:         "Internal Server Error",
	NotImplemented:              "Not Implemented",
	BadGateway:                  "Bad Gateway",
	ServiceUnavailable:          "Service Unavailable",
	GatewayTimeout:              "Gateway Timeout",
	HTTPVersionNotSupported:     "HTTP Version Not Supported",
}

// Text returns a reason phrase for the code. Unknown codes get a generic one, as a status
// line must never be left without it.
func Text(code Code) Status {
	if text, ok := texts[code]; ok {
		return text
	}

	return "Unknown Status Code"
}

// StringCode returns the decimal representation of the code. Known codes are served from
// a pre-rendered table.
func StringCode(code Code) string {
	if str, ok := renderedCodes[code]; ok {
		return str
	}

	return strconv.FormatUint(uint64(code), 10)
}

var renderedCodes = func() map[Code]string {
	rendered := make(map[Code]string, len(texts))
	for code := range texts {
		rendered[code] = strconv.FormatUint(uint64(code), 10)
	}

	return rendered
}()
