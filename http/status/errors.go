package status

// HTTPError is an error carrying the status code it should be answered with.
type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

var (
	ErrBadRequest            = NewError(BadRequest, "bad request")
	ErrTooLongRequestLine    = NewError(RequestURITooLong, "request line is too long")
	ErrBadChunk              = NewError(BadRequest, "malformed chunk-encoded data")
	ErrNotFound              = NewError(NotFound, "not found")
	ErrInternalServerError   = NewError(InternalServerError, "internal server error")
	ErrMethodNotImplemented  = NewError(NotImplemented, "request method is not supported")
	ErrBodyTooLarge          = NewError(RequestEntityTooLarge, "request body is too large")
	ErrTooManyHeaders        = NewError(RequestHeaderFieldsTooLarge, "too many headers")
	ErrHeaderFieldsTooLarge  = NewError(RequestHeaderFieldsTooLarge, "too large headers section")
	ErrUnsupportedProtocol   = NewError(HTTPVersionNotSupported, "HTTP version not supported")
	ErrUnsupportedEncoding   = NewError(NotImplemented, "transfer encoding is not supported")
	ErrServiceUnavailable    = NewError(ServiceUnavailable, "service unavailable")
	ErrConnectionInterrupted = NewError(BadRequest, "connection was interrupted mid-request")
)
