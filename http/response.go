package http

import (
	"errors"

	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
	"github.com/maelstorm-web/maelstorm/http/status"
	"github.com/maelstorm-web/maelstorm/kv"
)

// why 7? There's no theory behind this number. It just fits most of the responses.
const preallocRespHeaders = 7

// Response is built by the application handler (or by the dispatcher for failed ones). Once
// handed over for writing, it must not be modified anymore.
type Response struct {
	code    status.Code
	status  status.Status
	headers *kv.Storage
	body    []byte
	failure error
}

// NewResponse returns a new instance of the Response object with status code set to 200 OK
// and pre-allocated space for response headers.
func NewResponse() *Response {
	return &Response{
		code:    status.OK,
		headers: kv.NewPrealloc(preallocRespHeaders),
	}
}

// Code sets a Response code.
func (r *Response) Code(code status.Code) *Response {
	r.code = code
	return r
}

// Status sets a custom status text. If not set, the standard one for the code is used.
func (r *Response) Status(status status.Status) *Response {
	r.status = status
	return r
}

// ContentType sets the Content-Type header value.
func (r *Response) ContentType(value string) *Response {
	return r.SetHeader("Content-Type", value)
}

// Header adds header values to a key. In case it already exists the value will
// be appended.
func (r *Response) Header(key string, values ...string) *Response {
	for _, value := range values {
		r.headers.Add(key, value)
	}

	return r
}

// SetHeader sets the header value, replacing all the previous values.
func (r *Response) SetHeader(key, value string) *Response {
	r.headers.Set(key, value)
	return r
}

// String sets the response's body to the passed string
func (r *Response) String(body string) *Response {
	return r.Bytes(uf.S2B(body))
}

// Bytes sets the response's body to passed slice WITHOUT COPYING. Changing
// the passed slice later will affect the response by itself
func (r *Response) Bytes(body []byte) *Response {
	r.body = body
	return r
}

// Write implements io.Writer interface. It always returns n=len(b) and err=nil
func (r *Response) Write(b []byte) (n int, err error) {
	r.body = append(r.body, b...)
	return len(b), nil
}

// TryJSON serializes the model into the body and returns an error, if any occurred.
func (r *Response) TryJSON(model any) (*Response, error) {
	r.body = r.body[:0]
	stream := json.ConfigDefault.BorrowStream(r)
	stream.WriteVal(model)
	err := stream.Flush()
	json.ConfigDefault.ReturnStream(stream)

	return r.ContentType("application/json"), err
}

// JSON does the same as TryJSON does, except returned error is being implicitly wrapped
// by Error
func (r *Response) JSON(model any) *Response {
	resp, err := r.TryJSON(model)
	if err != nil {
		return r.Error(err)
	}

	return resp
}

// Error sets the status code from the error. If the error is (or wraps) a status.HTTPError, its
// code and the error text are used. Any other error is kept as the response failure: such a
// response is never written as is, the dispatcher handles it as a failed request instead.
func (r *Response) Error(err error) *Response {
	if err == nil {
		return r
	}

	var httpErr status.HTTPError
	if errors.As(err, &httpErr) {
		return r.Code(httpErr.Code).String(err.Error())
	}

	r.failure = err

	return r.Code(status.InternalServerError)
}

// Failure returns the error passed to Error (or occurred in JSON), unless it was a
// status.HTTPError.
func (r *Response) Failure() error {
	return r.failure
}

// StatusCode returns the response code.
func (r *Response) StatusCode() status.Code {
	return r.code
}

// Reason returns the status text, falling back to the standard one.
func (r *Response) Reason() status.Status {
	if len(r.status) == 0 {
		return status.Text(r.code)
	}

	return r.status
}

// Headers exposes response headers.
func (r *Response) Headers() *kv.Storage {
	return r.headers
}

// Body returns the response body.
func (r *Response) Body() []byte {
	return r.body
}

// Code is a shortcut for NewResponse().Code(...)
func Code(code status.Code) *Response {
	return NewResponse().Code(code)
}

// String is a shortcut for NewResponse().String(...)
func String(str string) *Response {
	return NewResponse().String(str)
}

// Error is a shortcut for NewResponse().Error(...)
func Error(err error) *Response {
	return NewResponse().Error(err)
}
