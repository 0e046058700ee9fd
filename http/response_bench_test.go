package http

import (
	"errors"
	"testing"

	"github.com/maelstorm-web/maelstorm/http/status"
)

func BenchmarkResponse_Error(b *testing.B) {
	knownErr := status.ErrBadRequest
	unknownErr := errors.New("some crap happened, unable to recover")

	b.Run("KnownError", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			NewResponse().Error(knownErr)
		}
	})

	b.Run("UnknownError", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			NewResponse().Error(unknownErr)
		}
	})
}

func BenchmarkIsKeepAlive(b *testing.B) {
	request := NewRequest(nil, nil, nil)
	request.Headers.Add("Host", "localhost").Add("Connection", "upgrade, keep-alive")

	for i := 0; i < b.N; i++ {
		_ = IsKeepAlive(request)
	}
}
