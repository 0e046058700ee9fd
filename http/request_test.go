package http

import (
	"testing"

	"github.com/maelstorm-web/maelstorm/http/proto"
	"github.com/maelstorm-web/maelstorm/kv"
	"github.com/stretchr/testify/require"
)

func TestRequestRelease(t *testing.T) {
	t.Run("exactly once", func(t *testing.T) {
		var released [][]byte
		request := NewRequest(nil, nil, func(b []byte) {
			released = append(released, b)
		})
		request.Body = []byte("Hello, world!")

		require.False(t, request.Released())
		require.NoError(t, request.Release())
		require.True(t, request.Released())
		require.Nil(t, request.Body)
		require.ErrorIs(t, request.Release(), ErrReleased)
		require.Equal(t, [][]byte{[]byte("Hello, world!")}, released)
	})

	t.Run("no release hook", func(t *testing.T) {
		request := NewRequest(nil, nil, nil)
		require.NoError(t, request.Release())
		require.ErrorIs(t, request.Release(), ErrReleased)
	})
}

func TestIsKeepAlive(t *testing.T) {
	newRequest := func(protocol proto.Protocol, connection ...string) *Request {
		headers := kv.New()
		for _, value := range connection {
			headers.Add("Connection", value)
		}

		request := NewRequest(nil, headers, nil)
		request.Protocol = protocol

		return request
	}

	tcs := []struct {
		Name       string
		Protocol   proto.Protocol
		Connection []string
		Want       bool
	}{
		{"HTTP/1.1 default", proto.HTTP11, nil, true},
		{"HTTP/1.1 close", proto.HTTP11, []string{"close"}, false},
		{"HTTP/1.1 close mixed case", proto.HTTP11, []string{"Close"}, false},
		{"HTTP/1.1 keep-alive", proto.HTTP11, []string{"keep-alive"}, true},
		{"HTTP/1.1 upgrade, close", proto.HTTP11, []string{"upgrade, close"}, false},
		{"HTTP/1.0 default", proto.HTTP10, nil, false},
		{"HTTP/1.0 keep-alive", proto.HTTP10, []string{"Keep-Alive"}, true},
		{"HTTP/1.0 keep-alive, close", proto.HTTP10, []string{"keep-alive", "close"}, false},
		{"unknown protocol", proto.Unknown, []string{"keep-alive"}, false},
	}

	for _, tc := range tcs {
		t.Run(tc.Name, func(t *testing.T) {
			require.Equal(t, tc.Want, IsKeepAlive(newRequest(tc.Protocol, tc.Connection...)))
		})
	}
}
