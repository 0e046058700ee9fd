package http

import (
	"errors"
	"fmt"
	"testing"

	"github.com/maelstorm-web/maelstorm/http/status"
	"github.com/stretchr/testify/require"
)

func TestResponse(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		response := NewResponse()
		require.Equal(t, status.OK, response.StatusCode())
		require.Equal(t, status.Status("OK"), response.Reason())
		require.Zero(t, response.Headers().Len())
		require.Empty(t, response.Body())
	})

	t.Run("builder", func(t *testing.T) {
		response := NewResponse().
			Code(status.Created).
			Status("Made It").
			Header("X-Foo", "1", "2").
			ContentType("text/plain").
			ContentType("text/html").
			String("hello")

		require.Equal(t, status.Created, response.StatusCode())
		require.Equal(t, status.Status("Made It"), response.Reason())
		require.Equal(t, "text/html", response.Headers().Value("content-type"))
		require.Equal(t, 3, response.Headers().Len())
		require.Equal(t, "hello", string(response.Body()))
	})

	t.Run("json", func(t *testing.T) {
		response := NewResponse().JSON(map[string]int{"a": 1})
		require.Equal(t, `{"a":1}`, string(response.Body()))
		require.Equal(t, "application/json", response.Headers().Value("Content-Type"))
	})

	t.Run("error", func(t *testing.T) {
		require.Equal(t, status.InternalServerError, Error(errors.New("boom")).StatusCode())
		require.Empty(t, Error(errors.New("boom")).Body())

		wrapped := fmt.Errorf("%w: details", status.ErrNotFound)
		response := Error(wrapped)
		require.Equal(t, status.NotFound, response.StatusCode())
		require.Equal(t, "not found: details", string(response.Body()))

		require.Equal(t, status.OK, Error(nil).StatusCode())
		require.NoError(t, Error(nil).Failure())
	})

	t.Run("failure", func(t *testing.T) {
		boom := errors.New("boom")
		require.ErrorIs(t, Error(boom).Failure(), boom)
		require.NoError(t, Error(status.ErrNotFound).Failure())
		require.NoError(t, String("ok").Failure())

		response := NewResponse().JSON(make(chan int))
		require.Error(t, response.Failure())
		require.Equal(t, status.InternalServerError, response.StatusCode())
	})
}
