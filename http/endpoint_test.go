package http

import (
	"errors"
	"strings"
	"testing"

	"github.com/maelstorm-web/maelstorm/http/status"
	"github.com/stretchr/testify/require"
)

func TestEndpoint(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		tcs := []struct {
			uri, want string
		}{
			{"/foo", "foo"},
			{"/foo/bar", "foo"},
			{"/foo?bar", "foo"},
			{"/foo?bar/quux", "foo"},
			{"/foo/bar?quux", "foo"},
			{"/", ""},
			{"/?", ""},
			{"//foo", ""},
			{"/?foo/bar", ""},
			{"/foo//?x", "foo"},
			{"/foo??bar", "foo"},
			{"/foo/", "foo"},
			{"/f", "f"},
			{"/foo/bar/baz?q=1/2", "foo"},
		}

		for _, tc := range tcs {
			t.Run(tc.uri, func(t *testing.T) {
				endpoint, err := Endpoint(tc.uri)
				require.NoError(t, err)
				require.Equal(t, tc.want, endpoint)
			})
		}
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Endpoint("")
		require.ErrorIs(t, err, ErrDefectiveRequest)
	})

	t.Run("no leading slash", func(t *testing.T) {
		_, err := Endpoint("foo")
		require.ErrorIs(t, err, ErrDefectiveRequest)
		require.Contains(t, err.Error(), "<code>foo</code>")

		var httpErr status.HTTPError
		require.True(t, errors.As(err, &httpErr))
		require.Equal(t, status.BadRequest, httpErr.Code)
	})

	t.Run("never includes delimiters", func(t *testing.T) {
		const alphabet = "ab/?"

		// every combination of up to 6 characters from the alphabet behind the leading slash
		var generate func(prefix string, depth int)
		generate = func(prefix string, depth int) {
			endpoint, err := Endpoint(prefix)
			require.NoError(t, err)
			require.False(t, strings.ContainsAny(endpoint, "/?"), "uri=%q endpoint=%q", prefix, endpoint)
			require.True(t, strings.HasPrefix(prefix[1:], endpoint))

			if depth == 0 {
				return
			}

			for i := range alphabet {
				generate(prefix+alphabet[i:i+1], depth-1)
			}
		}

		generate("/", 6)
	})
}
