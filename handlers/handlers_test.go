package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/maelstorm-web/maelstorm/deferred"
	"github.com/maelstorm-web/maelstorm/http"
	"github.com/maelstorm-web/maelstorm/http/method"
	"github.com/maelstorm-web/maelstorm/http/status"
	"github.com/maelstorm-web/maelstorm/stats"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func newRequest(path string, body string, headers ...string) *http.Request {
	request := http.NewRequest(nil, nil, nil)
	request.Method = method.POST
	request.Path = path
	request.Body = []byte(body)
	for i := 0; i+1 < len(headers); i += 2 {
		request.Headers.Add(headers[i], headers[i+1])
	}

	return request
}

func await(t *testing.T, result *deferred.Deferred[*http.Response]) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	response, err := result.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded)

	return response, err
}

func TestMux(t *testing.T) {
	mux := NewMux().
		Route("", Text("index")).
		Route("foo", Text("foo")).
		RouteFunc("bar", Text("bar"))

	tcs := []struct {
		Path string
		Code status.Code
		Body string
	}{
		{"/", status.OK, "index"},
		{"/?query", status.OK, "index"},
		{"/foo", status.OK, "foo"},
		{"/foo/bar", status.OK, "foo"},
		{"/foo?bar/quux", status.OK, "foo"},
		{"/bar/foo?quux", status.OK, "bar"},
		{"/baz", status.NotFound, "not found"},
		{"foo", status.BadRequest, "defective request: query doesn't start with a slash: <code>foo</code>"},
		{"", status.BadRequest, "defective request: empty query"},
	}

	for _, tc := range tcs {
		t.Run(tc.Path, func(t *testing.T) {
			response, err := await(t, mux.Process(nil, newRequest(tc.Path, "")))
			require.NoError(t, err)
			require.Equal(t, tc.Code, response.StatusCode())
			require.Equal(t, tc.Body, string(response.Body()))
		})
	}

	t.Run("fallback", func(t *testing.T) {
		mux := NewMux().Fallback(Text("fallback"))
		response, err := await(t, mux.Process(nil, newRequest("/anything", "")))
		require.NoError(t, err)
		require.Equal(t, "fallback", string(response.Body()))
	})
}

func TestEcho(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		request := newRequest("/echo", "Hello, world!")
		result := Echo().Process(nil, request)
		// the response must survive the release of the request
		require.NoError(t, request.Release())

		response, err := await(t, result)
		require.NoError(t, err)
		require.Equal(t, "Hello, world!", string(response.Body()))
		require.Equal(t, "text/plain", response.Headers().Value("Content-Type"))
	})

	t.Run("valid json", func(t *testing.T) {
		request := newRequest("/echo", `{"hello":"world"}`, "Content-Type", "application/json; charset=utf8")
		response, err := await(t, Echo().Process(nil, request))
		require.NoError(t, err)
		require.Equal(t, status.OK, response.StatusCode())
		require.Equal(t, `{"hello":"world"}`, string(response.Body()))
	})

	t.Run("malformed json", func(t *testing.T) {
		request := newRequest("/echo", `{"hello":`, "Content-Type", "application/json")
		response, err := await(t, Echo().Process(nil, request))
		require.NoError(t, err)
		require.Equal(t, status.BadRequest, response.StatusCode())
	})
}

type sourceMock struct {
	displayed bool
}

func (s sourceMock) Snapshot() stats.Snapshot {
	return stats.Snapshot{"value": 1}
}

func (s sourceMock) Displayed() bool {
	return s.displayed
}

func TestStats(t *testing.T) {
	collector := stats.NewCollector()
	collector.RequestStarted()
	registry := stats.NewRegistry().
		Register("http", collector).
		Register("hidden", sourceMock{displayed: false})

	response, err := await(t, Stats(registry).Process(nil, newRequest("/stats", "")))
	require.NoError(t, err)
	require.Equal(t, "application/json", response.Headers().Value("Content-Type"))
	require.JSONEq(t,
		`{"http":{"activeHttpRequests":1,"totalExceptions":0,"totalHttpRequests":1}}`,
		string(response.Body()),
	)
}

type requesterMock struct {
	requested *atomic.Int32
}

func (r requesterMock) RequestShutdown() {
	r.requested.Inc()
}

func TestShutdown(t *testing.T) {
	requester := requesterMock{requested: atomic.NewInt32(0)}
	response, err := await(t, Shutdown(requester).Process(nil, newRequest("/shutdown", "")))
	require.NoError(t, err)
	require.Equal(t, status.OK, response.StatusCode())
	require.Equal(t, int32(1), requester.requested.Load())
}
