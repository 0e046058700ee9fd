package transport_test

import (
	"sync"
	"testing"
	"time"

	"github.com/maelstorm-web/maelstorm/config"
	"github.com/maelstorm-web/maelstorm/deferred"
	"github.com/maelstorm-web/maelstorm/dispatcher"
	"github.com/maelstorm-web/maelstorm/http"
	"github.com/maelstorm-web/maelstorm/internal/codec/http1"
	"github.com/maelstorm-web/maelstorm/stats"
	"github.com/maelstorm-web/maelstorm/transport"
	"github.com/maelstorm-web/maelstorm/transport/dummy"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// echoPath responds with the request path, resolving on a separate goroutine, with the
// first request being the slowest one.
func echoPath() dispatcher.ProcessorFunc {
	var mu sync.Mutex
	delay := 30 * time.Millisecond

	return func(_ dispatcher.Conn, request *http.Request) *deferred.Deferred[*http.Response] {
		mu.Lock()
		sleep := delay
		delay /= 3
		mu.Unlock()

		path := request.Path
		return deferred.Go(func() (*http.Response, error) {
			time.Sleep(sleep)
			return http.String(path), nil
		})
	}
}

func serve(client transport.Client, processor dispatcher.Processor) (*transport.Conn, *stats.Collector) {
	collector := stats.NewCollector()
	d := dispatcher.New(processor, collector, nil, nil)
	conn := transport.NewConn(client)
	transport.Serve(conn, http1.NewParser(config.Default().HTTP, conn.Remote()), d)

	return conn, collector
}

func TestServe(t *testing.T) {
	t.Run("pipelined responses keep order", func(t *testing.T) {
		client := dummy.NewMockClient([]byte(
			"GET /first HTTP/1.1\r\n\r\nGET /second HTTP/1.1\r\n\r\nGET /third HTTP/1.1\r\nConnection: close\r\n\r\n",
		))
		_, collector := serve(client, echoPath())

		require.Equal(t,
			"HTTP/1.1 200 OK\r\nContent-Length: 6\r\nConnection: keep-alive\r\n\r\n/first"+
				"HTTP/1.1 200 OK\r\nContent-Length: 7\r\nConnection: keep-alive\r\n\r\n/second"+
				"HTTP/1.1 200 OK\r\n\r\n/third",
			client.Written(),
		)
		require.True(t, client.Closed())
		require.Equal(t, int64(3), collector.Total())
		require.Zero(t, collector.Active())
	})

	t.Run("request split across reads", func(t *testing.T) {
		client := dummy.NewMockClient(
			[]byte("POST /echo HTTP/1.1\r\nContent-Le"),
			[]byte("ngth: 4\r\nConnection: close\r\n\r\nab"),
			[]byte("cd"),
		)
		_, collector := serve(client, dispatcher.ProcessorFunc(
			func(_ dispatcher.Conn, request *http.Request) *deferred.Deferred[*http.Response] {
				return deferred.Resolved(http.String(string(request.Body)))
			},
		))

		require.Equal(t, "HTTP/1.1 200 OK\r\n\r\nabcd", client.Written())
		require.Equal(t, int64(1), collector.Total())
	})

	t.Run("malformed request", func(t *testing.T) {
		client := dummy.NewMockClient([]byte("GET / HTTP/1.1\r\n\r\nBREW /pot HTTP/1.1\r\n\r\n"))
		_, collector := serve(client, echoPath())

		require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 1\r\nConnection: keep-alive\r\n\r\n/", client.Written())
		require.True(t, client.Closed())
		require.Equal(t, int64(1), collector.Total())
		require.Equal(t, int64(1), collector.Errors())
	})

	t.Run("request released by processor", func(t *testing.T) {
		client := dummy.NewMockClient([]byte("GET / HTTP/1.1\r\n\r\n")).Idle()
		processor := dispatcher.ProcessorFunc(
			func(_ dispatcher.Conn, request *http.Request) *deferred.Deferred[*http.Response] {
				_ = request.Release()
				return deferred.Resolved(http.String("too late"))
			},
		)

		done := make(chan struct{})
		go func() {
			serve(client, processor)
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			require.Fail(t, "connection loop hangs")
		}

		require.True(t, client.Closed())
		require.Empty(t, client.Written())
	})

	t.Run("interrupted while idle", func(t *testing.T) {
		client := dummy.NewMockClient([]byte("GET / HTTP/1.1\r\n\r\n")).Idle()
		conn := transport.NewConn(client)
		collector := stats.NewCollector()
		d := dispatcher.New(echoPath(), collector, nil, nil)

		done := make(chan struct{})
		go func() {
			transport.Serve(conn, http1.NewParser(config.Default().HTTP, nil), d)
			close(done)
		}()

		require.Eventually(t, func() bool {
			return collector.Total() == 1 && collector.Active() == 0
		}, time.Second, time.Millisecond)

		conn.Interrupt()
		<-done
		require.Contains(t, client.Written(), "\r\n\r\n/")
	})
}
