package handlers

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/maelstorm-web/maelstorm/deferred"
	"github.com/maelstorm-web/maelstorm/dispatcher"
	"github.com/maelstorm-web/maelstorm/http"
	"github.com/maelstorm-web/maelstorm/http/mime"
	"github.com/maelstorm-web/maelstorm/http/status"
	"github.com/maelstorm-web/maelstorm/stats"
)

var errMalformedJSON = status.NewError(status.BadRequest, "malformed JSON body")

// ShutdownRequester starts the graceful shutdown without waiting for it.
type ShutdownRequester interface {
	RequestShutdown()
}

// Stats responds with the report of all the displayed statistics sources.
func Stats(registry *stats.Registry) dispatcher.ProcessorFunc {
	return func(dispatcher.Conn, *http.Request) *deferred.Deferred[*http.Response] {
		response := http.NewResponse().ContentType(mime.JSON)
		if err := registry.WriteJSON(response); err != nil {
			return deferred.Failed[*http.Response](err)
		}

		return deferred.Resolved(response)
	}
}

// Echo responds with the request body, computed in a separate goroutine. JSON bodies are
// validated first.
func Echo() dispatcher.ProcessorFunc {
	return func(_ dispatcher.Conn, request *http.Request) *deferred.Deferred[*http.Response] {
		// the body is released before the response is written, so it must be copied
		body := string(request.Body)
		contentType, found := request.Headers.Get("Content-Type")
		if !found {
			contentType = mime.Plain
		}

		return deferred.Go(func() (*http.Response, error) {
			if mime.Complies(mime.JSON, contentType) && len(body) > 0 && !jsoniter.Valid([]byte(body)) {
				return http.Error(errMalformedJSON), nil
			}

			return http.String(body).ContentType(contentType), nil
		})
	}
}

// Shutdown requests the graceful shutdown and responds immediately. The connection is
// closed by the shutdown once the response is written.
func Shutdown(requester ShutdownRequester) dispatcher.ProcessorFunc {
	return func(dispatcher.Conn, *http.Request) *deferred.Deferred[*http.Response] {
		requester.RequestShutdown()
		return deferred.Resolved(http.String("shutting down\n").ContentType(mime.Plain))
	}
}

// Text always responds with the same text.
func Text(text string) dispatcher.ProcessorFunc {
	return func(dispatcher.Conn, *http.Request) *deferred.Deferred[*http.Response] {
		return deferred.Resolved(http.String(text).ContentType(mime.Plain))
	}
}
