// Package api implements the HTTP surface of the service: registration and
// login, the item inventory, and peer-to-peer transfer via single-use links.
// All inputs are query-string parameters and every response is JSON.
package api

import (
	"net/http"
	"time"

	"github.com/handoff-labs/handoff/internal/server"
)

// New assembles the full request handler: all endpoints plus the fallback,
// wrapped in panic recovery and request logging.
func New(srv server.Server) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/test", HealthHandler(srv))
	mux.Handle("/registration", RegistrationHandler(srv))
	mux.Handle("/login", LoginHandler(srv))
	mux.Handle("/items", ItemsHandler(srv))
	mux.Handle("/items/new", NewItemHandler(srv))
	mux.Handle("/items/", ItemResourceHandler(srv))
	mux.Handle("/send", SendHandler(srv))
	// Registered with and without the trailing slash so generated receive
	// links never bounce through a redirect.
	mux.Handle("/receive", ReceiveHandler(srv))
	mux.Handle("/receive/", ReceiveHandler(srv))
	mux.Handle("/", FallbackHandler(srv))

	return withRecovery(srv, withRequestLogging(srv, mux))
}

// withRequestLogging logs every request with its duration.
func withRequestLogging(srv server.Server, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		srv.Logger.Debug("handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

// withRecovery converts panics into the generic 500 response so a failing
// store call can't take down the connection without a JSON body.
func withRecovery(srv server.Server, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				srv.Logger.Error("panic serving request",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
				)
				respondInternal(srv, w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
