package api

import (
	"net/http"

	"github.com/handoff-labs/handoff/internal/server"
)

// healthStatus is intentionally non-standard so callers can tell this
// service's liveness response apart from an intermediary's 200.
const healthStatus = 217

// HealthHandler answers liveness probes.
func HealthHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondFallback(srv, w)
			return
		}
		respondMessage(srv, w, healthStatus, "I am alive.")
	})
}

// FallbackHandler serves every path no other handler claims.
func FallbackHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondFallback(srv, w)
	})
}
