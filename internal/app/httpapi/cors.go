package httpapi

import (
	"net/http"
	"slices"
	"strings"
)

// Option customises the handler returned by NewHandler.
type Option func(*options)

type options struct {
	allowedOrigins []string
}

// WithAllowedOrigins enables CORS for the given origins. "*" allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(o *options) {
		for _, origin := range origins {
			if origin = strings.TrimSpace(origin); origin != "" {
				o.allowedOrigins = append(o.allowedOrigins, origin)
			}
		}
	}
}

// withCORS answers preflight requests and sets CORS headers for allowed
// origins. With no origins configured it is a pass-through.
func withCORS(next http.Handler, allowed []string) http.Handler {
	if len(allowed) == 0 {
		return next
	}
	allowAll := slices.Contains(allowed, "*")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowAll || slices.Contains(allowed, origin)) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+TraceHeader)
			w.Header().Set("Access-Control-Expose-Headers", TraceHeader)
			w.Header().Set("Access-Control-Max-Age", "3600")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
