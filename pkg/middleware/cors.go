// Package middleware provides HTTP middleware for the backend API.
package middleware

import (
	"net/http"
	"strings"
)

// CORSMiddleware handles Cross-Origin Resource Sharing. The allowed
// origins come from the CORS_ORIGIN environment variable, comma
// separated; "*" allows everything.
type CORSMiddleware struct {
	allowedOrigins []string
	allowAll       bool
}

// NewCORSMiddleware creates a new CORS middleware from the allowed
// origins list.
func NewCORSMiddleware(allowedOrigins []string) *CORSMiddleware {
	allowAll := false
	cleaned := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
		}
		cleaned = append(cleaned, origin)
	}

	return &CORSMiddleware{
		allowedOrigins: cleaned,
		allowAll:       allowAll,
	}
}

// NewCORSMiddlewareFromString splits a comma-separated origin list and
// builds the middleware. This is the shape CORS_ORIGIN arrives in.
func NewCORSMiddlewareFromString(origins string) *CORSMiddleware {
	return NewCORSMiddleware(strings.Split(origins, ","))
}

// Handler returns the CORS middleware handler
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Same-origin and non-browser requests carry no Origin header;
		// they get no CORS headers at all.
		if origin != "" && (m.allowAll || m.isOriginAllowed(origin)) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// isOriginAllowed checks if an origin is in the allowed list
func (m *CORSMiddleware) isOriginAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	for _, allowed := range m.allowedOrigins {
		if allowed == origin {
			return true
		}
	}
	return false
}
