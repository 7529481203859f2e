package server

import (
	"net/http"
	"strings"

	"github.com/boardwire/boardwire/internal/config"
)

// corsMiddleware wraps next with the Access-Control-* headers browser-based
// websocket clients need for the upgrade handshake's preceding preflight,
// grounded on the teacher's examples/beads-web-ui/cors.go. Returns next
// unwrapped when CORS is disabled.
func corsMiddleware(cfg config.ServerConfig, next http.Handler) http.Handler {
	if !cfg.CORSEnabled {
		return next
	}

	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		allowed[strings.TrimSuffix(origin, "/")] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		w.Header().Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			if origin != "" && origin != "null" && allowed[strings.TrimSuffix(origin, "/")] {
				setCORSHeaders(w, origin)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			w.WriteHeader(http.StatusForbidden)
			return
		}

		if origin != "" && origin != "null" && allowed[strings.TrimSuffix(origin, "/")] {
			setCORSHeaders(w, origin)
		}
		next.ServeHTTP(w, r)
	})
}

func setCORSHeaders(w http.ResponseWriter, origin string) {
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
	w.Header().Set("Access-Control-Allow-Credentials", "true")
	w.Header().Set("Access-Control-Max-Age", "86400")
}
