// Package server wires the HTTP listener and websocket upgrade route,
// grounded on the h2c-wrapped http.Server in the teacher's
// examples/beads-web-ui/main.go, generalized from a REST+SSE surface to
// a single websocket endpoint backed by ConnectionManager.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/boardwire/boardwire/internal/config"
	"github.com/boardwire/boardwire/internal/connection"
	"github.com/boardwire/boardwire/internal/logging"
)

// Server owns the HTTP listener that upgrades incoming requests to
// websocket connections.
type Server struct {
	http *http.Server
	addr string
}

// New builds a Server serving mgr at /ws, h2c-wrapped the way the
// teacher's web UI serves its SSE/websocket/terminal routes over plain
// HTTP/2 without TLS termination in front.
func New(cfg config.ServerConfig, mgr *connection.Manager, logger *logging.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", mgr)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	handler := h2c.NewHandler(corsMiddleware(cfg, mux), &http2.Server{})
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	return &Server{
		addr: addr,
		http: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0, // websocket connections are long-lived
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Serve blocks accepting connections on l until Shutdown is called.
func (s *Server) Serve(l net.Listener) error {
	err := s.http.Serve(l)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Addr is the address Serve will bind.
func (s *Server) Addr() string { return s.addr }

// Shutdown drains in-flight requests up to ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
