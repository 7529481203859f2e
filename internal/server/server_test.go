package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/boardwire/boardwire/internal/auth"
	"github.com/boardwire/boardwire/internal/config"
	"github.com/boardwire/boardwire/internal/connection"
	"github.com/boardwire/boardwire/internal/dispatcher"
	"github.com/boardwire/boardwire/internal/logging"
	"github.com/boardwire/boardwire/internal/registry"
)

func TestHealthzRespondsOK(t *testing.T) {
	validator, err := auth.New(config.AuthConfig{Enabled: false, DesktopUserID: "desktop"})
	require.NoError(t, err)

	disp := dispatcher.New(time.Second, logging.NewDiscard())
	mgr := connection.New(config.Config{Heartbeat: config.HeartbeatConfig{IntervalSecs: 30, TimeoutSecs: 60, SendBufferSize: 16}}, validator, registry.New(), disp, logging.NewDiscard(), func() bool { return false })

	srv := New(config.ServerConfig{Host: "127.0.0.1", Port: 0}, mgr, logging.NewDiscard())

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(l) }()
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	resp, err := http.Get("http://" + l.Addr().String() + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
