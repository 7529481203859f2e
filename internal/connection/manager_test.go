package connection

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/boardwire/boardwire/internal/auth"
	"github.com/boardwire/boardwire/internal/config"
	"github.com/boardwire/boardwire/internal/dispatcher"
	"github.com/boardwire/boardwire/internal/logging"
	"github.com/boardwire/boardwire/internal/registry"
)

func TestBearerTokenFromAuthorizationHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "Bearer abc123")
	require.Equal(t, "abc123", bearerToken(r))
}

func TestBearerTokenFromQueryParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws?token=xyz", nil)
	require.Equal(t, "xyz", bearerToken(r))
}

func TestBearerTokenMissingReturnsEmpty(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws", nil)
	require.Empty(t, bearerToken(r))
}

func TestServeHTTPRejectsUnauthenticatedBeforeUpgrade(t *testing.T) {
	validator, err := auth.New(config.AuthConfig{Enabled: true, JWTSecret: "secret-key-for-tests"})
	require.NoError(t, err)
	disp := dispatcher.New(time.Second, logging.NewDiscard())
	mgr := New(config.Config{Heartbeat: config.HeartbeatConfig{IntervalSecs: 30, TimeoutSecs: 90}}, validator, registry.New(), disp, logging.NewDiscard(), nil)

	r := httptest.NewRequest("GET", "/ws", nil)
	w := httptest.NewRecorder()
	mgr.ServeHTTP(w, r)

	require.Equal(t, 401, w.Code)
}

// TestIdleConnectionSurvivesHeartbeatWhenPongsAnswerPings pins down the fix
// for the bug where incoming pongs were never observed: gorilla's default
// client answers server pings with pongs automatically, and a connection
// that does nothing else must not be dropped for HEARTBEAT_TIMEOUT as long
// as those pongs keep arriving.
func TestIdleConnectionSurvivesHeartbeatWhenPongsAnswerPings(t *testing.T) {
	validator, err := auth.New(config.AuthConfig{Enabled: false, DesktopUserID: "desktop"})
	require.NoError(t, err)
	disp := dispatcher.New(time.Second, logging.NewDiscard())
	mgr := New(config.Config{Heartbeat: config.HeartbeatConfig{IntervalSecs: 1, TimeoutSecs: 3, SendBufferSize: 16}}, validator, registry.New(), disp, logging.NewDiscard(), nil)

	srv := httptest.NewServer(http.HandlerFunc(mgr.ServeHTTP))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Default client-side behavior: reply to every ping with a pong. No
	// application traffic is ever sent on this connection.
	pinged := make(chan struct{}, 8)
	conn.SetPingHandler(func(appData string) error {
		select {
		case pinged <- struct{}{}:
		default:
		}
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
	})

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pinged:
	case <-time.After(2 * time.Second):
		t.Fatal("server never sent a ping within the heartbeat interval")
	}

	// Outlast the timeout window; the connection must still be alive
	// because the server has been seeing our pongs.
	time.Sleep(4 * time.Second)

	require.NoError(t, conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)),
		"connection should still be open after outlasting the heartbeat timeout via pongs")
}
