// Package connection implements ConnectionManager (spec §4.1): the
// socket lifecycle owner that multiplexes inbound and outbound frames
// for one websocket connection, grounded on the receive/send pump pair
// in the teacher's examples/beads-web-ui/websocket.go, generalized from
// a single mutation-poll loop to full request/reply dispatch plus
// broadcast fan-out delivery.
package connection

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/boardwire/boardwire/internal/auth"
	"github.com/boardwire/boardwire/internal/config"
	"github.com/boardwire/boardwire/internal/dispatcher"
	"github.com/boardwire/boardwire/internal/logging"
	"github.com/boardwire/boardwire/internal/ratelimit"
	"github.com/boardwire/boardwire/internal/registry"
	"github.com/boardwire/boardwire/internal/reqctx"
	"github.com/boardwire/boardwire/internal/subscription"
	"github.com/boardwire/boardwire/internal/wire"
	"github.com/boardwire/boardwire/internal/wireerr"
)

// writeWait bounds a single frame write, including the ping and close
// control frames the heartbeat loop sends.
const writeWait = 10 * time.Second

const maxMessageSize = 64 * 1024

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Manager owns every live connection's lifecycle: upgrade, auth
// handshake, the receive/send/heartbeat loop trio, and unregister-on-exit.
type Manager struct {
	cfg        config.Config
	validator  auth.Validator
	registry   *registry.Registry
	dispatcher *dispatcher.Dispatcher
	logger     *logging.Logger
	draining   func() bool
}

// New builds a Manager. draining is consulted at loop boundaries so an
// in-flight ShutdownCoordinator drain can nudge connections to close
// without the manager importing the shutdown package directly.
func New(cfg config.Config, validator auth.Validator, reg *registry.Registry, disp *dispatcher.Dispatcher, logger *logging.Logger, draining func() bool) *Manager {
	if draining == nil {
		draining = func() bool { return false }
	}
	return &Manager{cfg: cfg, validator: validator, registry: reg, dispatcher: disp, logger: logger, draining: draining}
}

// ServeHTTP upgrades the request to a websocket connection, running the
// auth handshake first so a failed credential never reaches the protocol
// switch (spec §4.1: "on failure close with an HTTP-level 401 before the
// protocol switch").
func (m *Manager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := m.validator.Validate(bearerToken(r))
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	bufSize := m.cfg.Heartbeat.SendBufferSize
	if bufSize <= 0 {
		bufSize = 100
	}
	c := &wsConn{
		id:       uuid.NewString(),
		userID:   userID,
		ws:       conn,
		send:     make(chan []byte, bufSize),
		filter:   subscription.New(),
		limiter:  ratelimit.New(m.cfg.RateLimit),
		manager:  m,
		lastSeen: make(chan struct{}, 1),
	}
	// gorilla only invokes this on an inbound Pong control frame; ReadMessage
	// never surfaces pongs to the caller, so this is the only way to learn
	// a client answered our ping.
	c.ws.SetPongHandler(func(string) error { c.markSeen(); return nil })

	m.registry.Register(registry.Entry{ConnectionID: c.id, UserID: userID, Filter: c.filter, Send: c.send})
	m.logger.Info("connection established", "connection_id", c.id, "user_id", userID)

	done := make(chan struct{})
	go c.sendLoop(done)
	go c.heartbeatLoop(done)
	c.receiveLoop() // blocks until the socket closes

	close(done)
	m.registry.Unregister(c.id)
	c.closeOnce()
	m.logger.Info("connection closed", "connection_id", c.id)
}

// bearerToken extracts the handshake credential: the Authorization
// header's bearer token, or a token query parameter for clients that
// can't set headers on a websocket upgrade request.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
		return h[7:]
	}
	return r.URL.Query().Get("token")
}

// wsConn is one live connection's private state: the socket, its outbound
// channel, its subscription filter, and its own rate limiter. Exported
// only through the registry.Entry snapshot broadcast reads.
type wsConn struct {
	id      string
	userID  string
	ws      *websocket.Conn
	send    chan []byte
	filter  *subscription.Filter
	limiter *ratelimit.Limiter
	manager *Manager

	lastSeen  chan struct{} // signalled on any inbound activity, for heartbeat tracking
	closeDone bool
}

func (c *wsConn) closeOnce() {
	if c.closeDone {
		return
	}
	c.closeDone = true
	close(c.send)
	c.ws.Close()
}

// receiveLoop reads frames until the socket errors or the manager is
// draining; it is the only goroutine that calls Dispatch.
func (c *wsConn) receiveLoop() {
	c.ws.SetReadLimit(maxMessageSize)
	for {
		if c.manager.draining() {
			c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		}

		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.manager.logger.Debug("connection read error", "connection_id", c.id, "error", err)
			}
			return
		}
		c.markSeen()

		if kind != websocket.BinaryMessage {
			c.replyError(wireerr.InvalidMessage("only binary frames are accepted"), "")
			continue
		}

		c.handleFrame(data)
	}
}

func (c *wsConn) markSeen() {
	select {
	case c.lastSeen <- struct{}{}:
	default:
	}
}

func (c *wsConn) handleFrame(data []byte) {
	env, err := wire.DecodeEnvelope(data)
	if err != nil {
		c.replyError(wireerr.InvalidMessage("malformed envelope"), "")
		return
	}

	if !c.limiter.Allow() {
		c.replyError(wireerr.RateLimited(), env.MessageID)
		return
	}

	payload, err := wire.Unmarshal(env)
	if err != nil {
		c.replyError(wireerr.InvalidMessage(err.Error()), env.MessageID)
		return
	}

	switch p := payload.(type) {
	case *wire.Ping:
		c.enqueue(wire.Pong{}, env.MessageID)
		return
	case *wire.Subscribe:
		c.filter.Subscribe(p.ProjectIDs, p.WorkItemIDs, p.SprintIDs)
		return
	case *wire.Unsubscribe:
		c.filter.Unsubscribe(p.ProjectIDs, p.WorkItemIDs, p.SprintIDs)
		return
	}

	rc := &reqctx.RequestContext{
		MessageID:    env.MessageID,
		CorrelationID: uuid.NewString(),
		UserID:       c.userID,
		ConnectionID: c.id,
		ReceivedAt:   time.Now(),
	}
	ctx := reqctx.WithRequestContext(context.Background(), rc)

	reply, err := c.manager.dispatcher.Dispatch(ctx, payload)
	if err != nil {
		c.replyErrWithContext(err, env.MessageID, rc)
		return
	}
	c.enqueue(reply, env.MessageID)
}

func (c *wsConn) replyError(werr *wireerr.Error, messageID string) {
	c.enqueue(&wire.ErrorPayload{
		Code:           string(werr.Code),
		Message:        werr.Message,
		Field:          werr.Field,
		CurrentVersion: werr.CurrentVersion,
		Count:          werr.Count,
	}, messageID)
}

func (c *wsConn) replyErrWithContext(err error, messageID string, rc *reqctx.RequestContext) {
	var werr *wireerr.Error
	if !errors.As(err, &werr) {
		werr = wireerr.Internal(rc.CorrelationID)
	}
	c.replyError(werr, messageID)
}

func (c *wsConn) enqueue(payload wire.Payload, messageID string) {
	frame, err := wire.Encode(messageID, time.Now().UnixMilli(), payload)
	if err != nil {
		c.manager.logger.Error("encode reply failed", "connection_id", c.id, "kind", payload.Kind(), "error", err)
		return
	}
	select {
	case c.send <- frame:
	default:
		c.manager.logger.Warn("send buffer full, dropping reply", "connection_id", c.id, "kind", payload.Kind())
	}
}

// sendLoop is the single writer goroutine for this connection's socket,
// per gorilla/websocket's single-writer requirement.
func (c *wsConn) sendLoop(done <-chan struct{}) {
	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				c.manager.logger.Debug("write failed, closing", "connection_id", c.id, "error", err)
				return
			}
		case <-done:
			return
		}
	}
}

// heartbeatLoop pings on heartbeat.interval_secs and closes the
// connection if no frame or pong has been observed within
// heartbeat.timeout_secs.
func (c *wsConn) heartbeatLoop(done <-chan struct{}) {
	interval := time.Duration(c.manager.cfg.Heartbeat.IntervalSecs) * time.Second
	timeout := time.Duration(c.manager.cfg.Heartbeat.TimeoutSecs) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	idle := time.NewTimer(timeout)
	defer idle.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.lastSeen:
			if !idle.Stop() {
				<-idle.C
			}
			idle.Reset(timeout)
		case <-ticker.C:
			// WriteControl, unlike WriteMessage, is safe to call concurrently
			// with sendLoop's WriteMessage calls on the same connection.
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-idle.C:
			c.manager.logger.Info("heartbeat timeout, closing", "connection_id", c.id)
			c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "HEARTBEAT_TIMEOUT"),
				time.Now().Add(writeWait))
			c.ws.Close()
			return
		}
	}
}
