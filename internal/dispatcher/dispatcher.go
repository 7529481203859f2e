// Package dispatcher implements the Dispatcher (spec §4.4): one
// variant-match from payload kind to handler, wrapped with a hard
// timeout and a panic boundary. The dispatcher never touches the
// database or the connection registry directly — it is pure routing.
package dispatcher

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/boardwire/boardwire/internal/logging"
	"github.com/boardwire/boardwire/internal/reqctx"
	"github.com/boardwire/boardwire/internal/wire"
	"github.com/boardwire/boardwire/internal/wireerr"
)

// Handler processes one decoded payload and returns the wire.Payload to
// send back as the direct reply.
type Handler func(ctx context.Context, payload wire.Payload) (wire.Payload, error)

// Dispatcher routes payloads by Kind to a registered Handler.
type Dispatcher struct {
	handlers map[string]Handler
	timeout  time.Duration
	logger   *logging.Logger
}

// New builds a Dispatcher with the given per-handler timeout.
func New(timeout time.Duration, logger *logging.Logger) *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler), timeout: timeout, logger: logger}
}

// Register binds a Handler to every payload Kind it can process.
func (d *Dispatcher) Register(kind string, h Handler) {
	d.handlers[kind] = h
}

// Dispatch routes payload to its handler under a hard timeout and panic
// boundary. An unrecognised kind yields INVALID_MESSAGE; a timeout yields
// TIMEOUT; a recovered panic yields INTERNAL_ERROR and is logged at ERROR
// with the request's correlation id.
func (d *Dispatcher) Dispatch(ctx context.Context, payload wire.Payload) (wire.Payload, error) {
	handler, ok := d.handlers[payload.Kind()]
	if !ok {
		return nil, wireerr.InvalidMessage("unrecognised message kind: " + payload.Kind())
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	type outcome struct {
		reply wire.Payload
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		var catcher panics.Catcher
		var result outcome
		catcher.Try(func() {
			result.reply, result.err = handler(ctx, payload)
		})
		if recovered := catcher.Recovered(); recovered != nil {
			rc := reqctx.FromContext(ctx)
			d.logWithContext(rc).Error("handler panic recovered",
				"kind", payload.Kind(), "panic", recovered.Value, "stack", string(recovered.Stack))
			result.reply = nil
			result.err = wireerr.Internal(correlationIDOf(rc))
		}
		done <- result
	}()

	select {
	case o := <-done:
		return o.reply, o.err
	case <-ctx.Done():
		rc := reqctx.FromContext(ctx)
		d.logWithContext(rc).Warn("handler timed out", "kind", payload.Kind())
		return nil, wireerr.Timeout("handler did not complete in time")
	}
}

func (d *Dispatcher) logWithContext(rc *reqctx.RequestContext) *logging.Logger {
	if rc == nil {
		return d.logger
	}
	return d.logger.WithContext(context.Background(), rc.CorrelationID, rc.MessageID)
}

func correlationIDOf(rc *reqctx.RequestContext) string {
	if rc == nil {
		return ""
	}
	return rc.CorrelationID
}
