// Package reqctx carries the per-message request context through the
// dispatcher and handler chain (spec §4.3): the client's message id, a
// server-generated correlation id, the authenticated user, and when the
// message was received. Every log line emitted while handling a message
// includes correlation_id and message_id (see internal/logging.WithContext).
package reqctx

import (
	"context"
	"time"
)

type ctxKey struct{}

// RequestContext is the per-message metadata threaded through handlers.
type RequestContext struct {
	MessageID     string
	CorrelationID string
	UserID        string
	ConnectionID  string
	ReceivedAt    time.Time
}

// WithRequestContext returns a context carrying rc.
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// FromContext retrieves the RequestContext stashed by WithRequestContext,
// or nil if none is present.
func FromContext(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(ctxKey{}).(*RequestContext)
	return rc
}
