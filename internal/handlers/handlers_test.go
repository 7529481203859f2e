package handlers

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/boardwire/boardwire/internal/authz"
	"github.com/boardwire/boardwire/internal/breaker"
	"github.com/boardwire/boardwire/internal/broadcast"
	"github.com/boardwire/boardwire/internal/config"
	"github.com/boardwire/boardwire/internal/dbops"
	"github.com/boardwire/boardwire/internal/hierarchy"
	"github.com/boardwire/boardwire/internal/logging"
	"github.com/boardwire/boardwire/internal/registry"
	"github.com/boardwire/boardwire/internal/reqctx"
	"github.com/boardwire/boardwire/internal/retry"
	"github.com/boardwire/boardwire/internal/storage/sqlite"
	"github.com/boardwire/boardwire/internal/testutil"
	"github.com/boardwire/boardwire/internal/validate"
)

// newTestHandlers wires a Handlers bundle against a real, temporary SQLite
// store with generous breaker/retry settings so tests exercise the actual
// transaction and authorization flow rather than a mock.
func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	dir := testutil.TempDirInMemory(t)
	store, err := sqlite.Open(context.Background(), filepath.Join(dir, "handlers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	readBreaker := breaker.New("read", config.BreakerConfig{FailureThreshold: 1000, FailureWindowSecs: 30, OpenDurationSecs: 1, HalfOpenSuccessThreshold: 1})
	writeBreaker := breaker.New("write", config.BreakerConfig{FailureThreshold: 1000, FailureWindowSecs: 30, OpenDurationSecs: 1, HalfOpenSuccessThreshold: 1})
	retryPolicy := retry.New(config.RetryConfig{MaxAttempts: 1, InitialDelayMs: 1, BackoffMultiplier: 1, MaxDelayMs: 1})
	ops := dbops.New(readBreaker, writeBreaker, retryPolicy, 5*time.Second, logging.NewDiscard())

	validator := validate.New(config.ValidateConfig{MaxTitleLength: 200, MaxDescriptionLength: 10000, MaxCommentLength: 5000})
	checker := authz.NewSingleTenantChecker()
	hierarchyV := hierarchy.New(store.WorkItems())
	fanout := broadcast.New(registry.New(), logging.NewDiscard())

	return New(store, ops, validator, checker, hierarchyV, fanout, logging.NewDiscard())
}

// ctxAsUser returns a context carrying a RequestContext for userID with a
// fresh message id, the same shape ConnectionManager builds per message.
func ctxAsUser(userID string) context.Context {
	rc := &reqctx.RequestContext{
		MessageID:     uuid.NewString(),
		CorrelationID: uuid.NewString(),
		UserID:        userID,
		ConnectionID:  "test-conn",
		ReceivedAt:    time.Now(),
	}
	return reqctx.WithRequestContext(context.Background(), rc)
}

// ctxWithMessageID lets a test pin the message id, for replay assertions.
func ctxWithMessageID(userID, messageID string) context.Context {
	rc := &reqctx.RequestContext{
		MessageID:     messageID,
		CorrelationID: uuid.NewString(),
		UserID:        userID,
		ConnectionID:  "test-conn",
		ReceivedAt:    time.Now(),
	}
	return reqctx.WithRequestContext(context.Background(), rc)
}
