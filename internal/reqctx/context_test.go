package reqctx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWithRequestContextRoundTrips(t *testing.T) {
	rc := &RequestContext{
		MessageID:     "m1",
		CorrelationID: "c1",
		UserID:        "u1",
		ConnectionID:  "conn1",
		ReceivedAt:    time.Now(),
	}
	ctx := WithRequestContext(context.Background(), rc)

	got := FromContext(ctx)
	require.Same(t, rc, got)
}

func TestFromContextMissingReturnsNil(t *testing.T) {
	require.Nil(t, FromContext(context.Background()))
}
