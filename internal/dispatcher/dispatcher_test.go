package dispatcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/boardwire/boardwire/internal/logging"
	"github.com/boardwire/boardwire/internal/wire"
	"github.com/boardwire/boardwire/internal/wireerr"
)

func TestDispatchRoutesToRegisteredHandler(t *testing.T) {
	d := New(time.Second, logging.NewDiscard())
	d.Register("Ping", func(ctx context.Context, p wire.Payload) (wire.Payload, error) {
		return &wire.Pong{}, nil
	})

	reply, err := d.Dispatch(context.Background(), &wire.Ping{})
	require.NoError(t, err)
	require.Equal(t, "Pong", reply.Kind())
}

func TestDispatchUnrecognisedKindIsInvalidMessage(t *testing.T) {
	d := New(time.Second, logging.NewDiscard())

	_, err := d.Dispatch(context.Background(), &wire.Ping{})
	var werr *wireerr.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wireerr.CodeInvalidMessage, werr.Code)
}

func TestDispatchTimesOutSlowHandler(t *testing.T) {
	d := New(5*time.Millisecond, logging.NewDiscard())
	d.Register("Ping", func(ctx context.Context, p wire.Payload) (wire.Payload, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	_, err := d.Dispatch(context.Background(), &wire.Ping{})
	var werr *wireerr.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wireerr.CodeTimeout, werr.Code)
}

func TestDispatchRecoversHandlerPanic(t *testing.T) {
	d := New(time.Second, logging.NewDiscard())
	d.Register("Ping", func(ctx context.Context, p wire.Payload) (wire.Payload, error) {
		panic("handler exploded")
	})

	_, err := d.Dispatch(context.Background(), &wire.Ping{})
	var werr *wireerr.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wireerr.CodeInternal, werr.Code)
}
