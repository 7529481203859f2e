package broadcast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/boardwire/boardwire/internal/logging"
	"github.com/boardwire/boardwire/internal/registry"
	"github.com/boardwire/boardwire/internal/subscription"
	"github.com/boardwire/boardwire/internal/wire"
)

func TestSendDeliversOnlyToMatchingSubscribers(t *testing.T) {
	reg := registry.New()

	matchSend := make(chan []byte, 1)
	matchFilter := subscription.New()
	matchFilter.Subscribe([]string{"proj-1"}, nil, nil)
	reg.Register(registry.Entry{ConnectionID: "match", Filter: matchFilter, Send: matchSend})

	missSend := make(chan []byte, 1)
	missFilter := subscription.New()
	missFilter.Subscribe([]string{"proj-2"}, nil, nil)
	reg.Register(registry.Entry{ConnectionID: "miss", Filter: missFilter, Send: missSend})

	f := New(reg, logging.NewDiscard())
	f.Send("msg-1", 1000, &wire.Pong{}, subscription.Event{ProjectID: "proj-1"}, "")

	require.Len(t, matchSend, 1)
	require.Len(t, missSend, 0)
}

func TestSendExcludesOriginatingConnection(t *testing.T) {
	reg := registry.New()

	send := make(chan []byte, 1)
	filter := subscription.New()
	filter.Subscribe([]string{"proj-1"}, nil, nil)
	reg.Register(registry.Entry{ConnectionID: "origin", Filter: filter, Send: send})

	f := New(reg, logging.NewDiscard())
	f.Send("msg-1", 1000, &wire.Pong{}, subscription.Event{ProjectID: "proj-1"}, "origin")

	require.Len(t, send, 0)
}

func TestSendSkipsFullChannelWithoutBlocking(t *testing.T) {
	reg := registry.New()

	send := make(chan []byte) // unbuffered, no reader: every send would block
	filter := subscription.New()
	filter.Subscribe([]string{"proj-1"}, nil, nil)
	reg.Register(registry.Entry{ConnectionID: "slow", Filter: filter, Send: send})

	f := New(reg, logging.NewDiscard())
	done := make(chan struct{})
	go func() {
		f.Send("msg-1", 1000, &wire.Pong{}, subscription.Event{ProjectID: "proj-1"}, "")
		close(done)
	}()
	<-done // Send must return without a receiver ever draining the channel
}
