// Package broadcast implements BroadcastFanout (spec §4.11): for every
// successful write, snapshot the connection registry, filter by each
// connection's SubscriptionFilter, and attempt a non-blocking send on
// each matching connection's bounded outbound channel. A full channel or
// gone receiver is logged and skipped — the slow client never
// backpressures the writer.
package broadcast

import (
	"github.com/boardwire/boardwire/internal/logging"
	"github.com/boardwire/boardwire/internal/registry"
	"github.com/boardwire/boardwire/internal/subscription"
	"github.com/boardwire/boardwire/internal/wire"
)

// Fanout walks the connection registry and delivers an encoded broadcast
// frame to every subscribed connection.
type Fanout struct {
	registry *registry.Registry
	logger   *logging.Logger
}

// New builds a Fanout over reg, logging drops at DEBUG through logger.
func New(reg *registry.Registry, logger *logging.Logger) *Fanout {
	return &Fanout{registry: reg, logger: logger}
}

// Send encodes payload under messageID and delivers it to every
// connection whose SubscriptionFilter matches evt. Skips excludeConnID
// (typically the originating connection, which already has its own
// direct reply) when non-empty; an empty excludeConnID delivers to every
// match including the originator, which the handlers use for the
// ActivityLogCreated broadcast.
func (f *Fanout) Send(messageID string, timestampMillis int64, payload wire.Payload, evt subscription.Event, excludeConnID string) {
	frame, err := wire.Encode(messageID, timestampMillis, payload)
	if err != nil {
		f.logger.Error("broadcast encode failed", "kind", payload.Kind(), "error", err)
		return
	}

	for _, entry := range f.registry.Snapshot() {
		if entry.ConnectionID == excludeConnID {
			continue
		}
		if !entry.Filter.ShouldReceive(evt) {
			continue
		}
		select {
		case entry.Send <- frame:
		default:
			f.logger.Debug("broadcast dropped, connection send buffer full",
				"connection_id", entry.ConnectionID, "kind", payload.Kind())
		}
	}
}
