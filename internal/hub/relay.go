package hub

import (
	"context"

	"flowcanvas/internal/service"
)

// Relay forwards events published on bus to all SSE clients until ctx is
// done.
func (h *Hub) Relay(ctx context.Context, bus *service.EventBus) error {
	events := make(chan service.Event, 100)
	bus.Subscribe(events)
	defer bus.Unsubscribe(events)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			h.Broadcast(Message{Event: string(ev.Type), Data: ev})
		}
	}
}
