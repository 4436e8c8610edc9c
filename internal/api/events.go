package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/smazurov/ledbridge/internal/events"
)

// registerSSERoutes registers the LED event stream.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "LED state changes, commands and physical clicks. The current state is sent on connect.",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"led-state":       events.LEDStateChangedEvent{},
		"led-command":     events.LEDCommandEvent{},
		"physical-clicks": events.PhysicalClicksEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 32)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.LEDStateChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.LEDCommandEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.PhysicalClicksEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		for _, initial := range s.initialEvents() {
			if err := send.Data(initial); err != nil {
				return
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}

// initialEvents is the snapshot a new client needs before live updates.
func (s *Server) initialEvents() []any {
	var out []any

	if s.options.States != nil {
		if snap, ok := s.options.States.Last(); ok {
			out = append(out, snap.Event())
		}
	}
	if len(out) == 0 && s.options.LED != nil {
		out = append(out, s.options.LED.ReadState().Event())
	}

	if s.options.Clicks != nil {
		out = append(out, events.PhysicalClicksEvent{
			Count:     s.options.Clicks.Count(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
	return out
}
