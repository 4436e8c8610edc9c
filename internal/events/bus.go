package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish delivers ev to subscribers of its concrete type.
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case LEDStateChangedEvent:
		event.Publish(b.dispatcher, e)
	case LEDCommandEvent:
		event.Publish(b.dispatcher, e)
	case PhysicalClicksEvent:
		event.Publish(b.dispatcher, e)
	case LogEntryEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe registers handler, whose parameter type selects the events it
// receives. Unknown handler types get a no-op unsubscribe.
//
//	unsub := bus.Subscribe(func(e LEDStateChangedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(LEDStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LEDCommandEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(PhysicalClicksEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LogEntryEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
