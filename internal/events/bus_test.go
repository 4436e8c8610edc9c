package events

import (
	"sync"
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan LEDStateChangedEvent, 1)

	unsub := bus.Subscribe(func(e LEDStateChangedEvent) {
		received <- e
	})
	defer unsub()

	bus.Publish(LEDStateChangedEvent{Raw: "on 1 2 3", Mode: "on", DisplayMode: "ON", Level: 1})

	select {
	case got := <-received:
		if got.Raw != "on 1 2 3" || got.DisplayMode != "ON" {
			t.Errorf("received %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan LEDCommandEvent, 1)

	unsub := bus.Subscribe(func(e LEDCommandEvent) {
		received <- e
	})

	bus.Publish(LEDCommandEvent{Command: "1", Source: "api"})
	<-received

	unsub()

	bus.Publish(LEDCommandEvent{Command: "0", Source: "api"})
	select {
	case <-received:
		t.Fatal("received event after unsubscribe")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBus_TypeSafety(t *testing.T) {
	bus := New()
	clicks := make(chan PhysicalClicksEvent, 1)
	states := make(chan LEDStateChangedEvent, 1)

	defer bus.Subscribe(func(e PhysicalClicksEvent) { clicks <- e })()
	defer bus.Subscribe(func(e LEDStateChangedEvent) { states <- e })()

	bus.Publish(PhysicalClicksEvent{Count: 4})
	<-clicks

	select {
	case <-states:
		t.Fatal("state subscriber received a clicks event")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBus_UnknownHandler(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(string) {})
	if unsub == nil {
		t.Fatal("Subscribe returned nil unsubscribe")
	}
	unsub()
}

func TestBus_ConcurrentPublish(_ *testing.T) {
	bus := New()
	const publishers, perPublisher = 8, 50
	received := make(chan struct{}, publishers*perPublisher)

	defer bus.Subscribe(func(LogEntryEvent) { received <- struct{}{} })()

	var wg sync.WaitGroup
	for range publishers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perPublisher {
				bus.Publish(LogEntryEvent{Level: "info", Message: "tick"})
			}
		}()
	}
	wg.Wait()

	for range publishers * perPublisher {
		<-received
	}
}

func TestSubscribeToChannel_DropsWhenFull(t *testing.T) {
	bus := New()
	ch := make(chan any, 1)

	unsub := SubscribeToChannel[PhysicalClicksEvent](bus, ch)
	defer unsub()

	bus.Publish(PhysicalClicksEvent{Count: 1})
	first := <-ch
	if e, ok := first.(PhysicalClicksEvent); !ok || e.Count != 1 {
		t.Fatalf("first event = %#v", first)
	}

	bus.Publish(PhysicalClicksEvent{Count: 2})
	bus.Publish(PhysicalClicksEvent{Count: 3})
	time.Sleep(50 * time.Millisecond)

	if len(ch) != 1 {
		t.Errorf("channel len = %d, want 1 (extra events dropped)", len(ch))
	}
}
