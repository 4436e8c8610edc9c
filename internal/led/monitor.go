package led

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/ledbridge/internal/events"
)

// DefaultStatusInterval is how often the monitor reads the status.
const DefaultStatusInterval = 100 * time.Millisecond

// Monitor polls the controller and publishes a LEDStateChangedEvent whenever
// the raw status line changes.
type Monitor struct {
	controller Controller
	eventBus   *events.Bus
	interval   time.Duration
	logger     *slog.Logger

	mu      sync.RWMutex
	last    Snapshot
	hasLast bool

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor creates a monitor. A non-positive interval uses
// DefaultStatusInterval.
func NewMonitor(controller Controller, eventBus *events.Bus, interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultStatusInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		controller: controller,
		eventBus:   eventBus,
		interval:   interval,
		logger:     logger,
	}
}

// Start begins polling. Calling Start on a running monitor does nothing.
func (m *Monitor) Start(ctx context.Context) {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	go m.run(ctx, m.done)
	m.logger.Info("LED status monitor started", "interval", m.interval)
}

// Stop cancels polling and waits for the loop to exit.
func (m *Monitor) Stop() {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.cancel = nil
	m.done = nil
	m.logger.Info("LED status monitor stopped")
}

// Last returns the most recent snapshot, if any read has happened.
func (m *Monitor) Last() (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last, m.hasLast
}

// Poll reads the status once, records it and publishes it if the raw text
// differs from the previous read.
func (m *Monitor) Poll() Snapshot {
	snap := m.controller.ReadState()

	m.mu.Lock()
	changed := !m.hasLast || snap.Raw != m.last.Raw
	m.last = snap
	m.hasLast = true
	m.mu.Unlock()

	if changed {
		m.logger.Debug("LED status changed", "raw", snap.Raw, "fallback", snap.Fallback)
		if m.eventBus != nil {
			m.eventBus.Publish(snap.Event())
		}
	}
	return snap
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Poll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Poll()
		}
	}
}
