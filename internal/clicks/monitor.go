// Package clicks follows the physical button click counter exposed by the
// coordinator driver in procfs.
package clicks

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/smazurov/ledbridge/internal/events"
)

const (
	// DefaultPath is the coordinator's procfs entry.
	DefaultPath = "/proc/coordinator"
	// DefaultInterval is how often the counter is read.
	DefaultInterval = time.Second
)

// ErrNoCount is returned when no line of the counter file holds digits.
var ErrNoCount = errors.New("no click count found")

var digits = regexp.MustCompile(`(\d+)`)

// Parse returns the first run of digits on the first line that has one.
func Parse(data []byte) (int, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		m := digits.FindString(scanner.Text())
		if m == "" {
			continue
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			return 0, fmt.Errorf("parse click count %q: %w", m, err)
		}
		return n, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, ErrNoCount
}

// Monitor polls the counter file. On read or parse failure the last known
// value is kept.
type Monitor struct {
	path     string
	interval time.Duration
	eventBus *events.Bus
	onChange func(int)
	logger   *slog.Logger

	mu    sync.RWMutex
	count int

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithOnChange registers a callback run after the count changes, such as a
// metrics gauge setter.
func WithOnChange(fn func(count int)) Option {
	return func(m *Monitor) {
		m.onChange = fn
	}
}

// NewMonitor creates a monitor for path. Zero values select the defaults.
func NewMonitor(path string, interval time.Duration, eventBus *events.Bus, logger *slog.Logger, opts ...Option) *Monitor {
	if path == "" {
		path = DefaultPath
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Monitor{
		path:     path,
		interval: interval,
		eventBus: eventBus,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Count returns the last known click count.
func (m *Monitor) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count
}

// Poll reads the counter once and returns the resulting count.
func (m *Monitor) Poll() int {
	data, err := os.ReadFile(m.path)
	if err != nil {
		m.logger.Debug("Failed to read click counter", "path", m.path, "error", err)
		return m.Count()
	}

	n, err := Parse(data)
	if err != nil {
		m.logger.Debug("Failed to parse click counter", "path", m.path, "error", err)
		return m.Count()
	}

	m.mu.Lock()
	changed := n != m.count
	m.count = n
	m.mu.Unlock()

	if changed {
		m.logger.Debug("Physical clicks changed", "count", n)
		if m.onChange != nil {
			m.onChange(n)
		}
		if m.eventBus != nil {
			m.eventBus.Publish(events.PhysicalClicksEvent{
				Count:     n,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
		}
	}
	return n
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
	m.logger.Info("Click monitor started", "path", m.path, "interval", m.interval)
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
	m.logger.Info("Click monitor stopped")
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
