package led

import (
	"log/slog"
	"time"

	"github.com/smazurov/ledbridge/internal/device"
)

// noop implements Controller for hosts where the device is disabled.
type noop struct {
	logger *slog.Logger
}

func newNoop(logger *slog.Logger) *noop {
	return &noop{
		logger: logger,
	}
}

// Apply logs the request and reports the device as unavailable.
func (n *noop) Apply(mode Mode) (int, error) {
	n.logger.Debug("LED control not available (no-op)", "mode", mode)
	return 0, ErrUnavailable
}

// Write logs the request and reports the device as unavailable.
func (n *noop) Write(command string) (int, error) {
	n.logger.Debug("LED control not available (no-op)", "command", command)
	return 0, ErrUnavailable
}

// ReadState always returns the fallback status.
func (n *noop) ReadState() Snapshot {
	return NewSnapshot(device.FallbackStatus, time.Now())
}

// Modes returns an empty list since nothing can be applied.
func (n *noop) Modes() []Mode {
	return []Mode{}
}
