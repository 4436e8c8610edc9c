package led

import (
	"log/slog"
	"time"

	"github.com/smazurov/ledbridge/internal/device"
	"github.com/smazurov/ledbridge/internal/events"
)

// Command sources reported on the bus.
const (
	SourceAPI  = "api"
	SourceNATS = "nats"
	SourceCLI  = "cli"
)

// Result is the outcome of one write to the controller.
type Result struct {
	Mode    Mode
	Command string
	Written int
	Err     error
}

// Code returns the legacy integer result: bytes written, or a negative code.
func (r Result) Code() int {
	return device.Code(r.Written, r.Err)
}

// Manager issues commands on behalf of the API, NATS and CLI front ends and
// announces each outcome on the event bus.
type Manager struct {
	controller Controller
	eventBus   *events.Bus
	logger     *slog.Logger
}

// NewManager creates a manager. eventBus may be nil.
func NewManager(controller Controller, eventBus *events.Bus, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		controller: controller,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// ApplyMode parses name and applies it. Unknown names fail with
// ErrUnknownMode before the device is touched.
func (m *Manager) ApplyMode(source, name string) Result {
	mode, err := ParseMode(name)
	if err != nil {
		m.logger.Warn("Ignoring unknown LED mode", "source", source, "mode", name)
		return Result{Err: err}
	}

	cmd, _ := mode.Command()
	n, err := m.controller.Apply(mode)
	res := Result{Mode: mode, Command: cmd, Written: n, Err: err}
	m.publish(source, res)
	return res
}

// WriteCommand sends command to the controller unchanged.
func (m *Manager) WriteCommand(source, command string) Result {
	n, err := m.controller.Write(command)
	res := Result{Command: command, Written: n, Err: err}
	m.publish(source, res)
	return res
}

// ReadState reads the current status.
func (m *Manager) ReadState() Snapshot {
	return m.controller.ReadState()
}

// Modes returns the modes the controller can apply.
func (m *Manager) Modes() []Mode {
	return m.controller.Modes()
}

// GetController returns the underlying LED controller.
func (m *Manager) GetController() Controller {
	return m.controller
}

func (m *Manager) publish(source string, res Result) {
	if res.Err != nil {
		m.logger.Warn("LED command failed",
			"source", source,
			"command", res.Command,
			"code", res.Code(),
			"error", res.Err)
	} else {
		m.logger.Info("LED command written",
			"source", source,
			"mode", res.Mode,
			"command", res.Command,
			"written", res.Written)
	}

	if m.eventBus == nil {
		return
	}
	ev := events.LEDCommandEvent{
		Command:   res.Command,
		Mode:      string(res.Mode),
		Source:    source,
		Code:      res.Code(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if res.Err != nil {
		ev.Error = res.Err.Error()
	}
	m.eventBus.Publish(ev)
}
