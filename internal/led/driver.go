package led

import (
	"fmt"
	"log/slog"
	"time"
)

// Device is the command/status channel a driver controller talks to.
// *device.Channel satisfies it.
type Device interface {
	Send(command string) (int, error)
	ReadStatus() string
}

// driver implements Controller on top of the character device.
type driver struct {
	dev    Device
	logger *slog.Logger
	now    func() time.Time
}

func newDriver(dev Device, logger *slog.Logger) *driver {
	return &driver{
		dev:    dev,
		logger: logger,
		now:    time.Now,
	}
}

// Apply writes the driver command for mode.
func (d *driver) Apply(mode Mode) (int, error) {
	cmd, ok := mode.Command()
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	n, err := d.dev.Send(cmd)
	if err != nil {
		return n, fmt.Errorf("apply %s: %w", mode, err)
	}
	d.logger.Debug("LED mode applied", "mode", mode, "command", cmd, "written", n)
	return n, nil
}

// Write sends command unchanged.
func (d *driver) Write(command string) (int, error) {
	return d.dev.Send(command)
}

// ReadState reads and parses the current status line.
func (d *driver) ReadState() Snapshot {
	return NewSnapshot(d.dev.ReadStatus(), d.now())
}

// Modes returns all supported modes.
func (d *driver) Modes() []Mode {
	return Modes()
}
