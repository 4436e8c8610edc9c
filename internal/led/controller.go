// Package led turns user-facing LED modes into driver commands and driver
// status lines into structured state.
package led

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownMode is returned for mode names the driver has no command for.
	ErrUnknownMode = errors.New("unknown LED mode")
	// ErrUnavailable is returned by the no-op controller.
	ErrUnavailable = errors.New("LED device not available")
)

// Mode is a user-facing LED mode.
type Mode string

// Supported modes.
const (
	ModeOn     Mode = "ON"
	ModeOff    Mode = "OFF"
	ModeBlink  Mode = "BLINK"
	ModeBreath Mode = "BREATH"
)

var modeCommands = map[Mode]string{
	ModeOn:     "1",
	ModeOff:    "0",
	ModeBlink:  "3",
	ModeBreath: "4",
}

// Modes lists the supported modes in display order.
func Modes() []Mode {
	return []Mode{ModeOn, ModeOff, ModeBlink, ModeBreath}
}

// Command returns the driver command for m.
func (m Mode) Command() (string, bool) {
	cmd, ok := modeCommands[m]
	return cmd, ok
}

// ParseMode accepts a mode name in any case, ignoring surrounding whitespace.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := modeCommands[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}

// Controller drives the LED hardware.
type Controller interface {
	// Apply writes the command for mode and returns the bytes written.
	Apply(mode Mode) (int, error)

	// Write sends command to the driver unchanged.
	Write(command string) (int, error)

	// ReadState reads the current status. It never fails; unreadable
	// hardware yields a snapshot with Fallback set.
	ReadState() Snapshot

	// Modes returns the modes this controller can apply.
	Modes() []Mode
}
