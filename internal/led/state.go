package led

import (
	"strconv"
	"strings"
	"time"

	"github.com/smazurov/ledbridge/internal/device"
	"github.com/smazurov/ledbridge/internal/events"
)

// State is the parsed form of a driver status line such as "on 255 500 500".
type State struct {
	Mode     string
	Level    int
	DelayOn  int
	DelayOff int
}

// ParseState splits raw on whitespace. Missing or non-numeric fields are 0.
// Blank input has an empty mode, which displays as OFF.
func ParseState(raw string) State {
	fields := strings.Fields(raw)
	var s State
	if len(fields) > 0 {
		s.Mode = strings.ToLower(fields[0])
	}
	s.Level = intField(fields, 1)
	s.DelayOn = intField(fields, 2)
	s.DelayOff = intField(fields, 3)
	return s
}

func intField(fields []string, i int) int {
	if i >= len(fields) {
		return 0
	}
	n, err := strconv.Atoi(fields[i])
	if err != nil {
		return 0
	}
	return n
}

// DisplayMode maps a driver mode token to the name shown to users.
func DisplayMode(mode string) string {
	switch m := strings.ToLower(strings.TrimSpace(mode)); m {
	case "", "off":
		return string(ModeOff)
	case "on":
		return string(ModeOn)
	case "blink":
		return string(ModeBlink)
	case "breath", "breathe", "breathing":
		return string(ModeBreath)
	default:
		return strings.ToUpper(m)
	}
}

// Snapshot is one status read.
type Snapshot struct {
	Raw      string
	State    State
	Fallback bool
	ReadAt   time.Time
}

// NewSnapshot parses raw into a snapshot taken at t.
func NewSnapshot(raw string, t time.Time) Snapshot {
	return Snapshot{
		Raw:      raw,
		State:    ParseState(raw),
		Fallback: raw == device.FallbackStatus,
		ReadAt:   t,
	}
}

// Event converts the snapshot to its bus representation.
func (s Snapshot) Event() events.LEDStateChangedEvent {
	return events.LEDStateChangedEvent{
		Raw:         s.Raw,
		Mode:        s.State.Mode,
		DisplayMode: DisplayMode(s.State.Mode),
		Level:       s.State.Level,
		DelayOn:     s.State.DelayOn,
		DelayOff:    s.State.DelayOff,
		Fallback:    s.Fallback,
		Timestamp:   s.ReadAt.UTC().Format(time.RFC3339),
	}
}
