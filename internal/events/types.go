package events

// Event type identifiers for kelindar/event.
const (
	TypeLEDStateChanged uint32 = iota + 1
	TypeLEDCommand
	TypePhysicalClicks
	TypeLogEntry
)

// Event is implemented by everything published on the bus.
type Event interface {
	Type() uint32
}

// LEDStateChangedEvent carries a status read that differs from the previous one.
type LEDStateChangedEvent struct {
	Raw         string `json:"raw" example:"on 255 500 500" doc:"Status line as returned by the driver"`
	Mode        string `json:"mode" example:"on" doc:"Mode token, lower-cased"`
	DisplayMode string `json:"display_mode" example:"ON" doc:"Mode as shown to users"`
	Level       int    `json:"level" example:"255" doc:"Brightness level"`
	DelayOn     int    `json:"delay_on" example:"500" doc:"Blink on time in ms"`
	DelayOff    int    `json:"delay_off" example:"500" doc:"Blink off time in ms"`
	Fallback    bool   `json:"fallback" example:"false" doc:"True when the device could not be read and the placeholder status was returned"`
	Timestamp   string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Read timestamp"`
}

// Type returns the event type identifier for LEDStateChangedEvent.
func (e LEDStateChangedEvent) Type() uint32 { return TypeLEDStateChanged }

// LEDCommandEvent records a command written to the device.
type LEDCommandEvent struct {
	Command   string `json:"command" example:"1" doc:"Raw command written to the driver"`
	Mode      string `json:"mode,omitempty" example:"ON" doc:"Mode the command was derived from, if any"`
	Source    string `json:"source" example:"api" doc:"Who issued the command: api, nats, cli"`
	Code      int    `json:"code" example:"1" doc:"Bytes written, or a negative error code"`
	Error     string `json:"error,omitempty" doc:"Failure description"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Command timestamp"`
}

// Type returns the event type identifier for LEDCommandEvent.
func (e LEDCommandEvent) Type() uint32 { return TypeLEDCommand }

// PhysicalClicksEvent reports a new hardware button click count.
type PhysicalClicksEvent struct {
	Count     int    `json:"count" example:"12" doc:"Total physical clicks reported by the coordinator"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Read timestamp"`
}

// Type returns the event type identifier for PhysicalClicksEvent.
func (e PhysicalClicksEvent) Type() uint32 { return TypePhysicalClicks }

// LogEntryEvent is a log record forwarded to SSE clients.
type LogEntryEvent struct {
	Timestamp  string         `json:"timestamp"`
	Level      string         `json:"level"`
	Module     string         `json:"module"`
	Message    string         `json:"message"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
