package nats

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Subjects.
const (
	SubjectPrefix         = "ledbridge"
	SubjectControlMode    = SubjectPrefix + ".control.mode"
	SubjectControlCommand = SubjectPrefix + ".control.command"
	SubjectLEDState       = SubjectPrefix + ".led.state"
	SubjectLEDCommands    = SubjectPrefix + ".led.commands"
	SubjectLEDClicks      = SubjectPrefix + ".led.clicks"

	// controlQueue spreads control requests over bridges sharing a broker
	// so each request is applied once.
	controlQueue = "ledbridge-control"
)

// ModeRequest asks the bridge to apply a mode.
type ModeRequest struct {
	Mode string `json:"mode"`
}

// CommandRequest asks the bridge to write a raw command.
type CommandRequest struct {
	Command string `json:"command"`
}

// CommandReply answers a control request.
type CommandReply struct {
	Mode    string `json:"mode,omitempty"`
	Command string `json:"command"`
	Written int    `json:"written"`
	Code    int    `json:"code"`
	Error   string `json:"error,omitempty"`
}

// StateMessage is published on SubjectLEDState.
type StateMessage struct {
	Raw         string `json:"raw"`
	Mode        string `json:"mode"`
	DisplayMode string `json:"display_mode"`
	Level       int    `json:"level"`
	DelayOn     int    `json:"delay_on"`
	DelayOff    int    `json:"delay_off"`
	Fallback    bool   `json:"fallback"`
	Timestamp   string `json:"timestamp"`
}

// CommandMessage is published on SubjectLEDCommands.
type CommandMessage struct {
	Command   string `json:"command"`
	Mode      string `json:"mode,omitempty"`
	Source    string `json:"source"`
	Code      int    `json:"code"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ClicksMessage is published on SubjectLEDClicks.
type ClicksMessage struct {
	Count     int    `json:"count"`
	Timestamp string `json:"timestamp"`
}

// Marshal serializes a message to JSON.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal deserializes a message from JSON.
func Unmarshal[T any](data []byte) (T, error) {
	var m T
	err := json.Unmarshal(data, &m)
	return m, err
}

// decodeModeRequest accepts a JSON ModeRequest or a bare mode name.
func decodeModeRequest(data []byte) (ModeRequest, error) {
	if !isJSONObject(data) {
		return ModeRequest{Mode: string(bytes.TrimSpace(data))}, nil
	}
	req, err := Unmarshal[ModeRequest](data)
	if err != nil {
		return req, fmt.Errorf("decode mode request: %w", err)
	}
	return req, nil
}

// decodeCommandRequest accepts a JSON CommandRequest or a raw command.
// A raw payload is passed on byte for byte.
func decodeCommandRequest(data []byte) (CommandRequest, error) {
	if !isJSONObject(data) {
		return CommandRequest{Command: string(data)}, nil
	}
	req, err := Unmarshal[CommandRequest](data)
	if err != nil {
		return req, fmt.Errorf("decode command request: %w", err)
	}
	return req, nil
}

func isJSONObject(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
