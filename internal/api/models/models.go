// Package models holds the request and response bodies of the HTTP API.
package models

import (
	"time"

	"github.com/smazurov/ledbridge/internal/version"
)

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

type VersionResponse struct {
	Body version.Info
}

// LED write models
type LEDModeRequest struct {
	Body struct {
		Mode string `json:"mode" minLength:"1" example:"BLINK" doc:"LED mode: ON, OFF, BLINK or BREATH (case-insensitive)"`
	}
}

type LEDCommandRequest struct {
	Body struct {
		Command string `json:"command" example:"3" doc:"Raw command written to the driver unchanged"`
	}
}

type LEDWriteData struct {
	Mode    string `json:"mode,omitempty" example:"BLINK" doc:"Mode the command was derived from, if any"`
	Command string `json:"command" example:"3" doc:"Command written to the driver"`
	Written int    `json:"written" example:"1" doc:"Bytes accepted by the driver"`
	Code    int    `json:"code" example:"1" doc:"Bytes written, or a negative error code when the write failed"`
	Error   string `json:"error,omitempty" example:"open /dev/led_ctrl: no such file or directory" doc:"Failure description"`
}

type LEDWriteResponse struct {
	Body LEDWriteData
}

// LED status models
type LEDStatusData struct {
	Raw         string    `json:"raw" example:"on 255 500 500" doc:"Status line as returned by the driver"`
	Mode        string    `json:"mode" example:"on" doc:"Mode token, lower-cased"`
	DisplayMode string    `json:"display_mode" example:"ON" doc:"Mode as shown to users"`
	Level       int       `json:"level" example:"255" doc:"Brightness level"`
	DelayOn     int       `json:"delay_on" example:"500" doc:"Blink on time in ms"`
	DelayOff    int       `json:"delay_off" example:"500" doc:"Blink off time in ms"`
	Fallback    bool      `json:"fallback" example:"false" doc:"True when the device could not be read and the placeholder status was returned"`
	ReadAt      time.Time `json:"read_at" doc:"When the status was read"`
}

type LEDStatusResponse struct {
	Body LEDStatusData
}

type LEDCapabilitiesData struct {
	Modes  []string `json:"modes" example:"[\"ON\",\"OFF\",\"BLINK\",\"BREATH\"]" doc:"Modes that can be applied"`
	Device string   `json:"device" example:"/dev/led_ctrl" doc:"Device node"`
}

type LEDCapabilitiesResponse struct {
	Body LEDCapabilitiesData
}

// Click counter models
type ClicksData struct {
	Count int `json:"count" example:"12" doc:"Physical button clicks reported by the coordinator"`
}

type ClicksResponse struct {
	Body ClicksData
}
