package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/ledbridge/internal/api/models"
	"github.com/smazurov/ledbridge/internal/device"
	"github.com/smazurov/ledbridge/internal/led"
)

// registerLEDRoutes registers LED control endpoints.
func (s *Server) registerLEDRoutes() {
	if s.options.LED == nil {
		s.logger.Debug("LED service not available, skipping LED routes")
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "set-led-mode",
		Method:      http.MethodPost,
		Path:        "/api/led/mode",
		Summary:     "Set LED Mode",
		Description: "Apply one of the supported modes. A device failure is reported in the body with a negative code.",
		Tags:        []string{"led"},
		Errors:      []int{400, 401},
		Security:    withAuth(),
	}, func(_ context.Context, input *models.LEDModeRequest) (*models.LEDWriteResponse, error) {
		res := s.options.LED.ApplyMode(led.SourceAPI, input.Body.Mode)
		if errors.Is(res.Err, led.ErrUnknownMode) {
			return nil, huma.Error400BadRequest("Unknown LED mode", res.Err)
		}
		return writeResponse(res), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "write-led-command",
		Method:      http.MethodPost,
		Path:        "/api/led/command",
		Summary:     "Write LED Command",
		Description: "Write a raw command to the driver. The response code is the byte count or a negative error code.",
		Tags:        []string{"led"},
		Errors:      []int{400, 401},
		Security:    withAuth(),
	}, func(_ context.Context, input *models.LEDCommandRequest) (*models.LEDWriteResponse, error) {
		res := s.options.LED.WriteCommand(led.SourceAPI, input.Body.Command)
		if errors.Is(res.Err, device.ErrInvalidArgument) {
			return nil, huma.Error400BadRequest("Command cannot be sent to the driver", res.Err)
		}
		return writeResponse(res), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-led-status",
		Method:      http.MethodGet,
		Path:        "/api/led/status",
		Summary:     "Get LED Status",
		Description: "Read the status line from the device. Never fails; check fallback.",
		Tags:        []string{"led"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(_ context.Context, _ *struct{}) (*models.LEDStatusResponse, error) {
		return &models.LEDStatusResponse{Body: statusData(s.options.LED.ReadState())}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-led-capabilities",
		Method:      http.MethodGet,
		Path:        "/api/led/capabilities",
		Summary:     "Get LED Capabilities",
		Description: "List the modes that can be applied",
		Tags:        []string{"led"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(_ context.Context, _ *struct{}) (*models.LEDCapabilitiesResponse, error) {
		modes := s.options.LED.Modes()
		names := make([]string, len(modes))
		for i, m := range modes {
			names[i] = string(m)
		}
		return &models.LEDCapabilitiesResponse{
			Body: models.LEDCapabilitiesData{
				Modes:  names,
				Device: s.options.DevicePath,
			},
		}, nil
	})

	s.logger.Info("LED routes registered")
}

func writeResponse(res led.Result) *models.LEDWriteResponse {
	body := models.LEDWriteData{
		Mode:    string(res.Mode),
		Command: res.Command,
		Written: res.Written,
		Code:    res.Code(),
	}
	if res.Err != nil {
		body.Error = res.Err.Error()
	}
	return &models.LEDWriteResponse{Body: body}
}

func statusData(snap led.Snapshot) models.LEDStatusData {
	return models.LEDStatusData{
		Raw:         snap.Raw,
		Mode:        snap.State.Mode,
		DisplayMode: led.DisplayMode(snap.State.Mode),
		Level:       snap.State.Level,
		DelayOn:     snap.State.DelayOn,
		DelayOff:    snap.State.DelayOff,
		Fallback:    snap.Fallback,
		ReadAt:      snap.ReadAt,
	}
}
