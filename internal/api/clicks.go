package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/ledbridge/internal/api/models"
)

func (s *Server) registerClickRoutes() {
	if s.options.Clicks == nil {
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "get-physical-clicks",
		Method:      http.MethodGet,
		Path:        "/api/clicks",
		Summary:     "Get Physical Clicks",
		Description: "Last click count read from the coordinator",
		Tags:        []string{"led"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(_ context.Context, _ *struct{}) (*models.ClicksResponse, error) {
		return &models.ClicksResponse{
			Body: models.ClicksData{Count: s.options.Clicks.Count()},
		}, nil
	})
}
