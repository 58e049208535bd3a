package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/taskrally/taskrally-backend/taskrally/database/repositories"
	"github.com/taskrally/taskrally-backend/taskrally/services"
)

func TestSendDecisionErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "not found maps to 404",
			err:        &repositories.NotFoundError{Entity: "submission", ID: 1},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "conflict maps to 409",
			err:        &repositories.ConflictError{Entity: "submission", Reason: "already decided"},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "forbidden maps to 403",
			err:        services.ErrNotMissionOwner,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "validation maps to 400",
			err:        &repositories.ValidationError{Field: "media", Message: "bad extension"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "anything else maps to 500",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Post("/probe", func(c *fiber.Ctx) error {
				return sendDecisionError(c, 1, tt.err)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/probe", nil))
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}
