package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/taskrally/taskrally-backend/backend/utils"
	"github.com/taskrally/taskrally-backend/taskrally/database/repositories"
	"github.com/taskrally/taskrally-backend/taskrally/services"
)

// parseInt64 is a utility function to parse int64 from string
func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// SubmissionsAccept handles POST /api/submissions/:id/accept. The optional
// multipart field "media" carries reward media disclosed to the worker; it is
// stored before the transaction starts so a storage failure aborts cleanly.
func SubmissionsAccept(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		caller, ok := CurrentUser(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		submissionID, err := parseInt64(c.Params("id"))
		if err != nil {
			return utils.SendBadRequest(c, "Invalid submission ID", map[string]string{
				"id": c.Params("id"),
			})
		}

		// Optional reward media upload
		var inlineMediaRef string
		if file, err := c.FormFile("media"); err == nil {
			if err := utils.ValidateUpload(file.Filename, file.Size); err != nil {
				return utils.SendBadRequest(c, "Invalid media upload", map[string]string{
					"error": err.Error(),
				})
			}

			src, err := file.Open()
			if err != nil {
				return utils.SendBadRequest(c, "Unreadable media upload", map[string]string{
					"error": err.Error(),
				})
			}
			data, err := io.ReadAll(src)
			src.Close()
			if err != nil {
				return utils.SendBadRequest(c, "Unreadable media upload", map[string]string{
					"error": err.Error(),
				})
			}

			key := fmt.Sprintf("%s%s", uuid.NewString(), strings.ToLower(filepath.Ext(file.Filename)))
			inlineMediaRef, err = webApp.SpacesService.PutObject(ctx, key, data, utils.ContentTypeForExt(file.Filename))
			if err != nil {
				slog.Error("Reward media upload failed",
					slog.Int64("submission_id", submissionID),
					slog.Any("error", err))
				return utils.SendInternalServerError(c, "Failed to store media")
			}
		}

		submission, err := webApp.Coordinator.Accept(ctx, caller.ID, submissionID, inlineMediaRef)
		if err != nil {
			return sendDecisionError(c, submissionID, err)
		}

		slog.Info("Submission accepted via API",
			slog.Int64("submission_id", submission.ID),
			slog.Int64("caller_id", caller.ID))
		return utils.SendSuccess(c, submission, "Submission accepted")
	}
}

// SubmissionsRefuse handles POST /api/submissions/:id/refuse.
func SubmissionsRefuse(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := CurrentUser(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		submissionID, err := parseInt64(c.Params("id"))
		if err != nil {
			return utils.SendBadRequest(c, "Invalid submission ID", map[string]string{
				"id": c.Params("id"),
			})
		}

		submission, err := webApp.Coordinator.Refuse(c.Context(), caller.ID, submissionID)
		if err != nil {
			return sendDecisionError(c, submissionID, err)
		}

		return utils.SendSuccess(c, submission, "Submission refused")
	}
}

// sendDecisionError maps coordinator failures onto the API error taxonomy.
func sendDecisionError(c *fiber.Ctx, submissionID int64, err error) error {
	switch {
	case errors.Is(err, services.ErrNotMissionOwner):
		return utils.SendForbidden(c, "Only the mission owner may decide this submission")
	case repositories.IsNotFound(err):
		return utils.SendNotFound(c, err.Error())
	case repositories.IsConflict(err):
		return utils.SendConflict(c, err.Error(), nil)
	case repositories.IsValidation(err):
		return utils.SendBadRequest(c, err.Error(), nil)
	default:
		slog.Error("Submission decision failed",
			slog.Int64("submission_id", submissionID),
			slog.Any("error", err))
		return utils.SendInternalServerError(c, "Unexpected error")
	}
}
