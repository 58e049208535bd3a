package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/taskrally/taskrally-backend/backend/config"
	webmodels "github.com/taskrally/taskrally-backend/backend/models"
	webservices "github.com/taskrally/taskrally-backend/backend/services"
	"github.com/taskrally/taskrally-backend/taskrally/database"
	coremodels "github.com/taskrally/taskrally-backend/taskrally/database/models"
	"github.com/taskrally/taskrally-backend/taskrally/services"
)

// WebApp represents the web application with all dependencies
type WebApp struct {
	Config         *config.WebAppConfig
	DB             *database.DB
	Repos          *webmodels.Repositories
	SpacesService  *services.SpacesService
	SessionService *webservices.SessionService
	Coordinator    *services.AcceptanceCoordinator
	Version        string
	Commit         string
}

// CurrentUser returns the authenticated user stored by the auth middleware.
func CurrentUser(c *fiber.Ctx) (*coremodels.User, bool) {
	user, ok := c.Locals("user").(*coremodels.User)
	return user, ok
}

// HealthCheck reports service liveness including datastore reachability.
func HealthCheck(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := "ok"
		dbStatus := "ok"
		if err := webApp.DB.Ping(c.Context()); err != nil {
			status = "degraded"
			dbStatus = err.Error()
		}

		return c.JSON(fiber.Map{
			"status":   status,
			"database": dbStatus,
			"version":  webApp.Version,
			"commit":   webApp.Commit,
		})
	}
}
