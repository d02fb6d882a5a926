package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/portal-qssma/portal-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Session        *handlers.SessionHandler
	Announcements  *handlers.AnnouncementsHandler
	Safety         *handlers.SafetyHandler
	RequireManager fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/session/collaborator", cfg.Session.LoginCollaborator)
	app.Post("/session/manager", cfg.Session.LoginManager)
	app.Get("/session", cfg.Session.Current)
	app.Delete("/session", cfg.Session.Logout)

	app.Get("/announcements", cfg.Announcements.List)
	app.Get("/announcements/stream", cfg.Announcements.Stream)

	managed := app.Group("", cfg.RequireManager)
	managed.Post("/announcements", cfg.Announcements.Publish)
	managed.Patch("/announcements/:id/active", cfg.Announcements.SetActive)
	managed.Put("/announcements/:id", cfg.Announcements.Edit)
	managed.Delete("/announcements/:id", cfg.Announcements.Remove)

	app.Post("/incidents", cfg.Safety.ReportIncident)
	managed.Get("/incidents", cfg.Safety.ListIncidents)
	app.Get("/incidents/:id", cfg.Safety.GetIncident)
	managed.Post("/incidents/:id/resolve", cfg.Safety.ResolveIncident)

	app.Post("/emergencies", cfg.Safety.ReportEmergency)
	app.Get("/emergencies/active", cfg.Safety.ListActiveEmergencies)
	managed.Post("/emergencies/:id/resolve", cfg.Safety.ResolveEmergency)

	app.Post("/feedbacks", cfg.Safety.SubmitFeedback)
	managed.Get("/feedbacks", cfg.Safety.ListFeedbacks)
	managed.Post("/feedbacks/:id/response", cfg.Safety.RespondFeedback)

	managed.Get("/reports/dashboard", cfg.Safety.Dashboard)
	managed.Get("/reports/:period", cfg.Safety.PeriodReport)
}
