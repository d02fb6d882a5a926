package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/portal-qssma/portal-service/internal/api/dto"
	"github.com/portal-qssma/portal-service/internal/service"
)

// SafetyHandler exposes incident, emergency, feedback and report endpoints.
type SafetyHandler struct {
	incidents *service.IncidentService
	feedback  *service.FeedbackService
	reports   *service.ReportService
}

// NewSafetyHandler constructs handler.
func NewSafetyHandler(incidents *service.IncidentService, feedback *service.FeedbackService, reports *service.ReportService) *SafetyHandler {
	return &SafetyHandler{incidents: incidents, feedback: feedback, reports: reports}
}

// ReportIncident handles POST /incidents.
func (h *SafetyHandler) ReportIncident(c *fiber.Ctx) error {
	var req dto.ReportIncidentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	incident, err := h.incidents.ReportIncident(c.UserContext(), service.ReportIncidentInput{
		Kind:        req.Kind,
		Description: req.Description,
		Location:    req.Location,
		BadgeNumber: req.BadgeNumber,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"incident": dto.FromIncident(*incident)}})
}

// GetIncident handles GET /incidents/:id.
func (h *SafetyHandler) GetIncident(c *fiber.Ctx) error {
	incident, err := h.incidents.GetIncident(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"incident": dto.FromIncident(*incident)}})
}

// ListIncidents handles GET /incidents.
func (h *SafetyHandler) ListIncidents(c *fiber.Ctx) error {
	incidents, err := h.incidents.ListIncidents(c.UserContext(), service.IncidentFilter{
		Status:      c.Query("status"),
		BadgeNumber: c.Query("badge_number"),
		Kind:        c.Query("kind"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"incidents": dto.FromIncidents(incidents), "count": len(incidents)}})
}

// ResolveIncident handles POST /incidents/:id/resolve.
func (h *SafetyHandler) ResolveIncident(c *fiber.Ctx) error {
	var req dto.ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.incidents.ResolveIncident(c.UserContext(), c.Params("id"), req.Resolution); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ReportEmergency handles POST /emergencies.
func (h *SafetyHandler) ReportEmergency(c *fiber.Ctx) error {
	var req dto.ReportEmergencyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	emergency, err := h.incidents.ReportEmergency(c.UserContext(), service.ReportEmergencyInput{
		Description: req.Description,
		Location:    req.Location,
		BadgeNumber: req.BadgeNumber,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"emergency": dto.FromEmergency(*emergency)}})
}

// ListActiveEmergencies handles GET /emergencies/active.
func (h *SafetyHandler) ListActiveEmergencies(c *fiber.Ctx) error {
	emergencies, err := h.incidents.ListActiveEmergencies(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"emergencies": dto.FromEmergencies(emergencies), "count": len(emergencies)}})
}

// ResolveEmergency handles POST /emergencies/:id/resolve.
func (h *SafetyHandler) ResolveEmergency(c *fiber.Ctx) error {
	var req dto.ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.incidents.ResolveEmergency(c.UserContext(), c.Params("id"), req.Resolution); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// SubmitFeedback handles POST /feedbacks.
func (h *SafetyHandler) SubmitFeedback(c *fiber.Ctx) error {
	var req dto.SubmitFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	feedback, err := h.feedback.Submit(c.UserContext(), service.SubmitFeedbackInput{
		Kind:        req.Kind,
		Message:     req.Message,
		BadgeNumber: req.BadgeNumber,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"feedback": dto.FromFeedback(*feedback)}})
}

// ListFeedbacks handles GET /feedbacks.
func (h *SafetyHandler) ListFeedbacks(c *fiber.Ctx) error {
	feedbacks, err := h.feedback.List(c.UserContext(), c.Query("status"), c.Query("kind"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"feedbacks": dto.FromFeedbacks(feedbacks), "count": len(feedbacks)}})
}

// RespondFeedback handles POST /feedbacks/:id/response.
func (h *SafetyHandler) RespondFeedback(c *fiber.Ctx) error {
	var req dto.RespondFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.feedback.Respond(c.UserContext(), c.Params("id"), req.Response); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Dashboard handles GET /reports/dashboard.
func (h *SafetyHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.reports.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"dashboard": dto.FromDashboard(stats)}})
}

// PeriodReport handles GET /reports/:period.
func (h *SafetyHandler) PeriodReport(c *fiber.Ctx) error {
	report, err := h.reports.PeriodReport(c.UserContext(), service.Period(c.Params("period")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"report": dto.FromReport(report)}})
}
