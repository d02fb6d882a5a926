package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/portal-qssma/portal-service/internal/api/dto"
	"github.com/portal-qssma/portal-service/internal/observability"
	"github.com/portal-qssma/portal-service/internal/session"
	apperrors "github.com/portal-qssma/portal-service/pkg/util/errorutil"
)

// SessionHandler exposes the resident-session lifecycle.
type SessionHandler struct {
	session *session.Session
	metrics *observability.Metrics
}

// NewSessionHandler constructs handler.
func NewSessionHandler(s *session.Session, metrics *observability.Metrics) *SessionHandler {
	return &SessionHandler{session: s, metrics: metrics}
}

// LoginCollaborator handles POST /session/collaborator.
func (h *SessionHandler) LoginCollaborator(c *fiber.Ctx) error {
	var req dto.CollaboratorLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	profile, err := h.session.LoginCollaborator(c.UserContext(), req.BadgeNumber)
	h.metrics.RecordLogin("collaborator", err == nil)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"profile": dto.FromProfile(profile)},
	})
}

// LoginManager handles POST /session/manager.
func (h *SessionHandler) LoginManager(c *fiber.Ctx) error {
	var req dto.ManagerLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	profile, err := h.session.LoginManager(c.UserContext(), req.Email, req.Password)
	h.metrics.RecordLogin("manager", err == nil)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"profile": dto.FromProfile(profile)},
	})
}

// Current handles GET /session.
func (h *SessionHandler) Current(c *fiber.Ctx) error {
	profile := h.session.Current()
	if profile == nil {
		return apperrors.NewNotFound("session", nil)
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"profile": dto.FromProfile(profile)},
	})
}

// Logout handles DELETE /session.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	h.session.Logout(c.UserContext())
	return c.SendStatus(http.StatusNoContent)
}
