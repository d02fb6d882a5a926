package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/portal-qssma/portal-service/internal/announce"
	"github.com/portal-qssma/portal-service/internal/api/dto"
	"github.com/portal-qssma/portal-service/internal/domain"
	"github.com/portal-qssma/portal-service/internal/observability"
)

// AnnouncementsHandler exposes the live announcement feed and the manager
// write operations.
type AnnouncementsHandler struct {
	sync    *announce.Synchronizer
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAnnouncementsHandler constructs handler.
func NewAnnouncementsHandler(sync *announce.Synchronizer, metrics *observability.Metrics, logger *zap.Logger) *AnnouncementsHandler {
	return &AnnouncementsHandler{sync: sync, metrics: metrics, logger: logger}
}

// List handles GET /announcements: the current cached ordered collection.
func (h *AnnouncementsHandler) List(c *fiber.Ctx) error {
	items := h.sync.Items()
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"announcements": dto.FromAnnouncements(items),
			"count":         len(items),
			"state":         h.sync.State().String(),
		},
	})
}

// Stream handles GET /announcements/stream as server-sent events. The
// current collection is sent immediately, then every snapshot delivery
// until the client disconnects.
func (h *AnnouncementsHandler) Stream(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	updates := make(chan []domain.Announcement, 8)
	unsubscribe := h.sync.OnChange(func(items []domain.Announcement, _ announce.ChangeKind) {
		h.metrics.RecordSnapshot()
		select {
		case updates <- items:
		default:
			// Slow consumer; it will catch up on the next delivery.
		}
	})
	initial := h.sync.Items()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()

		if err := writeEvent(w, initial); err != nil {
			return
		}

		// The keepalive doubles as disconnect detection: a write to a gone
		// client fails and ends the stream.
		keepalive := time.NewTicker(15 * time.Second)
		defer keepalive.Stop()
		for {
			select {
			case items := <-updates:
				if err := writeEvent(w, items); err != nil {
					return
				}
			case <-keepalive.C:
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

func writeEvent(w *bufio.Writer, items []domain.Announcement) error {
	payload, err := json.Marshal(dto.FromAnnouncements(items))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

// Publish handles POST /announcements.
func (h *AnnouncementsHandler) Publish(c *fiber.Ctx) error {
	var req dto.PublishAnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	published, err := h.sync.Publish(c.UserContext(), domain.NewAnnouncement{
		Title:    req.Title,
		Body:     req.Body,
		Audience: req.Audience,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"announcement": dto.FromAnnouncement(*published)},
	})
}

// SetActive handles PATCH /announcements/:id/active.
func (h *AnnouncementsHandler) SetActive(c *fiber.Ctx) error {
	var req dto.SetActiveRequest
	if err := c.BodyParser(&req); err != nil || req.Active == nil {
		return fiber.NewError(http.StatusBadRequest, "active flag required")
	}

	if err := h.sync.SetActive(c.UserContext(), c.Params("id"), *req.Active); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Edit handles PUT /announcements/:id.
func (h *AnnouncementsHandler) Edit(c *fiber.Ctx) error {
	var req dto.EditAnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.sync.Edit(c.UserContext(), c.Params("id"), req.Title, req.Body); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Remove handles DELETE /announcements/:id.
func (h *AnnouncementsHandler) Remove(c *fiber.Ctx) error {
	if err := h.sync.Remove(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
