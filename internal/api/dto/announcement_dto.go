package dto

import (
	"time"

	"github.com/portal-qssma/portal-service/internal/domain"
)

// PublishAnnouncementRequest payload for new announcements.
type PublishAnnouncementRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Audience string `json:"audience"`
}

// EditAnnouncementRequest payload for title/body updates.
type EditAnnouncementRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// SetActiveRequest payload for visibility toggles.
type SetActiveRequest struct {
	Active *bool `json:"active"`
}

// AnnouncementResponse is a single announcement as rendered to the UI.
type AnnouncementResponse struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Active    bool       `json:"active"`
	Audience  string     `json:"audience"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// FromAnnouncement maps a domain announcement into its response shape.
func FromAnnouncement(a domain.Announcement) AnnouncementResponse {
	return AnnouncementResponse{
		ID:        a.ID,
		Title:     a.Title,
		Body:      a.Body,
		Active:    a.Active,
		Audience:  a.Audience,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// FromAnnouncements maps a slice preserving order.
func FromAnnouncements(items []domain.Announcement) []AnnouncementResponse {
	out := make([]AnnouncementResponse, 0, len(items))
	for _, item := range items {
		out = append(out, FromAnnouncement(item))
	}
	return out
}
