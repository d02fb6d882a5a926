package domain

import "time"

// AudienceAll marks an announcement visible to every department.
const AudienceAll = "All"

// Announcement is a portal-wide notice published by a manager. Visibility is
// governed by the Active flag; toggling it never deletes the record.
type Announcement struct {
	ID        string
	Title     string
	Body      string
	Active    bool
	Audience  string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// NewAnnouncement carries the caller-supplied fields for a publish call.
// Audience defaults to AudienceAll when empty.
type NewAnnouncement struct {
	Title    string
	Body     string
	Audience string
}

// Less orders announcements newest-first; identifier comparison breaks
// timestamp ties so the rendered order is total and never depends on
// delivery order.
func (a Announcement) Less(other Announcement) bool {
	if !a.CreatedAt.Equal(other.CreatedAt) {
		return a.CreatedAt.After(other.CreatedAt)
	}
	return a.ID < other.ID
}
