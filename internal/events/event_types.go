package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAnnouncementArrived EventType = "announcement_arrived"
	EventIncidentReported    EventType = "incident_reported"
	EventEmergencyReported   EventType = "emergency_reported"
	EventFeedbackSubmitted   EventType = "feedback_submitted"
)

// Event represents a domain event emitted by the portal core.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AnnouncementArrivedPayload payload. Emitted only for incremental snapshot
// updates, never for the initial load.
type AnnouncementArrivedPayload struct {
	AnnouncementID string `json:"announcement_id"`
	Title          string `json:"title"`
	Audience       string `json:"audience"`
}

// IncidentReportedPayload payload.
type IncidentReportedPayload struct {
	IncidentID  string `json:"incident_id"`
	Kind        string `json:"kind"`
	BadgeNumber string `json:"badge_number,omitempty"`
}

// EmergencyReportedPayload payload.
type EmergencyReportedPayload struct {
	EmergencyID string `json:"emergency_id"`
	Location    string `json:"location,omitempty"`
}

// FeedbackSubmittedPayload payload.
type FeedbackSubmittedPayload struct {
	FeedbackID string `json:"feedback_id"`
	Kind       string `json:"kind"`
}
