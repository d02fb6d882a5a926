package domain

import "time"

// Lifecycle statuses for safety records.
const (
	IncidentStatusPending  = "pending"
	IncidentStatusResolved = "resolved"

	EmergencyStatusActive   = "active"
	EmergencyStatusResolved = "resolved"

	FeedbackStatusPending  = "pending"
	FeedbackStatusAnswered = "answered"
)

// Incident is a workplace-safety occurrence reported by a collaborator.
type Incident struct {
	ID          string
	Kind        string
	Description string
	Location    string
	BadgeNumber string
	Status      string
	Resolution  string
	ReportedAt  time.Time
	ResolvedAt  *time.Time
	UpdatedAt   *time.Time
}

// Emergency is an active safety emergency requiring immediate attention.
type Emergency struct {
	ID          string
	Description string
	Location    string
	BadgeNumber string
	Status      string
	Resolution  string
	ReportedAt  time.Time
	ResolvedAt  *time.Time
	UpdatedAt   *time.Time
}

// Feedback is a collaborator suggestion or complaint awaiting a manager
// response.
type Feedback struct {
	ID          string
	Kind        string
	Message     string
	BadgeNumber string
	Status      string
	Response    string
	SubmittedAt time.Time
	RespondedAt *time.Time
	UpdatedAt   *time.Time
}
