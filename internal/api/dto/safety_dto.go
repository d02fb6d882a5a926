package dto

import (
	"time"

	"github.com/portal-qssma/portal-service/internal/domain"
	"github.com/portal-qssma/portal-service/internal/service"
)

// ReportIncidentRequest payload for incident reports.
type ReportIncidentRequest struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Location    string `json:"location"`
	BadgeNumber string `json:"badge_number"`
}

// ReportEmergencyRequest payload for emergency reports.
type ReportEmergencyRequest struct {
	Description string `json:"description"`
	Location    string `json:"location"`
	BadgeNumber string `json:"badge_number"`
}

// ResolveRequest payload for resolving incidents and emergencies.
type ResolveRequest struct {
	Resolution string `json:"resolution"`
}

// SubmitFeedbackRequest payload for collaborator feedback.
type SubmitFeedbackRequest struct {
	Kind        string `json:"kind"`
	Message     string `json:"message"`
	BadgeNumber string `json:"badge_number"`
}

// RespondFeedbackRequest payload for a manager response.
type RespondFeedbackRequest struct {
	Response string `json:"response"`
}

// IncidentResponse is a single incident as rendered to the UI.
type IncidentResponse struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Description string     `json:"description"`
	Location    string     `json:"location,omitempty"`
	BadgeNumber string     `json:"badge_number,omitempty"`
	Status      string     `json:"status"`
	Resolution  string     `json:"resolution,omitempty"`
	ReportedAt  time.Time  `json:"reported_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// FromIncident maps a domain incident into its response shape.
func FromIncident(i domain.Incident) IncidentResponse {
	return IncidentResponse{
		ID:          i.ID,
		Kind:        i.Kind,
		Description: i.Description,
		Location:    i.Location,
		BadgeNumber: i.BadgeNumber,
		Status:      i.Status,
		Resolution:  i.Resolution,
		ReportedAt:  i.ReportedAt,
		ResolvedAt:  i.ResolvedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// FromIncidents maps a slice preserving order.
func FromIncidents(items []domain.Incident) []IncidentResponse {
	out := make([]IncidentResponse, 0, len(items))
	for _, item := range items {
		out = append(out, FromIncident(item))
	}
	return out
}

// EmergencyResponse is a single emergency as rendered to the UI.
type EmergencyResponse struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Location    string     `json:"location,omitempty"`
	BadgeNumber string     `json:"badge_number,omitempty"`
	Status      string     `json:"status"`
	Resolution  string     `json:"resolution,omitempty"`
	ReportedAt  time.Time  `json:"reported_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// FromEmergency maps a domain emergency into its response shape.
func FromEmergency(e domain.Emergency) EmergencyResponse {
	return EmergencyResponse{
		ID:          e.ID,
		Description: e.Description,
		Location:    e.Location,
		BadgeNumber: e.BadgeNumber,
		Status:      e.Status,
		Resolution:  e.Resolution,
		ReportedAt:  e.ReportedAt,
		ResolvedAt:  e.ResolvedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// FromEmergencies maps a slice preserving order.
func FromEmergencies(items []domain.Emergency) []EmergencyResponse {
	out := make([]EmergencyResponse, 0, len(items))
	for _, item := range items {
		out = append(out, FromEmergency(item))
	}
	return out
}

// FeedbackResponse is a single feedback entry as rendered to the UI.
type FeedbackResponse struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Message     string     `json:"message"`
	BadgeNumber string     `json:"badge_number,omitempty"`
	Status      string     `json:"status"`
	Response    string     `json:"response,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// FromFeedback maps a domain feedback into its response shape.
func FromFeedback(f domain.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:          f.ID,
		Kind:        f.Kind,
		Message:     f.Message,
		BadgeNumber: f.BadgeNumber,
		Status:      f.Status,
		Response:    f.Response,
		SubmittedAt: f.SubmittedAt,
		RespondedAt: f.RespondedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// FromFeedbacks maps a slice preserving order.
func FromFeedbacks(items []domain.Feedback) []FeedbackResponse {
	out := make([]FeedbackResponse, 0, len(items))
	for _, item := range items {
		out = append(out, FromFeedback(item))
	}
	return out
}

// PeriodReportResponse is a period report as rendered to the UI.
type PeriodReportResponse struct {
	Period      string              `json:"period"`
	From        time.Time           `json:"from"`
	To          time.Time           `json:"to"`
	Incidents   []IncidentResponse  `json:"incidents"`
	Emergencies []EmergencyResponse `json:"emergencies"`
	Feedbacks   []FeedbackResponse  `json:"feedbacks"`
}

// FromReport maps a period report into its response shape.
func FromReport(r *service.Report) PeriodReportResponse {
	return PeriodReportResponse{
		Period:      string(r.Period),
		From:        r.From,
		To:          r.To,
		Incidents:   FromIncidents(r.Incidents),
		Emergencies: FromEmergencies(r.Emergencies),
		Feedbacks:   FromFeedbacks(r.Feedbacks),
	}
}

// DashboardResponse carries the manager dashboard counters.
type DashboardResponse struct {
	IncidentsThisMonth int            `json:"incidents_this_month"`
	IncidentsByKind    map[string]int `json:"incidents_by_kind"`
	ActiveEmergencies  int            `json:"active_emergencies"`
	PendingFeedbacks   int            `json:"pending_feedbacks"`
	TotalCollaborators int            `json:"total_collaborators"`
}

// FromDashboard maps dashboard stats into their response shape.
func FromDashboard(s *service.DashboardStats) DashboardResponse {
	return DashboardResponse{
		IncidentsThisMonth: s.IncidentsThisMonth,
		IncidentsByKind:    s.IncidentsByKind,
		ActiveEmergencies:  s.ActiveEmergencies,
		PendingFeedbacks:   s.PendingFeedbacks,
		TotalCollaborators: s.TotalCollaborators,
	}
}
