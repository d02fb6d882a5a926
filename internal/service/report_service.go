package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/portal-qssma/portal-service/internal/directory"
	"github.com/portal-qssma/portal-service/internal/domain"
	apperrors "github.com/portal-qssma/portal-service/pkg/util/errorutil"
)

// Period selects the reporting window.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Report aggregates safety records registered inside a period.
type Report struct {
	Period      Period
	From        time.Time
	To          time.Time
	Incidents   []domain.Incident
	Emergencies []domain.Emergency
	Feedbacks   []domain.Feedback
}

// DashboardStats summarizes the current month for the manager dashboard.
type DashboardStats struct {
	IncidentsThisMonth int
	IncidentsByKind    map[string]int
	ActiveEmergencies  int
	PendingFeedbacks   int
	TotalCollaborators int
}

// ReportService assembles period reports and dashboard statistics from the
// directory collections.
type ReportService struct {
	store  directory.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewReportService builds the service.
func NewReportService(store directory.Store, logger *zap.Logger) *ReportService {
	return &ReportService{store: store, logger: logger, now: time.Now}
}

// PeriodReport collects incidents, emergencies and feedback registered since
// the start of the period, newest-first. Unknown periods default to a month.
func (s *ReportService) PeriodReport(ctx context.Context, period Period) (*Report, error) {
	now := s.now()
	var from time.Time
	switch period {
	case PeriodToday:
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case PeriodWeek:
		from = now.AddDate(0, 0, -7)
	case PeriodMonth:
		from = now.AddDate(0, -1, 0)
	default:
		period = PeriodMonth
		from = now.AddDate(0, -1, 0)
	}

	since := []directory.Filter{directory.CreatedSince(from)}
	order := directory.OrderBy{Field: "createdAt", Desc: true}

	incidentDocs, err := s.store.FindMany(ctx, directory.CollectionIncidents, since, order)
	if err != nil {
		return nil, apperrors.NewConnectionError(err)
	}
	emergencyDocs, err := s.store.FindMany(ctx, directory.CollectionEmergencies, since, order)
	if err != nil {
		return nil, apperrors.NewConnectionError(err)
	}
	feedbackDocs, err := s.store.FindMany(ctx, directory.CollectionFeedbacks, since, order)
	if err != nil {
		return nil, apperrors.NewConnectionError(err)
	}

	report := &Report{Period: period, From: from, To: now}
	for _, doc := range incidentDocs {
		report.Incidents = append(report.Incidents, decodeIncident(doc))
	}
	for _, doc := range emergencyDocs {
		report.Emergencies = append(report.Emergencies, decodeEmergency(doc))
	}
	for _, doc := range feedbackDocs {
		report.Feedbacks = append(report.Feedbacks, decodeFeedback(doc))
	}
	return report, nil
}

// Dashboard computes the manager dashboard counters.
func (s *ReportService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	order := directory.OrderBy{Field: "createdAt", Desc: true}

	incidents, err := s.store.FindMany(ctx, directory.CollectionIncidents,
		[]directory.Filter{directory.CreatedSince(monthStart)}, order)
	if err != nil {
		return nil, apperrors.NewConnectionError(err)
	}
	emergencies, err := s.store.FindMany(ctx, directory.CollectionEmergencies,
		[]directory.Filter{directory.Eq("status", domain.EmergencyStatusActive)}, order)
	if err != nil {
		return nil, apperrors.NewConnectionError(err)
	}
	feedbacks, err := s.store.FindMany(ctx, directory.CollectionFeedbacks,
		[]directory.Filter{directory.Eq("status", domain.FeedbackStatusPending)}, order)
	if err != nil {
		return nil, apperrors.NewConnectionError(err)
	}
	collaborators, err := s.store.FindMany(ctx, directory.CollectionCollaborators, nil, order)
	if err != nil {
		return nil, apperrors.NewConnectionError(err)
	}

	byKind := make(map[string]int)
	for _, doc := range incidents {
		kind := doc.String("kind")
		if kind == "" {
			kind = "other"
		}
		byKind[kind]++
	}

	return &DashboardStats{
		IncidentsThisMonth: len(incidents),
		IncidentsByKind:    byKind,
		ActiveEmergencies:  len(emergencies),
		PendingFeedbacks:   len(feedbacks),
		TotalCollaborators: len(collaborators),
	}, nil
}
