package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/portal-qssma/portal-service/internal/directory"
	"github.com/portal-qssma/portal-service/internal/domain"
	"github.com/portal-qssma/portal-service/internal/events"
	apperrors "github.com/portal-qssma/portal-service/pkg/util/errorutil"
)

// IncidentService records and resolves safety incidents and emergencies.
// Writes go through the directory store; reads are plain filtered queries.
type IncidentService struct {
	store      directory.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewIncidentService builds the service.
func NewIncidentService(store directory.Store, dispatcher events.Dispatcher, logger *zap.Logger) *IncidentService {
	return &IncidentService{store: store, dispatcher: dispatcher, logger: logger}
}

// ReportIncidentInput carries caller-supplied incident fields.
type ReportIncidentInput struct {
	Kind        string
	Description string
	Location    string
	BadgeNumber string
}

// IncidentFilter narrows incident listings. Empty fields are ignored.
type IncidentFilter struct {
	Status      string
	BadgeNumber string
	Kind        string
}

// ReportIncident validates and stores a new incident with status pending.
func (s *IncidentService) ReportIncident(ctx context.Context, input ReportIncidentInput) (*domain.Incident, error) {
	kind := strings.TrimSpace(input.Kind)
	description := strings.TrimSpace(input.Description)
	if kind == "" || description == "" {
		return nil, apperrors.NewValidationError("kind and description are required", nil)
	}

	fields := map[string]any{
		"kind":        kind,
		"description": description,
		"location":    strings.TrimSpace(input.Location),
		"badgeNumber": strings.ToUpper(strings.TrimSpace(input.BadgeNumber)),
		"status":      domain.IncidentStatusPending,
	}
	doc, err := s.insert(ctx, directory.CollectionIncidents, fields)
	if err != nil {
		return nil, err
	}

	incident := decodeIncident(*doc)
	s.publish(ctx, events.EventIncidentReported, events.IncidentReportedPayload{
		IncidentID:  incident.ID,
		Kind:        incident.Kind,
		BadgeNumber: incident.BadgeNumber,
	})
	return &incident, nil
}

// GetIncident fetches a single incident by id.
func (s *IncidentService) GetIncident(ctx context.Context, id string) (*domain.Incident, error) {
	doc, err := s.store.FindOne(ctx, directory.CollectionIncidents, id)
	if err != nil {
		if errors.Is(err, directory.ErrNoDocument) {
			return nil, apperrors.NewNotFound("incident", map[string]any{"id": id})
		}
		return nil, apperrors.NewConnectionError(err)
	}
	incident := decodeIncident(*doc)
	return &incident, nil
}

// ListIncidents returns incidents newest-first, optionally filtered.
func (s *IncidentService) ListIncidents(ctx context.Context, filter IncidentFilter) ([]domain.Incident, error) {
	var filters []directory.Filter
	if filter.Status != "" {
		filters = append(filters, directory.Eq("status", filter.Status))
	}
	if filter.BadgeNumber != "" {
		filters = append(filters, directory.Eq("badgeNumber", strings.ToUpper(filter.BadgeNumber)))
	}
	if filter.Kind != "" {
		filters = append(filters, directory.Eq("kind", filter.Kind))
	}

	docs, err := s.store.FindMany(ctx, directory.CollectionIncidents, filters,
		directory.OrderBy{Field: "createdAt", Desc: true})
	if err != nil {
		return nil, apperrors.NewConnectionError(err)
	}

	incidents := make([]domain.Incident, 0, len(docs))
	for _, doc := range docs {
		incidents = append(incidents, decodeIncident(doc))
	}
	return incidents, nil
}

// ResolveIncident marks an incident resolved with the given resolution text.
func (s *IncidentService) ResolveIncident(ctx context.Context, id, resolution string) error {
	resolution = strings.TrimSpace(resolution)
	if resolution == "" {
		return apperrors.NewValidationError("resolution is required", nil)
	}
	return s.update(ctx, directory.CollectionIncidents, "incident", id, map[string]any{
		"status":     domain.IncidentStatusResolved,
		"resolution": resolution,
		"resolvedAt": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReportEmergencyInput carries caller-supplied emergency fields.
type ReportEmergencyInput struct {
	Description string
	Location    string
	BadgeNumber string
}

// ReportEmergency stores a new emergency with status active.
func (s *IncidentService) ReportEmergency(ctx context.Context, input ReportEmergencyInput) (*domain.Emergency, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, apperrors.NewValidationError("description is required", nil)
	}

	fields := map[string]any{
		"description": description,
		"location":    strings.TrimSpace(input.Location),
		"badgeNumber": strings.ToUpper(strings.TrimSpace(input.BadgeNumber)),
		"status":      domain.EmergencyStatusActive,
	}
	doc, err := s.insert(ctx, directory.CollectionEmergencies, fields)
	if err != nil {
		return nil, err
	}

	emergency := decodeEmergency(*doc)
	s.publish(ctx, events.EventEmergencyReported, events.EmergencyReportedPayload{
		EmergencyID: emergency.ID,
		Location:    emergency.Location,
	})
	return &emergency, nil
}

// ListActiveEmergencies returns unresolved emergencies newest-first.
func (s *IncidentService) ListActiveEmergencies(ctx context.Context) ([]domain.Emergency, error) {
	docs, err := s.store.FindMany(ctx, directory.CollectionEmergencies,
		[]directory.Filter{directory.Eq("status", domain.EmergencyStatusActive)},
		directory.OrderBy{Field: "createdAt", Desc: true})
	if err != nil {
		return nil, apperrors.NewConnectionError(err)
	}

	emergencies := make([]domain.Emergency, 0, len(docs))
	for _, doc := range docs {
		emergencies = append(emergencies, decodeEmergency(doc))
	}
	return emergencies, nil
}

// ResolveEmergency marks an emergency resolved.
func (s *IncidentService) ResolveEmergency(ctx context.Context, id, resolution string) error {
	resolution = strings.TrimSpace(resolution)
	if resolution == "" {
		return apperrors.NewValidationError("resolution is required", nil)
	}
	return s.update(ctx, directory.CollectionEmergencies, "emergency", id, map[string]any{
		"status":     domain.EmergencyStatusResolved,
		"resolution": resolution,
		"resolvedAt": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *IncidentService) insert(ctx context.Context, collection string, fields map[string]any) (*directory.Document, error) {
	id, err := s.store.Insert(ctx, collection, fields)
	if err != nil {
		return nil, apperrors.NewConnectionError(err)
	}
	doc, err := s.store.FindOne(ctx, collection, id)
	if err != nil {
		return nil, apperrors.NewConnectionError(err)
	}
	return doc, nil
}

func (s *IncidentService) update(ctx context.Context, collection, resource, id string, fields map[string]any) error {
	if err := s.store.Update(ctx, collection, id, fields); err != nil {
		if errors.Is(err, directory.ErrNoDocument) {
			return apperrors.NewNotFound(resource, map[string]any{"id": id})
		}
		return apperrors.NewConnectionError(err)
	}
	return nil
}

func (s *IncidentService) publish(ctx context.Context, eventType events.EventType, payload any) {
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func decodeIncident(doc directory.Document) domain.Incident {
	return domain.Incident{
		ID:          doc.ID,
		Kind:        doc.String("kind"),
		Description: doc.String("description"),
		Location:    doc.String("location"),
		BadgeNumber: doc.String("badgeNumber"),
		Status:      doc.String("status"),
		Resolution:  doc.String("resolution"),
		ReportedAt:  doc.CreatedAt,
		ResolvedAt:  parseTimeField(doc, "resolvedAt"),
		UpdatedAt:   doc.UpdatedAt,
	}
}

func decodeEmergency(doc directory.Document) domain.Emergency {
	return domain.Emergency{
		ID:          doc.ID,
		Description: doc.String("description"),
		Location:    doc.String("location"),
		BadgeNumber: doc.String("badgeNumber"),
		Status:      doc.String("status"),
		Resolution:  doc.String("resolution"),
		ReportedAt:  doc.CreatedAt,
		ResolvedAt:  parseTimeField(doc, "resolvedAt"),
		UpdatedAt:   doc.UpdatedAt,
	}
}

func parseTimeField(doc directory.Document, field string) *time.Time {
	raw := doc.String(field)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}
