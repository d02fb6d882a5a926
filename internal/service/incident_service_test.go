package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/portal-qssma/portal-service/internal/directory"
	"github.com/portal-qssma/portal-service/internal/domain"
	"github.com/portal-qssma/portal-service/internal/events"
	apperrors "github.com/portal-qssma/portal-service/pkg/util/errorutil"
)

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func TestReportIncident(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	svc := NewIncidentService(directory.NewMemoryStore(), dispatcher, zap.NewNop())

	incident, err := svc.ReportIncident(context.Background(), ReportIncidentInput{
		Kind:        " fall ",
		Description: "slipped on wet floor",
		Location:    "warehouse B",
		BadgeNumber: "qss001",
	})
	require.NoError(t, err)
	require.NotEmpty(t, incident.ID)
	require.Equal(t, "fall", incident.Kind)
	require.Equal(t, "QSS001", incident.BadgeNumber)
	require.Equal(t, domain.IncidentStatusPending, incident.Status)
	require.False(t, incident.ReportedAt.IsZero())
	require.Nil(t, incident.ResolvedAt)

	require.Len(t, dispatcher.published, 1)
	require.Equal(t, events.EventIncidentReported, dispatcher.published[0].Type)
}

func TestReportIncidentRequiresKindAndDescription(t *testing.T) {
	svc := NewIncidentService(directory.NewMemoryStore(), &recordingDispatcher{}, zap.NewNop())

	_, err := svc.ReportIncident(context.Background(), ReportIncidentInput{Kind: "fall"})
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	_, err = svc.ReportIncident(context.Background(), ReportIncidentInput{Description: "x"})
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestResolveIncidentLifecycle(t *testing.T) {
	store := directory.NewMemoryStore()
	svc := NewIncidentService(store, &recordingDispatcher{}, zap.NewNop())

	incident, err := svc.ReportIncident(context.Background(), ReportIncidentInput{
		Kind:        "near-miss",
		Description: "forklift reversing without spotter",
	})
	require.NoError(t, err)

	require.NoError(t, svc.ResolveIncident(context.Background(), incident.ID, "spotter assigned"))

	resolved, err := svc.GetIncident(context.Background(), incident.ID)
	require.NoError(t, err)
	require.Equal(t, domain.IncidentStatusResolved, resolved.Status)
	require.Equal(t, "spotter assigned", resolved.Resolution)
	require.NotNil(t, resolved.ResolvedAt)
}

func TestResolveIncidentErrors(t *testing.T) {
	svc := NewIncidentService(directory.NewMemoryStore(), &recordingDispatcher{}, zap.NewNop())

	err := svc.ResolveIncident(context.Background(), "missing", "done")
	require.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	err = svc.ResolveIncident(context.Background(), "missing", "  ")
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestListIncidentsFilters(t *testing.T) {
	store := directory.NewMemoryStore()
	svc := NewIncidentService(store, &recordingDispatcher{}, zap.NewNop())
	ctx := context.Background()

	first, err := svc.ReportIncident(ctx, ReportIncidentInput{Kind: "fall", Description: "a", BadgeNumber: "QSS001"})
	require.NoError(t, err)
	_, err = svc.ReportIncident(ctx, ReportIncidentInput{Kind: "burn", Description: "b", BadgeNumber: "QSS002"})
	require.NoError(t, err)
	require.NoError(t, svc.ResolveIncident(ctx, first.ID, "handled"))

	pending, err := svc.ListIncidents(ctx, IncidentFilter{Status: domain.IncidentStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "burn", pending[0].Kind)

	byBadge, err := svc.ListIncidents(ctx, IncidentFilter{BadgeNumber: "qss001"})
	require.NoError(t, err)
	require.Len(t, byBadge, 1)
	require.Equal(t, first.ID, byBadge[0].ID)

	all, err := svc.ListIncidents(ctx, IncidentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestEmergencyLifecycle(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	svc := NewIncidentService(directory.NewMemoryStore(), dispatcher, zap.NewNop())
	ctx := context.Background()

	emergency, err := svc.ReportEmergency(ctx, ReportEmergencyInput{
		Description: "chemical spill",
		Location:    "lab 2",
	})
	require.NoError(t, err)
	require.Equal(t, domain.EmergencyStatusActive, emergency.Status)
	require.Len(t, dispatcher.published, 1)
	require.Equal(t, events.EventEmergencyReported, dispatcher.published[0].Type)

	active, err := svc.ListActiveEmergencies(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)

	require.NoError(t, svc.ResolveEmergency(ctx, emergency.ID, "area evacuated and cleaned"))

	active, err = svc.ListActiveEmergencies(ctx)
	require.NoError(t, err)
	require.Empty(t, active)
}
