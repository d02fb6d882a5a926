package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/portal-qssma/portal-service/internal/announce"
	"github.com/portal-qssma/portal-service/internal/directory"
	"github.com/portal-qssma/portal-service/internal/domain"
	"github.com/portal-qssma/portal-service/internal/events"
)

func TestInitialLoadProducesNoArrivalEvents(t *testing.T) {
	store := directory.NewMemoryStore()
	store.SeedDocument(directory.CollectionAnnouncements, "ann-1", map[string]any{
		"title": "old news", "body": "b", "active": true, "audience": domain.AudienceAll,
	}, time.Now().UTC())

	dispatcher := &recordingDispatcher{}
	synchronizer := announce.NewSynchronizer(store, zap.NewNop())
	notifications := NewNotificationService(dispatcher, synchronizer, "", zap.NewNop())
	defer notifications.Watch()()

	require.NoError(t, synchronizer.Start(context.Background(), "Safety"))
	defer synchronizer.Stop()

	require.Empty(t, dispatcher.published)
}

func TestIncrementalArrivalFiresOncePerAnnouncement(t *testing.T) {
	store := directory.NewMemoryStore()
	dispatcher := &recordingDispatcher{}
	synchronizer := announce.NewSynchronizer(store, zap.NewNop())
	notifications := NewNotificationService(dispatcher, synchronizer, "", zap.NewNop())
	defer notifications.Watch()()

	require.NoError(t, synchronizer.Start(context.Background(), "Safety"))
	defer synchronizer.Stop()

	published, err := synchronizer.Publish(context.Background(), domain.NewAnnouncement{
		Title: "evacuation drill", Body: "friday 10am",
	})
	require.NoError(t, err)

	require.Len(t, dispatcher.published, 1)
	event := dispatcher.published[0]
	require.Equal(t, events.EventAnnouncementArrived, event.Type)
	payload, ok := event.Payload.(events.AnnouncementArrivedPayload)
	require.True(t, ok)
	require.Equal(t, published.ID, payload.AnnouncementID)
	require.Equal(t, "evacuation drill", payload.Title)

	// A later unrelated snapshot must not replay the same announcement.
	require.NoError(t, synchronizer.Edit(context.Background(), published.ID, "evacuation drill", "moved to 11am"))
	require.Len(t, dispatcher.published, 1)
}

func TestReconnectDoesNotReplaySeenAnnouncements(t *testing.T) {
	store := directory.NewMemoryStore()
	store.SeedDocument(directory.CollectionAnnouncements, "ann-1", map[string]any{
		"title": "standing notice", "body": "b", "active": true, "audience": domain.AudienceAll,
	}, time.Now().UTC())

	dispatcher := &recordingDispatcher{}
	synchronizer := announce.NewSynchronizer(store, zap.NewNop())
	notifications := NewNotificationService(dispatcher, synchronizer, "", zap.NewNop())
	defer notifications.Watch()()

	require.NoError(t, synchronizer.Start(context.Background(), "Safety"))
	synchronizer.Stop()
	require.NoError(t, synchronizer.Start(context.Background(), "Safety"))
	defer synchronizer.Stop()

	require.Empty(t, dispatcher.published)
}
