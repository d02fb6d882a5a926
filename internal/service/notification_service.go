package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/portal-qssma/portal-service/internal/announce"
	"github.com/portal-qssma/portal-service/internal/domain"
	"github.com/portal-qssma/portal-service/internal/events"
)

// NotificationService turns synchronizer changes into arrival events and
// fans events out to the configured sinks. Arrival events fire only for
// incremental updates that introduce ids not seen before — never for the
// initial load, so a reconnect does not replay old announcements.
type NotificationService struct {
	dispatcher events.Dispatcher
	sync       *announce.Synchronizer
	logger     *zap.Logger
	webhookURL string
	client     *http.Client

	mu   sync.Mutex
	seen map[string]bool
}

// NewNotificationService builds the service.
func NewNotificationService(dispatcher events.Dispatcher, sync *announce.Synchronizer, webhookURL string, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		sync:       sync,
		logger:     logger,
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		seen:       make(map[string]bool),
	}
}

// Watch registers the change listener on the synchronizer and returns the
// unsubscribe function.
func (s *NotificationService) Watch() func() {
	return s.sync.OnChange(func(items []domain.Announcement, kind announce.ChangeKind) {
		s.handleChange(items, kind)
	})
}

func (s *NotificationService) handleChange(items []domain.Announcement, kind announce.ChangeKind) {
	s.mu.Lock()
	var arrived []domain.Announcement
	if kind == announce.ChangeInitial {
		s.seen = make(map[string]bool, len(items))
		for _, item := range items {
			s.seen[item.ID] = true
		}
	} else {
		for _, item := range items {
			if !s.seen[item.ID] {
				s.seen[item.ID] = true
				arrived = append(arrived, item)
			}
		}
	}
	s.mu.Unlock()

	for _, item := range arrived {
		_ = s.dispatcher.Publish(context.Background(), events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventAnnouncementArrived,
			Timestamp: time.Now(),
			Payload: events.AnnouncementArrivedPayload{
				AnnouncementID: item.ID,
				Title:          item.Title,
				Audience:       item.Audience,
			},
		})
	}
}

// RegisterHandlers attaches the notification sinks to the dispatcher.
func (s *NotificationService) RegisterHandlers() {
	s.dispatcher.Subscribe(events.EventAnnouncementArrived, s.notify)
	s.dispatcher.Subscribe(events.EventIncidentReported, s.notify)
	s.dispatcher.Subscribe(events.EventEmergencyReported, s.notifyUrgent)
	s.dispatcher.Subscribe(events.EventFeedbackSubmitted, s.notify)
}

func (s *NotificationService) notify(ctx context.Context, event events.Event) error {
	s.logger.Info("notification",
		zap.String("event_type", string(event.Type)),
		zap.Any("payload", event.Payload))
	return s.postWebhook(ctx, event)
}

func (s *NotificationService) notifyUrgent(ctx context.Context, event events.Event) error {
	s.logger.Warn("urgent notification",
		zap.String("event_type", string(event.Type)),
		zap.Any("payload", event.Payload))
	return s.postWebhook(ctx, event)
}

func (s *NotificationService) postWebhook(ctx context.Context, event events.Event) error {
	if s.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}
