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

// FeedbackService collects collaborator feedback and manager responses.
type FeedbackService struct {
	store      directory.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewFeedbackService builds the service.
func NewFeedbackService(store directory.Store, dispatcher events.Dispatcher, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{store: store, dispatcher: dispatcher, logger: logger}
}

// SubmitFeedbackInput carries caller-supplied feedback fields.
type SubmitFeedbackInput struct {
	Kind        string
	Message     string
	BadgeNumber string
}

// Submit validates and stores new feedback with status pending.
func (s *FeedbackService) Submit(ctx context.Context, input SubmitFeedbackInput) (*domain.Feedback, error) {
	kind := strings.TrimSpace(input.Kind)
	message := strings.TrimSpace(input.Message)
	if kind == "" || message == "" {
		return nil, apperrors.NewValidationError("kind and message are required", nil)
	}

	fields := map[string]any{
		"kind":        kind,
		"message":     message,
		"badgeNumber": strings.ToUpper(strings.TrimSpace(input.BadgeNumber)),
		"status":      domain.FeedbackStatusPending,
	}
	id, err := s.store.Insert(ctx, directory.CollectionFeedbacks, fields)
	if err != nil {
		return nil, apperrors.NewConnectionError(err)
	}
	doc, err := s.store.FindOne(ctx, directory.CollectionFeedbacks, id)
	if err != nil {
		return nil, apperrors.NewConnectionError(err)
	}

	feedback := decodeFeedback(*doc)
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventFeedbackSubmitted,
		Timestamp: time.Now(),
		Payload:   events.FeedbackSubmittedPayload{FeedbackID: feedback.ID, Kind: feedback.Kind},
	})
	return &feedback, nil
}

// List returns feedback newest-first, optionally filtered by status or kind.
func (s *FeedbackService) List(ctx context.Context, status, kind string) ([]domain.Feedback, error) {
	var filters []directory.Filter
	if status != "" {
		filters = append(filters, directory.Eq("status", status))
	}
	if kind != "" {
		filters = append(filters, directory.Eq("kind", kind))
	}

	docs, err := s.store.FindMany(ctx, directory.CollectionFeedbacks, filters,
		directory.OrderBy{Field: "createdAt", Desc: true})
	if err != nil {
		return nil, apperrors.NewConnectionError(err)
	}

	feedbacks := make([]domain.Feedback, 0, len(docs))
	for _, doc := range docs {
		feedbacks = append(feedbacks, decodeFeedback(doc))
	}
	return feedbacks, nil
}

// Respond records a manager response and marks the feedback answered.
func (s *FeedbackService) Respond(ctx context.Context, id, response string) error {
	response = strings.TrimSpace(response)
	if response == "" {
		return apperrors.NewValidationError("response is required", nil)
	}

	err := s.store.Update(ctx, directory.CollectionFeedbacks, id, map[string]any{
		"status":      domain.FeedbackStatusAnswered,
		"response":    response,
		"respondedAt": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		if errors.Is(err, directory.ErrNoDocument) {
			return apperrors.NewNotFound("feedback", map[string]any{"id": id})
		}
		return apperrors.NewConnectionError(err)
	}
	return nil
}

func decodeFeedback(doc directory.Document) domain.Feedback {
	return domain.Feedback{
		ID:          doc.ID,
		Kind:        doc.String("kind"),
		Message:     doc.String("message"),
		BadgeNumber: doc.String("badgeNumber"),
		Status:      doc.String("status"),
		Response:    doc.String("response"),
		SubmittedAt: doc.CreatedAt,
		RespondedAt: parseTimeField(doc, "respondedAt"),
		UpdatedAt:   doc.UpdatedAt,
	}
}
