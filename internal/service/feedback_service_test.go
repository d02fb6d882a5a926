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

func TestSubmitFeedback(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	svc := NewFeedbackService(directory.NewMemoryStore(), dispatcher, zap.NewNop())

	feedback, err := svc.Submit(context.Background(), SubmitFeedbackInput{
		Kind:        "suggestion",
		Message:     "add mirrors at the loading dock corner",
		BadgeNumber: "qss001",
	})
	require.NoError(t, err)
	require.Equal(t, domain.FeedbackStatusPending, feedback.Status)
	require.Equal(t, "QSS001", feedback.BadgeNumber)
	require.Nil(t, feedback.RespondedAt)

	require.Len(t, dispatcher.published, 1)
	require.Equal(t, events.EventFeedbackSubmitted, dispatcher.published[0].Type)
}

func TestSubmitFeedbackValidation(t *testing.T) {
	svc := NewFeedbackService(directory.NewMemoryStore(), &recordingDispatcher{}, zap.NewNop())

	_, err := svc.Submit(context.Background(), SubmitFeedbackInput{Kind: "suggestion"})
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestRespondMarksFeedbackAnswered(t *testing.T) {
	svc := NewFeedbackService(directory.NewMemoryStore(), &recordingDispatcher{}, zap.NewNop())
	ctx := context.Background()

	feedback, err := svc.Submit(ctx, SubmitFeedbackInput{Kind: "complaint", Message: "broken handrail"})
	require.NoError(t, err)

	require.NoError(t, svc.Respond(ctx, feedback.ID, "maintenance scheduled"))

	answered, err := svc.List(ctx, domain.FeedbackStatusAnswered, "")
	require.NoError(t, err)
	require.Len(t, answered, 1)
	require.Equal(t, "maintenance scheduled", answered[0].Response)
	require.NotNil(t, answered[0].RespondedAt)

	pending, err := svc.List(ctx, domain.FeedbackStatusPending, "")
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestRespondToMissingFeedback(t *testing.T) {
	svc := NewFeedbackService(directory.NewMemoryStore(), &recordingDispatcher{}, zap.NewNop())

	err := svc.Respond(context.Background(), "missing", "noted")
	require.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
