package services

import (
	"context"
	"log/slog"

	"github.com/resolvehq/complaints-backend/internal/models"
	repo "github.com/resolvehq/complaints-backend/internal/repository"
)

type FeedbackService struct {
	feedback repo.Feedback
	log      *slog.Logger
}

func NewFeedbackService(feedback repo.Feedback, log *slog.Logger) *FeedbackService {
	return &FeedbackService{feedback: feedback, log: log}
}

// Submit records an agent correction. These rows feed the next retraining run.
func (s *FeedbackService) Submit(ctx context.Context, f models.Feedback) (models.Feedback, error) {
	if err := f.Validate(); err != nil {
		return models.Feedback{}, err
	}
	if f.Agent == "" {
		f.Agent = "unknown"
	}
	saved, err := s.feedback.Insert(ctx, f)
	if err != nil {
		return models.Feedback{}, err
	}
	s.log.Info("feedback recorded",
		"complaint", saved.ComplaintID,
		"from", saved.OriginalDecision,
		"to", saved.CorrectedDecision,
		"agent", saved.Agent)
	return saved, nil
}

func (s *FeedbackService) ListAll(ctx context.Context) ([]models.Feedback, error) {
	return s.feedback.ListAll(ctx)
}
