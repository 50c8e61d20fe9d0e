package services

import (
	"context"
	"time"

	"github.com/resolvehq/complaints-backend/internal/models"
	repo "github.com/resolvehq/complaints-backend/internal/repository"
)

type AnalyticsService struct {
	complaints repo.Complaints
}

func NewAnalyticsService(complaints repo.Complaints) *AnalyticsService {
	return &AnalyticsService{complaints: complaints}
}

// Overview is the dashboard headline block plus the daily trend.
type Overview struct {
	models.DecisionStats
	Days  int                      `json:"days"`
	Trend []models.TimeseriesPoint `json:"trend"`
}

func (s *AnalyticsService) Overview(ctx context.Context, days int) (Overview, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	stats, err := s.complaints.Stats(ctx, since)
	if err != nil {
		return Overview{}, err
	}
	trend, err := s.complaints.Timeseries(ctx, days)
	if err != nil {
		return Overview{}, err
	}
	return Overview{DecisionStats: stats, Days: days, Trend: trend}, nil
}

func (s *AnalyticsService) RootCauses(ctx context.Context, days int) ([]models.RootCauseRow, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	return s.complaints.RootCauses(ctx, time.Now().UTC().AddDate(0, 0, -days))
}

func (s *AnalyticsService) Timeseries(ctx context.Context, days int) ([]models.TimeseriesPoint, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	return s.complaints.Timeseries(ctx, days)
}
