package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/resolvehq/complaints-backend/internal/models"
	repo "github.com/resolvehq/complaints-backend/internal/repository"
)

type CustomerService struct {
	customers  repo.Customers
	complaints repo.Complaints
}

func NewCustomerService(customers repo.Customers, complaints repo.Complaints) *CustomerService {
	return &CustomerService{customers: customers, complaints: complaints}
}

// RiskTier grades a customer by volume and refund rate.
func RiskTier(totalComplaints int, refundRate float64) models.RiskTier {
	switch {
	case totalComplaints == 0:
		return models.TierNormal
	case refundRate > 0.5 && totalComplaints >= 5:
		return models.TierFlagged
	case refundRate > 0.3:
		return models.TierWatch
	case refundRate < 0.05 && totalComplaints >= 20:
		return models.TierVIP
	case refundRate < 0.1 && totalComplaints >= 10:
		return models.TierTrusted
	}
	return models.TierNormal
}

// Summary is the compact history block used during classification. Anonymous
// customers get an empty summary, there is nothing to look up.
func (s *CustomerService) Summary(ctx context.Context, customerID string) models.CustomerSummary {
	if customerID == "" || customerID == "anonymous" {
		return models.CustomerSummary{RiskTier: models.TierNormal}
	}
	stats, err := s.complaints.CustomerStats(ctx, customerID, time.Now().UTC())
	if err != nil {
		return models.CustomerSummary{RiskTier: models.TierNormal}
	}
	return models.CustomerSummary{
		TotalComplaints:  stats.TotalComplaints,
		RecentComplaints: stats.Complaints30d,
		RefundRate:       stats.RefundRate(),
		LifetimeValue:    float64(stats.TotalComplaints) * 25,
		RiskTier:         RiskTier(stats.TotalComplaints, stats.RefundRate()),
	}
}

// Detail is the full profile view: persisted aggregates plus the recent
// complaint rows.
type Detail struct {
	Profile    models.CustomerProfile `json:"profile"`
	Stats      models.CustomerStats   `json:"stats"`
	Complaints []models.Complaint     `json:"complaints"`
}

func (s *CustomerService) Detail(ctx context.Context, customerID string) (Detail, error) {
	var d Detail
	stats, err := s.complaints.CustomerStats(ctx, customerID, time.Now().UTC())
	if err != nil {
		return d, err
	}
	d.Stats = stats

	profile, err := s.customers.Get(ctx, customerID)
	switch {
	case err == nil:
		d.Profile = profile
	case errors.Is(err, pgx.ErrNoRows):
		d.Profile = models.CustomerProfile{CustomerID: customerID, RiskTier: models.TierNormal}
	default:
		return d, err
	}

	rows, _, err := s.complaints.List(ctx, repo.ComplaintFilter{CustomerID: customerID, Limit: 20})
	if err != nil {
		return d, err
	}
	d.Complaints = rows
	return d, nil
}

func (s *CustomerService) Top(ctx context.Context, days, limit int) ([]models.TopCustomer, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	return s.complaints.TopCustomers(ctx, days, limit)
}
