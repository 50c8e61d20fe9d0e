package repository

import (
	"context"
	"time"

	"github.com/resolvehq/complaints-backend/internal/models"
)

// ComplaintFilter narrows audit listings. Zero values mean no filter.
type ComplaintFilter struct {
	Decision   models.Decision
	Severity   models.Severity
	CustomerID string
	Limit      int
	Offset     int
}

type Complaints interface {
	Insert(ctx context.Context, c models.Complaint) error
	GetByComplaintID(ctx context.Context, complaintID string) (models.Complaint, error)
	List(ctx context.Context, f ComplaintFilter) ([]models.Complaint, int, error)
	// Export walks every row oldest-first so callers can stream CSV.
	Export(ctx context.Context, fn func(models.Complaint) error) error

	CustomerStats(ctx context.Context, customerID string, now time.Time) (models.CustomerStats, error)

	Stats(ctx context.Context, since time.Time) (models.DecisionStats, error)
	Timeseries(ctx context.Context, days int) ([]models.TimeseriesPoint, error)
	RootCauses(ctx context.Context, since time.Time) ([]models.RootCauseRow, error)
	TopCustomers(ctx context.Context, days, limit int) ([]models.TopCustomer, error)
}

type Feedback interface {
	Insert(ctx context.Context, f models.Feedback) (models.Feedback, error)
	ListAll(ctx context.Context) ([]models.Feedback, error)
}

type Customers interface {
	// RecordDecision upserts the running aggregates after each decision.
	RecordDecision(ctx context.Context, customerID string, decision models.Decision, fraudFlagged bool, orderValue float64, tier models.RiskTier) error
	Get(ctx context.Context, customerID string) (models.CustomerProfile, error)
}

type Staff interface {
	Create(ctx context.Context, u models.StaffUser) (models.StaffUser, error)
	GetByUsername(ctx context.Context, username string) (models.StaffUser, error)
	Count(ctx context.Context) (int, error)
}
