package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
	repo "github.com/resolvehq/complaints-backend/internal/repository"
)

type Repositories struct {
	Complaints repo.Complaints
	Feedback   repo.Feedback
	Customers  repo.Customers
	Staff      repo.Staff
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Complaints: &complaintsRepo{pool},
		Feedback:   &feedbackRepo{pool},
		Customers:  &customersRepo{pool},
		Staff:      &staffRepo{pool},
	}
}
