package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/resolvehq/complaints-backend/internal/models"
)

type customersRepo struct{ pool *pgxpool.Pool }

func (r *customersRepo) RecordDecision(ctx context.Context, customerID string, decision models.Decision, fraudFlagged bool, orderValue float64, tier models.RiskTier) error {
	refund := 0
	if decision == models.DecisionRefund {
		refund = 1
	}
	denial := 0
	if decision == models.DecisionDeny {
		denial = 1
	}
	flag := 0
	if fraudFlagged {
		flag = 1
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO customers (customer_id, total_complaints, total_refunds, total_denials, fraud_flags, lifetime_value, risk_tier, first_seen, last_seen)
VALUES ($1, 1, $2, $3, $4, $5, $6, now(), now())
ON CONFLICT (customer_id) DO UPDATE SET
  total_complaints = customers.total_complaints + 1,
  total_refunds    = customers.total_refunds + EXCLUDED.total_refunds,
  total_denials    = customers.total_denials + EXCLUDED.total_denials,
  fraud_flags      = customers.fraud_flags + EXCLUDED.fraud_flags,
  lifetime_value   = customers.lifetime_value + EXCLUDED.lifetime_value,
  risk_tier        = EXCLUDED.risk_tier,
  last_seen        = now()`,
		customerID, refund, denial, flag, orderValue, tier)
	return err
}

func (r *customersRepo) Get(ctx context.Context, customerID string) (models.CustomerProfile, error) {
	var p models.CustomerProfile
	err := r.pool.QueryRow(ctx, `
SELECT customer_id, COALESCE(email,''), total_complaints, total_refunds, total_denials,
       fraud_flags, lifetime_value, risk_tier, first_seen, last_seen
  FROM customers WHERE customer_id=$1`, customerID,
	).Scan(&p.CustomerID, &p.Email, &p.TotalComplaints, &p.TotalRefunds, &p.TotalDenials,
		&p.FraudFlags, &p.LifetimeValue, &p.RiskTier, &p.FirstSeen, &p.LastSeen)
	return p, err
}
