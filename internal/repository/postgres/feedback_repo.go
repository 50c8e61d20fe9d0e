package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/resolvehq/complaints-backend/internal/models"
)

type feedbackRepo struct{ pool *pgxpool.Pool }

func (r *feedbackRepo) Insert(ctx context.Context, f models.Feedback) (models.Feedback, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx, `
INSERT INTO feedback (id, complaint_id, original_decision, corrected_decision, reason, agent)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING created_at`,
		f.ID, f.ComplaintID, f.OriginalDecision, f.CorrectedDecision, f.Reason, f.Agent,
	).Scan(&f.CreatedAt)
	return f, err
}

func (r *feedbackRepo) ListAll(ctx context.Context) ([]models.Feedback, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, complaint_id, original_decision, corrected_decision, COALESCE(reason,''), agent, created_at
  FROM feedback ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Feedback
	for rows.Next() {
		var f models.Feedback
		if err := rows.Scan(&f.ID, &f.ComplaintID, &f.OriginalDecision, &f.CorrectedDecision, &f.Reason, &f.Agent, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
