package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/resolvehq/complaints-backend/internal/models"
	"github.com/resolvehq/complaints-backend/internal/repository"
)

type complaintsRepo struct{ pool *pgxpool.Pool }

const complaintCols = `id, complaint_id, order_id, customer_id, decision, confidence, source,
	rule_id, severity, categories, COALESCE(root_cause,''), COALESCE(sentiment,''),
	COALESCE(explanation,''), fraud_risk, fraud_score, sla_deadline, case_data, email_queued, created_at`

func (r *complaintsRepo) Insert(ctx context.Context, c models.Complaint) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO complaints (
  id, complaint_id, order_id, customer_id, decision, confidence, source,
  rule_id, severity, categories, root_cause, sentiment, explanation,
  fraud_risk, fraud_score, sla_deadline, case_data, email_queued, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		c.ID, c.ComplaintID, c.OrderID, c.CustomerID, c.Decision, c.Confidence, c.Source,
		c.RuleID, c.Severity, c.Categories, c.RootCause, c.Sentiment, c.Explanation,
		c.FraudRisk, c.FraudScore, c.SLADeadline, c.Case, c.EmailQueued, c.CreatedAt,
	)
	return err
}

func scanComplaint(row interface{ Scan(...any) error }) (models.Complaint, error) {
	var c models.Complaint
	err := row.Scan(&c.ID, &c.ComplaintID, &c.OrderID, &c.CustomerID, &c.Decision, &c.Confidence,
		&c.Source, &c.RuleID, &c.Severity, &c.Categories, &c.RootCause, &c.Sentiment,
		&c.Explanation, &c.FraudRisk, &c.FraudScore, &c.SLADeadline, &c.Case, &c.EmailQueued, &c.CreatedAt)
	return c, err
}

func (r *complaintsRepo) GetByComplaintID(ctx context.Context, complaintID string) (models.Complaint, error) {
	return scanComplaint(r.pool.QueryRow(ctx,
		`SELECT `+complaintCols+` FROM complaints WHERE complaint_id=$1`, complaintID))
}

func (r *complaintsRepo) List(ctx context.Context, f repository.ComplaintFilter) ([]models.Complaint, int, error) {
	where := ` WHERE ($1='' OR decision=$1) AND ($2='' OR severity=$2) AND ($3='' OR customer_id=$3)`
	args := []any{string(f.Decision), string(f.Severity), f.CustomerID}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM complaints`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+complaintCols+` FROM complaints`+where+` ORDER BY created_at DESC LIMIT $4 OFFSET $5`,
		append(args, limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *complaintsRepo) Export(ctx context.Context, fn func(models.Complaint) error) error {
	rows, err := r.pool.Query(ctx,
		`SELECT `+complaintCols+` FROM complaints ORDER BY created_at ASC`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *complaintsRepo) CustomerStats(ctx context.Context, customerID string, now time.Time) (models.CustomerStats, error) {
	var s models.CustomerStats
	err := r.pool.QueryRow(ctx, `
SELECT count(*),
       count(*) FILTER (WHERE decision='refund'),
       count(*) FILTER (WHERE decision='deny'),
       count(*) FILTER (WHERE decision='escalate'),
       count(*) FILTER (WHERE created_at > $2 - interval '30 days'),
       count(*) FILTER (WHERE created_at > $2 - interval '24 hours'),
       COALESCE(avg(confidence), 0),
       min(created_at),
       max(created_at)
  FROM complaints
 WHERE customer_id=$1`, customerID, now,
	).Scan(&s.TotalComplaints, &s.TotalRefunds, &s.TotalDenials, &s.TotalEscalated,
		&s.Complaints30d, &s.Complaints24h, &s.AvgConfidence, &s.FirstSeen, &s.LastSeen)
	return s, err
}

func (r *complaintsRepo) Stats(ctx context.Context, since time.Time) (models.DecisionStats, error) {
	st := models.DecisionStats{
		ByDecision: map[models.Decision]int{},
		BySeverity: map[models.Severity]int{},
		BySource:   map[models.Source]int{},
	}
	err := r.pool.QueryRow(ctx, `
SELECT count(*),
       COALESCE(avg(confidence), 0),
       count(*) FILTER (WHERE fraud_risk IN ('suspicious','high_risk')),
       count(*) FILTER (WHERE email_queued)
  FROM complaints WHERE created_at >= $1`, since,
	).Scan(&st.Total, &st.AvgConfidence, &st.FraudFlagged, &st.EmailsQueued)
	if err != nil {
		return st, err
	}

	rows, err := r.pool.Query(ctx, `
SELECT decision, severity, source, count(*)
  FROM complaints WHERE created_at >= $1
 GROUP BY decision, severity, source`, since)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var d models.Decision
		var sev models.Severity
		var src models.Source
		var n int
		if err := rows.Scan(&d, &sev, &src, &n); err != nil {
			return st, err
		}
		st.ByDecision[d] += n
		st.BySeverity[sev] += n
		st.BySource[src] += n
	}
	return st, rows.Err()
}

func (r *complaintsRepo) Timeseries(ctx context.Context, days int) ([]models.TimeseriesPoint, error) {
	rows, err := r.pool.Query(ctx, `
SELECT to_char(date_trunc('day', created_at), 'YYYY-MM-DD') AS day,
       count(*),
       count(*) FILTER (WHERE decision='refund'),
       count(*) FILTER (WHERE decision='deny'),
       count(*) FILTER (WHERE decision='escalate')
  FROM complaints
 WHERE created_at >= now() - make_interval(days => $1)
 GROUP BY day ORDER BY day`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TimeseriesPoint
	for rows.Next() {
		var p models.TimeseriesPoint
		if err := rows.Scan(&p.Day, &p.Total, &p.Refunds, &p.Denials, &p.Escalated); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *complaintsRepo) RootCauses(ctx context.Context, since time.Time) ([]models.RootCauseRow, error) {
	rows, err := r.pool.Query(ctx, `
SELECT COALESCE(NULLIF(root_cause, ''), 'unknown'), count(*)
  FROM complaints WHERE created_at >= $1
 GROUP BY 1 ORDER BY 2 DESC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RootCauseRow
	total := 0
	for rows.Next() {
		var row models.RootCauseRow
		if err := rows.Scan(&row.RootCause, &row.Count); err != nil {
			return nil, err
		}
		total += row.Count
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Share = float64(out[i].Count) / float64(total)
	}
	return out, nil
}

func (r *complaintsRepo) TopCustomers(ctx context.Context, days, limit int) ([]models.TopCustomer, error) {
	if days <= 0 {
		days = 30
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, `
SELECT c.customer_id,
       count(*),
       count(*) FILTER (WHERE c.decision='refund'),
       COALESCE(max(cu.fraud_flags), 0)
  FROM complaints c
  LEFT JOIN customers cu ON cu.customer_id = c.customer_id
 WHERE c.customer_id <> 'anonymous'
   AND c.created_at >= now() - make_interval(days => $1)
 GROUP BY c.customer_id
 ORDER BY count(*) DESC
 LIMIT $2`, days, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TopCustomer
	for rows.Next() {
		var t models.TopCustomer
		if err := rows.Scan(&t.CustomerID, &t.Complaints, &t.Refunds, &t.FraudFlags); err != nil {
			return nil, err
		}
		if t.Complaints > 0 {
			t.RefundRate = float64(t.Refunds) / float64(t.Complaints)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
