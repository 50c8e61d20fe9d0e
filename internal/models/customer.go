package models

import "time"

type RiskTier string

const (
	TierVIP     RiskTier = "vip"
	TierTrusted RiskTier = "trusted"
	TierNormal  RiskTier = "normal"
	TierWatch   RiskTier = "watch"
	TierFlagged RiskTier = "flagged"
)

// CustomerProfile is the persisted per-customer aggregate row.
type CustomerProfile struct {
	CustomerID      string     `json:"customer_id"`
	Email           string     `json:"email,omitempty"`
	TotalComplaints int        `json:"total_complaints"`
	TotalRefunds    int        `json:"total_refunds"`
	TotalDenials    int        `json:"total_denials"`
	FraudFlags      int        `json:"fraud_flags"`
	LifetimeValue   float64    `json:"lifetime_value"`
	RiskTier        RiskTier   `json:"risk_tier"`
	FirstSeen       *time.Time `json:"first_seen,omitempty"`
	LastSeen        *time.Time `json:"last_seen,omitempty"`
}

// CustomerStats is computed from the complaints table at read time.
type CustomerStats struct {
	TotalComplaints int        `json:"total_complaints"`
	TotalRefunds    int        `json:"total_refunds"`
	TotalDenials    int        `json:"total_denials"`
	TotalEscalated  int        `json:"total_escalated"`
	Complaints30d   int        `json:"complaints_30d"`
	Complaints24h   int        `json:"complaints_24h"`
	AvgConfidence   float64    `json:"avg_confidence"`
	FirstSeen       *time.Time `json:"first_seen,omitempty"`
	LastSeen        *time.Time `json:"last_seen,omitempty"`
}

// RefundRate is refunds over total, 0 when the customer has no history.
func (s CustomerStats) RefundRate() float64 {
	if s.TotalComplaints == 0 {
		return 0
	}
	return float64(s.TotalRefunds) / float64(s.TotalComplaints)
}

// AccountAgeDays measures from the first recorded complaint.
func (s CustomerStats) AccountAgeDays(now time.Time) int {
	if s.FirstSeen == nil {
		return 0
	}
	return int(now.Sub(*s.FirstSeen).Hours() / 24)
}

// CustomerSummary is the compact history block attached to decide responses.
type CustomerSummary struct {
	TotalComplaints  int      `json:"total_complaints"`
	RecentComplaints int      `json:"recent_complaints"`
	RefundRate       float64  `json:"refund_rate"`
	LifetimeValue    float64  `json:"lifetime_value"`
	RiskTier         RiskTier `json:"risk_tier"`
}

// TopCustomer is one row of the most-complaining customers report.
type TopCustomer struct {
	CustomerID string  `json:"customer_id"`
	Complaints int     `json:"complaints"`
	Refunds    int     `json:"refunds"`
	RefundRate float64 `json:"refund_rate"`
	FraudFlags int     `json:"fraud_flags"`
}
