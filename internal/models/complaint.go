package models

import "time"

type Decision string

const (
	DecisionRefund   Decision = "refund"
	DecisionDeny     Decision = "deny"
	DecisionEscalate Decision = "escalate"
)

type Source string

const (
	SourcePolicy Source = "policy"
	SourceML     Source = "ml"
	SourceSystem Source = "system"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Complaint is one audited decision record.
type Complaint struct {
	ID          string    `json:"id"`
	ComplaintID string    `json:"complaint_id"`
	OrderID     string    `json:"order_id"`
	CustomerID  string    `json:"customer_id"`
	Decision    Decision  `json:"decision"`
	Confidence  float64   `json:"confidence"`
	Source      Source    `json:"source"`
	RuleID      *string   `json:"rule_id,omitempty"`
	Severity    Severity  `json:"severity"`
	Categories  []string  `json:"categories"`
	RootCause   string    `json:"root_cause"`
	Sentiment   string    `json:"sentiment"`
	Explanation string    `json:"explanation"`
	FraudRisk   string    `json:"fraud_risk"`
	FraudScore  float64   `json:"fraud_score"`
	SLADeadline time.Time `json:"sla_deadline"`
	Case        Case      `json:"case"`
	EmailQueued bool      `json:"email_queued"`
	CreatedAt   time.Time `json:"created_at"`
}

// DecisionResult is what the hybrid engine emits for a case.
type DecisionResult struct {
	Decision   Decision `json:"decision"`
	Confidence float64  `json:"confidence"`
	Source     Source   `json:"source"`
	Reason     string   `json:"reason"`
	RuleID     *string  `json:"rule_id"`
	Category   string   `json:"category"`
}
