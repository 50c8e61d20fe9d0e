package models

// DecisionStats is the aggregate block of the analytics summary endpoint.
type DecisionStats struct {
	Total         int              `json:"total"`
	ByDecision    map[Decision]int `json:"by_decision"`
	BySeverity    map[Severity]int `json:"by_severity"`
	BySource      map[Source]int   `json:"by_source"`
	AvgConfidence float64          `json:"avg_confidence"`
	FraudFlagged  int              `json:"fraud_flagged"`
	EmailsQueued  int              `json:"emails_queued"`
}

// TimeseriesPoint is one day of decision counts.
type TimeseriesPoint struct {
	Day       string `json:"day"`
	Total     int    `json:"total"`
	Refunds   int    `json:"refunds"`
	Denials   int    `json:"denials"`
	Escalated int    `json:"escalated"`
}

// RootCauseRow is one bucket of the root cause breakdown.
type RootCauseRow struct {
	RootCause string  `json:"root_cause"`
	Count     int     `json:"count"`
	Share     float64 `json:"share"`
}
