package models

import (
	"errors"
	"time"
)

// Feedback is an agent correction of an automated decision.
type Feedback struct {
	ID                string    `json:"id"`
	ComplaintID       string    `json:"complaint_id"`
	OriginalDecision  Decision  `json:"original_decision"`
	CorrectedDecision Decision  `json:"corrected_decision"`
	Reason            string    `json:"reason"`
	Agent             string    `json:"agent"`
	CreatedAt         time.Time `json:"created_at"`
}

func (f *Feedback) Validate() error {
	if f.ComplaintID == "" || f.OriginalDecision == "" || f.CorrectedDecision == "" {
		return errors.New("complaint_id, original_decision and corrected_decision are required")
	}
	return nil
}
