// Package fraud scores complaint abuse risk from a customer's recorded
// history. It is defensive: missing customers and empty histories always
// produce a clean zero assessment.
package fraud

import (
	"fmt"
	"time"

	"github.com/resolvehq/complaints-backend/internal/models"
)

const (
	LabelNormal     = "normal"
	LabelWatch      = "watch"
	LabelSuspicious = "suspicious"
	LabelHighRisk   = "high_risk"
)

type Thresholds struct {
	Complaints30d     int
	Complaints24h     int
	RefundRate        float64
	AccountAgeDaysMin int
	HighOrderValue    float64
}

type Weights struct {
	ExcessiveComplaints int
	BurstActivity       int
	HighRefundRate      int
	VeryNewAccount      int
	HighValuePattern    int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Complaints30d:     3,
		Complaints24h:     2,
		RefundRate:        0.6,
		AccountAgeDaysMin: 7,
		HighOrderValue:    50,
	}
}

func DefaultWeights() Weights {
	return Weights{
		ExcessiveComplaints: 25,
		BurstActivity:       20,
		HighRefundRate:      25,
		VeryNewAccount:      15,
		HighValuePattern:    15,
	}
}

// History is the customer view the detector scores against.
type History struct {
	TotalComplaints int     `json:"total_complaints"`
	TotalRefunds    int     `json:"total_refunds"`
	Complaints30d   int     `json:"complaints_30d"`
	Complaints24h   int     `json:"complaints_24h"`
	RefundRate      float64 `json:"refund_rate"`
	AccountAgeDays  int     `json:"account_age_days"`
}

// HistoryFromStats converts the repository aggregate into detector input.
func HistoryFromStats(s models.CustomerStats, now time.Time) History {
	return History{
		TotalComplaints: s.TotalComplaints,
		TotalRefunds:    s.TotalRefunds,
		Complaints30d:   s.Complaints30d,
		Complaints24h:   s.Complaints24h,
		RefundRate:      s.RefundRate(),
		AccountAgeDays:  s.AccountAgeDays(now),
	}
}

type Flag struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

type Assessment struct {
	Score   int     `json:"score"`
	Label   string  `json:"label"`
	Flags   []Flag  `json:"flags"`
	History History `json:"history"`
}

type Detector struct {
	thresholds Thresholds
	weights    Weights
}

func NewDetector() *Detector {
	return &Detector{thresholds: DefaultThresholds(), weights: DefaultWeights()}
}

func NewDetectorWith(t Thresholds, w Weights) *Detector {
	return &Detector{thresholds: t, weights: w}
}

// Assess scores a customer. Anonymous submissions score zero since there is
// no identity to accumulate history against.
func (d *Detector) Assess(customerID string, h History, orderValue float64) Assessment {
	if customerID == "" || customerID == "anonymous" {
		return Assessment{Label: LabelNormal, Flags: []Flag{}}
	}

	var flags []Flag
	score := 0

	if h.Complaints30d >= d.thresholds.Complaints30d {
		flags = append(flags, Flag{
			Type:        "excessive_complaints",
			Description: fmt.Sprintf("%d complaints in last 30 days", h.Complaints30d),
			Severity:    "high",
		})
		score += d.weights.ExcessiveComplaints
	}

	if h.Complaints24h >= d.thresholds.Complaints24h {
		flags = append(flags, Flag{
			Type:        "burst_activity",
			Description: fmt.Sprintf("%d complaints in last 24 hours", h.Complaints24h),
			Severity:    "high",
		})
		score += d.weights.BurstActivity
	}

	if h.TotalComplaints >= 3 && h.RefundRate >= d.thresholds.RefundRate {
		flags = append(flags, Flag{
			Type:        "high_refund_rate",
			Description: fmt.Sprintf("Refund rate %.1f%% over %d complaints", h.RefundRate*100, h.TotalComplaints),
			Severity:    "high",
		})
		score += d.weights.HighRefundRate
	}

	if h.AccountAgeDays < d.thresholds.AccountAgeDaysMin && h.TotalComplaints > 0 {
		flags = append(flags, Flag{
			Type:        "very_new_account",
			Description: fmt.Sprintf("Account age %d days with %d complaints", h.AccountAgeDays, h.TotalComplaints),
			Severity:    "medium",
		})
		score += d.weights.VeryNewAccount
	}

	if orderValue >= d.thresholds.HighOrderValue {
		flags = append(flags, Flag{
			Type:        "high_value_order",
			Description: fmt.Sprintf("High-value complaint ($%.2f)", orderValue),
			Severity:    "medium",
		})
		score += d.weights.HighValuePattern
	}

	if score > 100 {
		score = 100
	}
	if flags == nil {
		flags = []Flag{}
	}
	return Assessment{Score: score, Label: classify(score), Flags: flags, History: h}
}

func classify(score int) string {
	switch {
	case score >= 70:
		return LabelHighRisk
	case score >= 40:
		return LabelSuspicious
	case score >= 20:
		return LabelWatch
	default:
		return LabelNormal
	}
}

// Flagged reports labels that should count toward a customer's fraud flags.
func Flagged(label string) bool {
	return label == LabelSuspicious || label == LabelHighRisk
}
