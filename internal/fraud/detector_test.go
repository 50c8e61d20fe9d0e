package fraud

import (
	"testing"
	"time"

	"github.com/resolvehq/complaints-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAssessAnonymous(t *testing.T) {
	d := NewDetector()
	for _, id := range []string{"", "anonymous"} {
		a := d.Assess(id, History{Complaints30d: 10, Complaints24h: 5}, 200)
		assert.Equal(t, 0, a.Score)
		assert.Equal(t, LabelNormal, a.Label)
		assert.Empty(t, a.Flags)
	}
}

func TestAssessCleanCustomer(t *testing.T) {
	d := NewDetector()
	a := d.Assess("c-1", History{TotalComplaints: 1, AccountAgeDays: 90}, 15)
	assert.Equal(t, 0, a.Score)
	assert.Equal(t, LabelNormal, a.Label)
	assert.Empty(t, a.Flags)
}

func TestAssessAbusePattern(t *testing.T) {
	d := NewDetector()
	h := History{
		TotalComplaints: 8,
		TotalRefunds:    6,
		Complaints30d:   5,
		Complaints24h:   3,
		RefundRate:      0.75,
		AccountAgeDays:  3,
	}
	a := d.Assess("c-2", h, 80)

	// all five rules trip; raw sum 100 stays within the cap
	assert.Equal(t, 100, a.Score)
	assert.Equal(t, LabelHighRisk, a.Label)
	assert.Len(t, a.Flags, 5)
}

func TestAssessRefundRateNeedsVolume(t *testing.T) {
	d := NewDetector()

	// two complaints with a 100% refund rate is not enough signal
	a := d.Assess("c-3", History{TotalComplaints: 2, RefundRate: 1.0, AccountAgeDays: 30}, 10)
	assert.Equal(t, 0, a.Score)

	a = d.Assess("c-3", History{TotalComplaints: 3, RefundRate: 1.0, AccountAgeDays: 30}, 10)
	assert.Equal(t, LabelWatch, a.Label)
	assert.Equal(t, 25, a.Score)
}

func TestAssessLabels(t *testing.T) {
	assert.Equal(t, LabelNormal, classify(19))
	assert.Equal(t, LabelWatch, classify(20))
	assert.Equal(t, LabelSuspicious, classify(40))
	assert.Equal(t, LabelHighRisk, classify(70))
}

func TestHistoryFromStats(t *testing.T) {
	now := time.Now()
	first := now.Add(-72 * time.Hour)
	s := models.CustomerStats{
		TotalComplaints: 4,
		TotalRefunds:    2,
		Complaints30d:   4,
		Complaints24h:   1,
		FirstSeen:       &first,
	}
	h := HistoryFromStats(s, now)
	assert.Equal(t, 3, h.AccountAgeDays)
	assert.InDelta(t, 0.5, h.RefundRate, 1e-9)
}

func TestFlagged(t *testing.T) {
	assert.False(t, Flagged(LabelNormal))
	assert.False(t, Flagged(LabelWatch))
	assert.True(t, Flagged(LabelSuspicious))
	assert.True(t, Flagged(LabelHighRisk))
}
