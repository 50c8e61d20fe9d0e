package mailer

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/resolvehq/complaints-backend/internal/config"
	"github.com/resolvehq/complaints-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMailer(cfg config.SMTPConfig) *Mailer {
	return New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestConfigured(t *testing.T) {
	assert.False(t, newTestMailer(config.SMTPConfig{Host: "smtp.example.com"}).Configured())
	assert.False(t, newTestMailer(config.SMTPConfig{User: "u"}).Configured())
	assert.True(t, newTestMailer(config.SMTPConfig{User: "u", Password: "p"}).Configured())
}

func TestSendDecisionUnconfigured(t *testing.T) {
	m := newTestMailer(config.SMTPConfig{Host: "smtp.example.com", Port: 587})
	err := m.SendDecision(context.Background(), DecisionMail{To: "a@b.com", OrderID: "ORD-1"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSendDecisionNoRecipient(t *testing.T) {
	m := newTestMailer(config.SMTPConfig{User: "u", Password: "p"})
	err := m.SendDecision(context.Background(), DecisionMail{OrderID: "ORD-1"})
	assert.Error(t, err)
}

func TestRenderHTML(t *testing.T) {
	html, err := renderHTML(DecisionMail{
		To:          "a@b.com",
		OrderID:     "ORD-42",
		Decision:    models.DecisionRefund,
		Confidence:  0.92,
		Reason:      "Order arrived damaged",
		Category:    "damaged_item",
		Severity:    models.SeverityHigh,
		SLADeadline: time.Date(2026, 3, 1, 14, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Refund Approved")
	assert.Contains(t, html, "ORD-42")
	assert.Contains(t, html, "Damaged Item")
	assert.Contains(t, html, "92%")
	assert.Contains(t, html, "2026-03-01 14:30")
}

func TestRenderHTMLUnknownDecisionFallsBack(t *testing.T) {
	html, err := renderHTML(DecisionMail{OrderID: "ORD-1", Decision: models.Decision("weird")})
	require.NoError(t, err)
	assert.Contains(t, html, "Under Review")
}

func TestRenderHTMLEscapesReason(t *testing.T) {
	html, err := renderHTML(DecisionMail{
		OrderID:  "ORD-1",
		Decision: models.DecisionDeny,
		Reason:   `<script>alert("x")</script>`,
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestDisplayCategory(t *testing.T) {
	assert.Equal(t, "General", displayCategory(""))
	assert.Equal(t, "Late Delivery", displayCategory("late_delivery"))
	assert.Equal(t, "Refund", displayCategory("refund"))
}

func TestStatusHidesPassword(t *testing.T) {
	m := newTestMailer(config.SMTPConfig{Host: "h", Port: 465, User: "u", Password: "secret", From: "noreply@x.com"})
	st := m.Status()
	assert.Equal(t, true, st["password_set"])
	for _, v := range st {
		assert.NotEqual(t, "secret", v)
	}
}
