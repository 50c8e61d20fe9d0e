package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolvehq/complaints-backend/internal/config"
	"github.com/resolvehq/complaints-backend/internal/engine"
	"github.com/resolvehq/complaints-backend/internal/fraud"
	"github.com/resolvehq/complaints-backend/internal/intel"
	"github.com/resolvehq/complaints-backend/internal/mailer"
	"github.com/resolvehq/complaints-backend/internal/models"
	"github.com/resolvehq/complaints-backend/internal/policy"
	repo "github.com/resolvehq/complaints-backend/internal/repository"
	"github.com/resolvehq/complaints-backend/internal/worker"
)

func nopLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type fakeComplaints struct {
	mu      sync.Mutex
	rows    []models.Complaint
	stats   models.CustomerStats
	topDays int
}

func (f *fakeComplaints) Insert(_ context.Context, c models.Complaint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, c)
	return nil
}

func (f *fakeComplaints) GetByComplaintID(context.Context, string) (models.Complaint, error) {
	return models.Complaint{}, nil
}

func (f *fakeComplaints) List(context.Context, repo.ComplaintFilter) ([]models.Complaint, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows, len(f.rows), nil
}

func (f *fakeComplaints) Export(_ context.Context, fn func(models.Complaint) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.rows {
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeComplaints) CustomerStats(context.Context, string, time.Time) (models.CustomerStats, error) {
	return f.stats, nil
}

func (f *fakeComplaints) Stats(context.Context, time.Time) (models.DecisionStats, error) {
	return models.DecisionStats{}, nil
}

func (f *fakeComplaints) Timeseries(context.Context, int) ([]models.TimeseriesPoint, error) {
	return nil, nil
}

func (f *fakeComplaints) RootCauses(context.Context, time.Time) ([]models.RootCauseRow, error) {
	return nil, nil
}

func (f *fakeComplaints) TopCustomers(_ context.Context, days, _ int) ([]models.TopCustomer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topDays = days
	return nil, nil
}

type fakeProfiles struct {
	mu      sync.Mutex
	updates []string
}

func (f *fakeProfiles) RecordDecision(_ context.Context, customerID string, _ models.Decision, _ bool, _ float64, _ models.RiskTier) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, customerID)
	return nil
}

func (f *fakeProfiles) Get(_ context.Context, id string) (models.CustomerProfile, error) {
	return models.CustomerProfile{CustomerID: id, RiskTier: models.TierNormal}, nil
}

type stubRules struct{ rule *policy.Rule }

func (s stubRules) Match(models.Case) (policy.Rule, bool) {
	if s.rule == nil {
		return policy.Rule{}, false
	}
	return *s.rule, true
}

func (s stubRules) Len() int {
	if s.rule == nil {
		return 0
	}
	return 1
}

func newTestService(rule *policy.Rule) (*DecisionService, *fakeComplaints, *fakeProfiles, *worker.Pool) {
	complaints := &fakeComplaints{}
	profiles := &fakeProfiles{}
	log := nopLogger()
	eng := engine.New(stubRules{rule: rule}, nil, log)
	cust := NewCustomerService(profiles, complaints)
	pool := worker.NewPool(1)
	cfg := config.Config{SLACriticalMin: 30, SLAHighMin: 120, SLAMediumMin: 480, SLALowMin: 1440}
	svc := NewDecisionService(eng, intel.NewAnalyzer(), fraud.NewDetector(), cust,
		complaints, profiles, mailer.New(config.SMTPConfig{}, log), pool, cfg, log)
	return svc, complaints, profiles, pool
}

func TestRiskTier(t *testing.T) {
	assert.Equal(t, models.TierNormal, RiskTier(0, 0))
	assert.Equal(t, models.TierFlagged, RiskTier(5, 0.6))
	assert.Equal(t, models.TierWatch, RiskTier(2, 0.4))
	assert.Equal(t, models.TierVIP, RiskTier(25, 0.02))
	assert.Equal(t, models.TierTrusted, RiskTier(12, 0.08))
	assert.Equal(t, models.TierNormal, RiskTier(3, 0.15))
}

func TestDecidePersistsAndResponds(t *testing.T) {
	rule := &policy.Rule{ID: "no_photo_refund", Decision: models.DecisionRefund, Confidence: 0.9, Reason: "No delivery proof"}
	svc, complaints, profiles, pool := newTestService(rule)

	resp, err := svc.Decide(context.Background(), DecideRequest{
		OrderID:       "ORD-100",
		ComplaintText: "my order never arrived",
		IssueType:     "missing_delivery",
		CustomerID:    "cust-1",
	})
	require.NoError(t, err)
	pool.Stop()

	assert.Equal(t, models.DecisionRefund, resp.Decision)
	assert.Equal(t, models.SourcePolicy, resp.Source)
	assert.NotEmpty(t, resp.ComplaintID)
	assert.Equal(t, strings.ToUpper(resp.ComplaintID), resp.ComplaintID)
	assert.False(t, resp.EmailQueued, "unconfigured smtp must not queue mail")
	assert.NotEmpty(t, resp.Explanation)
	assert.NotEmpty(t, resp.Categories)
	assert.Len(t, resp.AlternativeDecisions, 2)
	assert.NotEmpty(t, resp.ResponseTemplates)
	assert.Equal(t, "High", resp.AgentSummary.ConfidenceLevel)

	require.Len(t, complaints.rows, 1)
	row := complaints.rows[0]
	assert.Equal(t, resp.ComplaintID, row.ComplaintID)
	assert.Equal(t, "cust-1", row.CustomerID)
	assert.Equal(t, resp.Decision, row.Decision)

	assert.Equal(t, []string{"cust-1"}, profiles.updates)
}

func TestDecideAnonymousSkipsProfile(t *testing.T) {
	svc, complaints, profiles, pool := newTestService(nil)

	resp, err := svc.Decide(context.Background(), DecideRequest{
		ComplaintText: "food was cold",
	})
	require.NoError(t, err)
	pool.Stop()

	// no rule, no model: system escalation
	assert.Equal(t, models.DecisionEscalate, resp.Decision)
	assert.Equal(t, models.SourceSystem, resp.Source)
	require.Len(t, complaints.rows, 1)
	assert.Equal(t, "anonymous", complaints.rows[0].CustomerID)
	assert.Empty(t, profiles.updates)
}

func TestDecideDerivesCustomerIDFromEmail(t *testing.T) {
	svc, complaints, _, pool := newTestService(nil)

	_, err := svc.Decide(context.Background(), DecideRequest{
		ComplaintText: "wrong item delivered",
		Email:         "jo@example.com",
	})
	require.NoError(t, err)
	pool.Stop()

	require.Len(t, complaints.rows, 1)
	id := complaints.rows[0].CustomerID
	assert.Len(t, id, 12)
	assert.NotEqual(t, "anonymous", id)
}

func TestDecideBatch(t *testing.T) {
	rule := &policy.Rule{ID: "r", Decision: models.DecisionDeny, Confidence: 0.8}
	svc, complaints, _, pool := newTestService(rule)
	defer pool.Stop()

	csvBody := "order_id,issue_type,complaint_text,handoff_photo,refund_history_30d\n" +
		"O-1,late_delivery,arrived an hour late,true,0\n" +
		"O-2,,driver was rude,false,2\n"
	items, err := svc.DecideBatch(context.Background(), strings.NewReader(csvBody))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "O-1", items[0].OrderID)
	assert.Equal(t, models.DecisionDeny, items[0].Decision)
	assert.NotEmpty(t, items[1].Severity)
	// batch is a dry run
	assert.Empty(t, complaints.rows)
}

func TestDecideBatchRejectsGarbage(t *testing.T) {
	svc, _, _, pool := newTestService(nil)
	defer pool.Stop()

	_, err := svc.DecideBatch(context.Background(), strings.NewReader(""))
	assert.Error(t, err)
}

func TestAlternativesExcludeCurrent(t *testing.T) {
	for _, d := range []models.Decision{models.DecisionRefund, models.DecisionDeny, models.DecisionEscalate} {
		alts := alternatives(d)
		assert.Len(t, alts, 2)
		for _, a := range alts {
			assert.NotEqual(t, d, a.Decision)
		}
	}
}

func TestResponseTemplatesFallback(t *testing.T) {
	assert.Equal(t, templatesByDecision[models.DecisionEscalate], responseTemplates(models.Decision("other")))
}

func TestDecideSummaryTitlesIssue(t *testing.T) {
	svc, _, _, pool := newTestService(nil)

	resp, err := svc.Decide(context.Background(), DecideRequest{
		OrderID:       "ORD-300",
		ComplaintText: "package left in the rain",
		IssueType:     "late_delivery",
		CustomerID:    "cust-9",
	})
	require.NoError(t, err)
	pool.Stop()

	assert.Contains(t, resp.AgentSummary.KeyFacts, "Issue: Late Delivery")
}

func TestDecideIgnoresSelfReportedFraudHistory(t *testing.T) {
	svc, _, _, pool := newTestService(nil)

	ten := 10
	resp, err := svc.Decide(context.Background(), DecideRequest{
		OrderID:         "ORD-301",
		ComplaintText:   "wrong item delivered",
		IssueType:       "wrong_item",
		CustomerID:      "cust-10",
		RefundHistory30: &ten,
	})
	require.NoError(t, err)
	pool.Stop()

	// fraud scoring only trusts stored records, never the caller
	assert.Equal(t, fraud.LabelNormal, resp.FraudRisk)
	assert.Zero(t, resp.FraudScore)
}

func TestTopCustomersWindowed(t *testing.T) {
	complaints := &fakeComplaints{}
	svc := NewCustomerService(&fakeProfiles{}, complaints)

	_, err := svc.Top(context.Background(), 7, 20)
	require.NoError(t, err)
	assert.Equal(t, 7, complaints.topDays)

	// out-of-range windows fall back to 30 days
	_, err = svc.Top(context.Background(), 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 30, complaints.topDays)

	_, err = svc.Top(context.Background(), 4000, 20)
	require.NoError(t, err)
	assert.Equal(t, 30, complaints.topDays)
}

func TestCustomerSummaryAnonymous(t *testing.T) {
	svc := NewCustomerService(&fakeProfiles{}, &fakeComplaints{})
	s := svc.Summary(context.Background(), "anonymous")
	assert.Equal(t, models.TierNormal, s.RiskTier)
	assert.Zero(t, s.TotalComplaints)
}
