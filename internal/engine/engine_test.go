package engine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/resolvehq/complaints-backend/internal/models"
	"github.com/resolvehq/complaints-backend/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRules struct{ rule *policy.Rule }

func (s stubRules) Match(models.Case) (policy.Rule, bool) {
	if s.rule == nil {
		return policy.Rule{}, false
	}
	return *s.rule, true
}
func (s stubRules) Len() int { if s.rule == nil { return 0 }; return 1 }

type stubModel struct {
	decision   models.Decision
	confidence float64
}

func (s stubModel) Predict(models.Case) (models.Decision, float64) {
	return s.decision, s.confidence
}

func nopLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestPredictRuleWins(t *testing.T) {
	rule := &policy.Rule{ID: "r1", Decision: models.DecisionDeny, Confidence: 0.92, Reason: "abuse pattern"}
	e := New(stubRules{rule: rule}, stubModel{decision: models.DecisionRefund, confidence: 0.99}, nopLogger())

	res := e.Predict(models.Case{OrderStatus: "late_delivery"})
	assert.Equal(t, models.DecisionDeny, res.Decision)
	assert.Equal(t, models.SourcePolicy, res.Source)
	assert.Equal(t, "abuse pattern", res.Reason)
	require.NotNil(t, res.RuleID)
	assert.Equal(t, "r1", *res.RuleID)
}

func TestPredictRuleDefaults(t *testing.T) {
	rule := &policy.Rule{ID: "r2", Decision: models.DecisionRefund, Confidence: 0.85}
	e := New(stubRules{rule: rule}, nil, nopLogger())

	res := e.Predict(models.Case{OrderStatus: "damaged_item"})
	assert.Equal(t, "Policy rule applied", res.Reason)
	assert.Equal(t, "damaged_item", res.Category)
}

func TestPredictFallsThroughToModel(t *testing.T) {
	e := New(stubRules{}, stubModel{decision: models.DecisionRefund, confidence: 0.83}, nopLogger())

	res := e.Predict(models.Case{OrderStatus: "missing_delivery"})
	assert.Equal(t, models.DecisionRefund, res.Decision)
	assert.Equal(t, models.SourceML, res.Source)
	assert.Nil(t, res.RuleID)
	assert.Contains(t, res.Reason, "83%")
}

func TestPredictSystemFallback(t *testing.T) {
	e := New(stubRules{}, nil, nopLogger())

	res := e.Predict(models.Case{OrderStatus: "wrong_item"})
	assert.Equal(t, models.DecisionEscalate, res.Decision)
	assert.Equal(t, models.SourceSystem, res.Source)
	assert.InDelta(t, 0.5, res.Confidence, 1e-9)
	assert.False(t, e.ModelLoaded())
}

func TestExplainFactors(t *testing.T) {
	e := New(stubRules{}, nil, nopLogger())

	exp := e.Explain(models.Case{
		OrderStatus:     "missing_delivery",
		RefundHistory30: 4,
		HandoffPhoto:    false,
		CourierRating:   3.2,
	})
	require.Len(t, exp.Factors, 3)
	assert.Equal(t, "High refund history", exp.Factors[0].Factor)
	assert.Equal(t, "positive", exp.Factors[1].Impact) // no photo on a missing delivery favors the customer
	assert.Equal(t, "Low courier rating", exp.Factors[2].Factor)
}
