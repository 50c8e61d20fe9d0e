// Package engine combines policy rules with the trained classifier into a
// single decision: rules are checked first, the classifier second, and
// anything else escalates for human review.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/resolvehq/complaints-backend/internal/models"
	"github.com/resolvehq/complaints-backend/internal/policy"
)

// RuleSource yields the first policy rule matching a case.
type RuleSource interface {
	Match(models.Case) (policy.Rule, bool)
	Len() int
}

// Classifier is the trained model head.
type Classifier interface {
	Predict(models.Case) (models.Decision, float64)
}

type Engine struct {
	rules RuleSource
	model Classifier // nil when no artifact is available
	log   *slog.Logger
}

func New(rules RuleSource, model Classifier, log *slog.Logger) *Engine {
	return &Engine{rules: rules, model: model, log: log}
}

// Ready reports whether the engine can decide at all. It always can: the
// escalate fallback needs neither rules nor a model.
func (e *Engine) Ready() bool { return true }

// ModelLoaded reports whether the classifier artifact is in play.
func (e *Engine) ModelLoaded() bool { return e.model != nil }

// Predict decides a case: first matching rule, then classifier, then the
// escalate fallback.
func (e *Engine) Predict(cs models.Case) models.DecisionResult {
	if rule, ok := e.rules.Match(cs); ok {
		e.log.Debug("rule matched", "rule", rule.ID, "order", cs.OrderID)
		reason := rule.Reason
		if reason == "" {
			reason = "Policy rule applied"
		}
		category := rule.Category
		if category == "" {
			category = cs.OrderStatus
		}
		ruleID := rule.ID
		return models.DecisionResult{
			Decision:   rule.Decision,
			Confidence: rule.Confidence,
			Source:     models.SourcePolicy,
			Reason:     reason,
			RuleID:     &ruleID,
			Category:   category,
		}
	}

	if e.model != nil {
		decision, confidence := e.model.Predict(cs)
		e.log.Debug("ml prediction", "decision", decision, "confidence", confidence, "order", cs.OrderID)
		return models.DecisionResult{
			Decision:   decision,
			Confidence: confidence,
			Source:     models.SourceML,
			Reason:     fmt.Sprintf("ML classification (%.0f%% confidence)", confidence*100),
			Category:   cs.OrderStatus,
		}
	}

	return models.DecisionResult{
		Decision:   models.DecisionEscalate,
		Confidence: 0.5,
		Source:     models.SourceSystem,
		Reason:     "No matching rule or model prediction - escalating for review",
		Category:   cs.OrderStatus,
	}
}

// Factor is one contribution in an explainability breakdown.
type Factor struct {
	Factor      string `json:"factor"`
	Value       any    `json:"value"`
	Impact      string `json:"impact"`
	Description string `json:"description"`
}

type Explanation struct {
	Decision models.Decision `json:"decision"`
	Factors  []Factor        `json:"factors"`
}

// Explain runs the decision and annotates the case signals that drove it.
func (e *Engine) Explain(cs models.Case) Explanation {
	result := e.Predict(cs)
	out := Explanation{Decision: result.Decision, Factors: []Factor{}}

	if cs.RefundHistory30 >= 3 {
		out.Factors = append(out.Factors, Factor{
			Factor:      "High refund history",
			Value:       cs.RefundHistory30,
			Impact:      "negative",
			Description: "Multiple refund requests in last 30 days",
		})
	}
	if !cs.HandoffPhoto {
		impact := "neutral"
		if cs.OrderStatus == "missing_delivery" {
			impact = "positive"
		}
		out.Factors = append(out.Factors, Factor{
			Factor:      "No delivery photo",
			Value:       false,
			Impact:      impact,
			Description: "No proof of delivery available",
		})
	}
	if cs.CourierRating > 0 && cs.CourierRating < 4.0 {
		out.Factors = append(out.Factors, Factor{
			Factor:      "Low courier rating",
			Value:       cs.CourierRating,
			Impact:      "positive",
			Description: "Courier has below-average rating",
		})
	}
	return out
}
