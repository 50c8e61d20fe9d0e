package services

import (
	"context"
	"crypto/md5"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/xid"

	"github.com/resolvehq/complaints-backend/internal/config"
	"github.com/resolvehq/complaints-backend/internal/engine"
	"github.com/resolvehq/complaints-backend/internal/fraud"
	"github.com/resolvehq/complaints-backend/internal/intel"
	"github.com/resolvehq/complaints-backend/internal/mailer"
	"github.com/resolvehq/complaints-backend/internal/metrics"
	"github.com/resolvehq/complaints-backend/internal/models"
	repo "github.com/resolvehq/complaints-backend/internal/repository"
	"github.com/resolvehq/complaints-backend/internal/worker"
)

type DecisionService struct {
	engine     *engine.Engine
	analyzer   *intel.Analyzer
	detector   *fraud.Detector
	customers  *CustomerService
	complaints repo.Complaints
	profiles   repo.Customers
	mail       *mailer.Mailer
	pool       *worker.Pool
	cfg        config.Config
	log        *slog.Logger
}

func NewDecisionService(
	eng *engine.Engine,
	analyzer *intel.Analyzer,
	detector *fraud.Detector,
	customers *CustomerService,
	complaints repo.Complaints,
	profiles repo.Customers,
	mail *mailer.Mailer,
	pool *worker.Pool,
	cfg config.Config,
	log *slog.Logger,
) *DecisionService {
	return &DecisionService{
		engine: eng, analyzer: analyzer, detector: detector, customers: customers,
		complaints: complaints, profiles: profiles, mail: mail, pool: pool, cfg: cfg, log: log,
	}
}

// DecideRequest is the raw complaint submission. Pointer fields distinguish
// "absent" from zero so defaults can apply.
type DecideRequest struct {
	OrderID         string   `json:"order_id"`
	ComplaintText   string   `json:"complaint_text"`
	IssueType       string   `json:"issue_type"`
	Email           string   `json:"email"`
	CustomerID      string   `json:"customer_id"`
	HandoffPhoto    *bool    `json:"handoff_photo"`
	RefundHistory30 *int     `json:"refund_history_30d"`
	CourierRating   *float64 `json:"courier_rating"`
	OrderValue      *float64 `json:"order_value"`
	EvidenceFiles   []string `json:"evidence_files"`
}

func (r DecideRequest) normalize(a *intel.Analyzer, now time.Time) models.Case {
	cs := models.Case{
		OrderID:       r.OrderID,
		OrderStatus:   r.IssueType,
		ComplaintText: r.ComplaintText,
		CustomerID:    r.CustomerID,
		CourierRating: 4.5,
		OrderValue:    15.0,
		EvidenceCount: len(r.EvidenceFiles),
	}
	if cs.OrderID == "" {
		cs.OrderID = "COMP-" + now.Format("20060102150405")
	}
	if cs.OrderStatus == "" {
		cs.OrderStatus = a.DetectIssueType(r.ComplaintText)
	}
	if cs.CustomerID == "" {
		if r.Email != "" {
			sum := md5.Sum([]byte(r.Email))
			cs.CustomerID = hex.EncodeToString(sum[:])[:12]
		} else {
			cs.CustomerID = "anonymous"
		}
	}
	if r.HandoffPhoto != nil {
		cs.HandoffPhoto = *r.HandoffPhoto
	}
	if r.RefundHistory30 != nil {
		cs.RefundHistory30 = *r.RefundHistory30
	}
	if r.CourierRating != nil {
		cs.CourierRating = *r.CourierRating
	}
	if r.OrderValue != nil {
		cs.OrderValue = *r.OrderValue
	}
	return cs
}

// AgentSummary is the copilot block attached to every decision.
type AgentSummary struct {
	Headline        string   `json:"headline"`
	KeyFacts        []string `json:"key_facts"`
	Recommendation  string   `json:"recommendation"`
	ConfidenceLevel string   `json:"confidence_level"`
}

type ResponseTemplate struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

type Alternative struct {
	Decision         models.Decision `json:"decision"`
	Reason           string          `json:"reason"`
	ConfidenceImpact float64         `json:"confidence_impact"`
}

// DecideResponse is the full decision payload returned to the caller and
// mirrored into the audit table.
type DecideResponse struct {
	ComplaintID string    `json:"complaint_id"`
	OrderID     string    `json:"order_id"`
	Timestamp   time.Time `json:"timestamp"`

	Decision   models.Decision `json:"decision"`
	Confidence float64         `json:"confidence"`
	Source     models.Source   `json:"source"`
	RuleID     *string         `json:"rule_id"`

	Severity         models.Severity `json:"severity"`
	SLADeadline      time.Time       `json:"sla_deadline"`
	SLAMinutes       int             `json:"sla_minutes"`
	Categories       []string        `json:"categories"`
	RootCause        string          `json:"root_cause"`
	Sentiment        string          `json:"sentiment"`
	Explanation      string          `json:"explanation"`
	SuggestedActions []intel.Action  `json:"suggested_actions"`

	FraudRisk  string       `json:"fraud_risk"`
	FraudScore int          `json:"fraud_score"`
	FraudFlags []fraud.Flag `json:"fraud_flags"`

	CustomerHistory models.CustomerSummary `json:"customer_history"`

	AgentSummary         AgentSummary       `json:"agent_summary"`
	ResponseTemplates    []ResponseTemplate `json:"response_templates"`
	AlternativeDecisions []Alternative      `json:"alternative_decisions"`

	EmailQueued bool `json:"email_queued"`
}

// Decide runs the full pipeline: engine decision, text analysis, fraud
// scoring, customer context, audit write, then async email and profile
// updates.
func (s *DecisionService) Decide(ctx context.Context, req DecideRequest) (DecideResponse, error) {
	now := time.Now().UTC()
	cs := req.normalize(s.analyzer, now)

	result := s.engine.Predict(cs)
	analysis := s.analyzer.Analyze(cs.ComplaintText, cs)

	// Fraud history comes strictly from stored records; the
	// self-reported refund_history_30d only feeds the rule engine.
	history := fraud.History{}
	if stats, err := s.complaints.CustomerStats(ctx, cs.CustomerID, now); err == nil {
		history = fraud.HistoryFromStats(stats, now)
	}
	assessment := s.detector.Assess(cs.CustomerID, history, cs.OrderValue)

	summary := s.customers.Summary(ctx, cs.CustomerID)

	slaMin := s.cfg.SLAMinutes(string(analysis.Severity))
	deadline := now.Add(time.Duration(slaMin) * time.Minute)

	resp := DecideResponse{
		ComplaintID: strings.ToUpper(xid.New().String()),
		OrderID:     cs.OrderID,
		Timestamp:   now,

		Decision:   result.Decision,
		Confidence: result.Confidence,
		Source:     result.Source,
		RuleID:     result.RuleID,

		Severity:         analysis.Severity,
		SLADeadline:      deadline,
		SLAMinutes:       slaMin,
		Categories:       analysis.Categories,
		RootCause:        analysis.RootCause,
		Sentiment:        analysis.Sentiment,
		Explanation:      analysis.Explanation,
		SuggestedActions: analysis.SuggestedActions,

		FraudRisk:  assessment.Label,
		FraudScore: assessment.Score,
		FraudFlags: assessment.Flags,

		CustomerHistory: summary,

		AgentSummary:         buildAgentSummary(cs, result, analysis, assessment),
		ResponseTemplates:    responseTemplates(result.Decision),
		AlternativeDecisions: alternatives(result.Decision),
	}
	if resp.Explanation == "" {
		resp.Explanation = result.Reason
	}
	if len(resp.Categories) == 0 {
		resp.Categories = []string{cs.OrderStatus}
	}

	queueEmail := req.Email != "" && s.mail.Configured()
	resp.EmailQueued = queueEmail

	record := models.Complaint{
		ID:          uuid.NewString(),
		ComplaintID: resp.ComplaintID,
		OrderID:     cs.OrderID,
		CustomerID:  cs.CustomerID,
		Decision:    resp.Decision,
		Confidence:  resp.Confidence,
		Source:      resp.Source,
		RuleID:      resp.RuleID,
		Severity:    resp.Severity,
		Categories:  resp.Categories,
		RootCause:   resp.RootCause,
		Sentiment:   resp.Sentiment,
		Explanation: resp.Explanation,
		FraudRisk:   resp.FraudRisk,
		FraudScore:  float64(resp.FraudScore),
		SLADeadline: deadline,
		Case:        cs,
		EmailQueued: queueEmail,
		CreatedAt:   now,
	}
	if err := s.complaints.Insert(ctx, record); err != nil {
		return DecideResponse{}, fmt.Errorf("persist decision: %w", err)
	}

	metrics.DecisionsTotal.WithLabelValues(string(resp.Decision), string(resp.Source)).Inc()
	if fraud.Flagged(resp.FraudRisk) {
		metrics.FraudFlagged.Inc()
	}

	s.afterDecision(record, req.Email, summary, queueEmail)
	return resp, nil
}

// afterDecision pushes the slow follow-ups onto the worker pool.
func (s *DecisionService) afterDecision(record models.Complaint, email string, summary models.CustomerSummary, queueEmail bool) {
	tier := RiskTier(summary.TotalComplaints+1, summary.RefundRate)
	s.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if record.CustomerID != "anonymous" {
			if err := s.profiles.RecordDecision(ctx, record.CustomerID, record.Decision,
				fraud.Flagged(record.FraudRisk), record.Case.OrderValue, tier); err != nil {
				s.log.Error("customer profile update failed", "customer", record.CustomerID, "err", err)
			}
		}
		if !queueEmail {
			return
		}
		metrics.EmailsQueued.Inc()
		err := s.mail.SendDecision(ctx, mailer.DecisionMail{
			To:          email,
			OrderID:     record.OrderID,
			Decision:    record.Decision,
			Confidence:  record.Confidence,
			Reason:      record.Explanation,
			Category:    firstOr(record.Categories, "general"),
			Severity:    record.Severity,
			SLADeadline: record.SLADeadline,
		})
		if err != nil && !errors.Is(err, mailer.ErrNotConfigured) {
			metrics.EmailsFailed.Inc()
			s.log.Error("decision email failed", "order", record.OrderID, "err", err)
		}
	})
}

func firstOr(ss []string, def string) string {
	if len(ss) > 0 {
		return ss[0]
	}
	return def
}

func buildAgentSummary(cs models.Case, result models.DecisionResult, analysis intel.Analysis, assessment fraud.Assessment) AgentSummary {
	photo := "No"
	if cs.HandoffPhoto {
		photo = "Yes"
	}
	level := "Low"
	switch {
	case result.Confidence > 0.8:
		level = "High"
	case result.Confidence > 0.6:
		level = "Medium"
	}
	rec := result.Reason
	if rec == "" {
		rec = "Review case manually"
	}
	return AgentSummary{
		Headline: fmt.Sprintf("%s - %s priority",
			strings.ToUpper(string(result.Decision)), strings.ToUpper(string(analysis.Severity))),
		KeyFacts: []string{
			"Order: " + cs.OrderID,
			"Issue: " + issueTitle(cs.OrderStatus),
			fmt.Sprintf("Refund history: %d in 30 days", cs.RefundHistory30),
			"Photo proof: " + photo,
			"Fraud risk: " + strings.ToUpper(assessment.Label),
		},
		Recommendation:  rec,
		ConfidenceLevel: level,
	}
}

// issueTitle turns an order status slug into a display label,
// e.g. "not_delivered" -> "Not Delivered".
func issueTitle(status string) string {
	words := strings.Fields(strings.ReplaceAll(status, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

var templatesByDecision = map[models.Decision][]ResponseTemplate{
	models.DecisionRefund: {
		{ID: "full_refund", Title: "Full Refund", Text: "We apologize for the inconvenience. A full refund of ${amount} has been processed to your original payment method. Please allow 3-5 business days for it to appear."},
		{ID: "partial_refund", Title: "Partial Refund", Text: "We've processed a partial refund of ${amount} for the affected items. The amount will appear in your account within 3-5 business days."},
		{ID: "credit", Title: "Account Credit", Text: "We've added ${amount} in account credit as compensation. This credit will be automatically applied to your next order."},
	},
	models.DecisionDeny: {
		{ID: "policy", Title: "Policy Explanation", Text: "After reviewing your request, we're unable to process a refund at this time as the order was delivered as described. If you have additional information, please share it with us."},
		{ID: "abuse_warning", Title: "Account Warning", Text: "We've noticed multiple refund requests from your account recently. Please note that misuse of our refund policy may result in account restrictions."},
	},
	models.DecisionEscalate: {
		{ID: "escalate_ack", Title: "Escalation Acknowledgment", Text: "Your case has been escalated to our senior support team for further review. You'll receive an update within 24-48 hours."},
		{ID: "more_info", Title: "Request More Info", Text: "To help us resolve your issue, could you please provide additional details or photos of the problem?"},
	},
}

func responseTemplates(d models.Decision) []ResponseTemplate {
	if t, ok := templatesByDecision[d]; ok {
		return t
	}
	return templatesByDecision[models.DecisionEscalate]
}

func alternatives(d models.Decision) []Alternative {
	var out []Alternative
	if d != models.DecisionRefund {
		out = append(out, Alternative{models.DecisionRefund, "Customer has good history and issue seems legitimate", -0.1})
	}
	if d != models.DecisionDeny {
		out = append(out, Alternative{models.DecisionDeny, "Pattern suggests potential abuse or policy violation", -0.15})
	}
	if d != models.DecisionEscalate {
		out = append(out, Alternative{models.DecisionEscalate, "Case complexity requires human review", 0})
	}
	return out
}

// BatchItem is one row of a batch classification result.
type BatchItem struct {
	OrderID    string          `json:"order_id"`
	Decision   models.Decision `json:"decision"`
	Confidence float64         `json:"confidence"`
	Severity   models.Severity `json:"severity"`
	Categories []string        `json:"categories"`
}

// DecideBatch classifies a CSV of complaints without persisting or emailing,
// a dry-run view for bulk triage.
func (s *DecisionService) DecideBatch(ctx context.Context, r io.Reader) ([]BatchItem, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	get := func(rec []string, names ...string) string {
		for _, n := range names {
			if i, ok := col[n]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
		}
		return ""
	}

	var out []BatchItem
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		cs := models.Case{
			OrderID:       get(rec, "order_id"),
			OrderStatus:   get(rec, "issue_type", "order_status"),
			ComplaintText: get(rec, "complaint_text", "text"),
			CourierRating: 4.5,
		}
		if v := get(rec, "refund_history_30d"); v != "" {
			cs.RefundHistory30, _ = strconv.Atoi(v)
		}
		switch strings.ToLower(get(rec, "handoff_photo")) {
		case "true", "yes", "1":
			cs.HandoffPhoto = true
		}
		if v := get(rec, "courier_rating"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				cs.CourierRating = f
			}
		}
		if cs.OrderStatus == "" {
			cs.OrderStatus = s.analyzer.DetectIssueType(cs.ComplaintText)
		}

		result := s.engine.Predict(cs)
		analysis := s.analyzer.Analyze(cs.ComplaintText, cs)
		out = append(out, BatchItem{
			OrderID:    cs.OrderID,
			Decision:   result.Decision,
			Confidence: result.Confidence,
			Severity:   analysis.Severity,
			Categories: analysis.Categories,
		})
	}
	return out, nil
}

// Explain surfaces the engine factor breakdown for a case.
func (s *DecisionService) Explain(req DecideRequest) engine.Explanation {
	return s.engine.Explain(req.normalize(s.analyzer, time.Now().UTC()))
}
