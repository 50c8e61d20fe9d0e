package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/resolvehq/complaints-backend/internal/api/httpx"
	"github.com/resolvehq/complaints-backend/internal/models"
	repo "github.com/resolvehq/complaints-backend/internal/repository"
)

type AuditHandler struct {
	Complaints repo.Complaints
}

func NewAuditHandler(complaints repo.Complaints) *AuditHandler {
	return &AuditHandler{Complaints: complaints}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repo.ComplaintFilter{
		Decision:   models.Decision(q.Get("decision")),
		Severity:   models.Severity(q.Get("severity")),
		CustomerID: q.Get("customer_id"),
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			f.Offset = n
		}
	}

	rows, total, err := h.Complaints.List(r.Context(), f)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "audit query failed", nil)
		return
	}
	if rows == nil {
		rows = []models.Complaint{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"total": total,
		"items": rows,
	})
}

var exportHeader = []string{
	"complaint_id", "order_id", "customer_id", "decision", "confidence", "source",
	"rule_id", "severity", "categories", "root_cause", "sentiment", "fraud_risk",
	"fraud_score", "sla_deadline", "email_queued", "created_at",
}

// ExportCSV streams the full audit table, one row at a time.
func (h *AuditHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="audit_export_%s.csv"`, time.Now().UTC().Format("20060102")))

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return
	}

	err := h.Complaints.Export(r.Context(), func(c models.Complaint) error {
		ruleID := ""
		if c.RuleID != nil {
			ruleID = *c.RuleID
		}
		return cw.Write([]string{
			c.ComplaintID,
			c.OrderID,
			c.CustomerID,
			string(c.Decision),
			strconv.FormatFloat(c.Confidence, 'f', 3, 64),
			string(c.Source),
			ruleID,
			string(c.Severity),
			strings.Join(c.Categories, ";"),
			c.RootCause,
			c.Sentiment,
			c.FraudRisk,
			strconv.FormatFloat(c.FraudScore, 'f', 0, 64),
			c.SLADeadline.UTC().Format(time.RFC3339),
			strconv.FormatBool(c.EmailQueued),
			c.CreatedAt.UTC().Format(time.RFC3339),
		})
	})
	if err != nil {
		// headers are gone already, just stop the stream
		return
	}
	cw.Flush()
}
