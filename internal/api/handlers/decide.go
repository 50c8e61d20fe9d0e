package handlers

import (
	"net/http"
	"strings"

	"github.com/resolvehq/complaints-backend/internal/api/httpx"
	"github.com/resolvehq/complaints-backend/internal/intel"
	"github.com/resolvehq/complaints-backend/internal/services"
)

type DecideHandler struct {
	Svc      *services.DecisionService
	Analyzer *intel.Analyzer
}

func NewDecideHandler(svc *services.DecisionService, analyzer *intel.Analyzer) *DecideHandler {
	return &DecideHandler{Svc: svc, Analyzer: analyzer}
}

// Decide classifies a single complaint submission.
func (h *DecideHandler) Decide(w http.ResponseWriter, r *http.Request) {
	var req services.DecideRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json body", err.Error())
		return
	}
	if req.ComplaintText == "" && req.IssueType == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "complaint_text or issue_type is required", nil)
		return
	}
	resp, err := h.Svc.Decide(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "decision failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// Explain returns the factor breakdown without persisting anything.
func (h *DecideHandler) Explain(w http.ResponseWriter, r *http.Request) {
	var req services.DecideRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json body", err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.Svc.Explain(req))
}

// Batch classifies an uploaded CSV of complaints.
func (h *DecideHandler) Batch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "multipart form required", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "no file provided", nil)
		return
	}
	defer file.Close()
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid file, please upload a CSV", nil)
		return
	}

	items, err := h.Svc.DecideBatch(r.Context(), file)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"processed": len(items),
		"results":   items,
	})
}

type rewriteReq struct {
	Text string `json:"text"`
}

// Rewrite turns a raw complaint into a clear, professional version.
func (h *DecideHandler) Rewrite(w http.ResponseWriter, r *http.Request) {
	var req rewriteReq
	if err := httpx.DecodeJSON(r, &req); err != nil || strings.TrimSpace(req.Text) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "text is required", nil)
		return
	}
	rewritten := h.Analyzer.Rewrite(req.Text)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"original":     req.Text,
		"rewritten":    rewritten,
		"improvements": h.Analyzer.Improvements(req.Text, rewritten),
	})
}
