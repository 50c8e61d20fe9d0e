package handlers

import (
	"net/http"

	"github.com/resolvehq/complaints-backend/internal/api/httpx"
	"github.com/resolvehq/complaints-backend/internal/middleware"
	"github.com/resolvehq/complaints-backend/internal/models"
	"github.com/resolvehq/complaints-backend/internal/services"
)

type FeedbackHandler struct {
	Svc *services.FeedbackService
}

func NewFeedbackHandler(svc *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{Svc: svc}
}

type feedbackReq struct {
	ComplaintID       string `json:"complaint_id"`
	OriginalDecision  string `json:"original_decision"`
	CorrectedDecision string `json:"corrected_decision"`
	Reason            string `json:"reason"`
}

func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req feedbackReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json body", nil)
		return
	}
	agent := "unknown"
	if claims, ok := middleware.GetClaims(r.Context()); ok {
		agent = claims.Username
	}
	fb := models.Feedback{
		ComplaintID:       req.ComplaintID,
		OriginalDecision:  models.Decision(req.OriginalDecision),
		CorrectedDecision: models.Decision(req.CorrectedDecision),
		Reason:            req.Reason,
		Agent:             agent,
	}
	saved, err := h.Svc.Submit(r.Context(), fb)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"feedback": saved,
	})
}
