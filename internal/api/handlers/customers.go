package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/resolvehq/complaints-backend/internal/api/httpx"
	"github.com/resolvehq/complaints-backend/internal/models"
	repo "github.com/resolvehq/complaints-backend/internal/repository"
	"github.com/resolvehq/complaints-backend/internal/services"
)

type CustomersHandler struct {
	Svc        *services.CustomerService
	Complaints repo.Complaints
}

func NewCustomersHandler(svc *services.CustomerService, complaints repo.Complaints) *CustomersHandler {
	return &CustomersHandler{Svc: svc, Complaints: complaints}
}

func (h *CustomersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" || id == "anonymous" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "customer id required", nil)
		return
	}
	d, err := h.Svc.Detail(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "customer lookup failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

func (h *CustomersHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "customer id required", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.Svc.Summary(r.Context(), id))
}

// ListComplaints pages through one customer's complaint rows.
func (h *CustomersHandler) ListComplaints(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "customer id required", nil)
		return
	}
	f := repo.ComplaintFilter{CustomerID: id}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			f.Offset = n
		}
	}
	rows, total, err := h.Complaints.List(r.Context(), f)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "customer complaints query failed", nil)
		return
	}
	if rows == nil {
		rows = []models.Complaint{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"total": total, "items": rows})
}

// Top lists the most-complaining customers over a trailing window.
func (h *CustomersHandler) Top(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	rows, err := h.Svc.Top(r.Context(), days, limit)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "top customers query failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"customers": rows})
}
