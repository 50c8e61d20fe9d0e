package handlers

import (
	"net/http"
	"strconv"

	"github.com/resolvehq/complaints-backend/internal/api/httpx"
	"github.com/resolvehq/complaints-backend/internal/services"
)

type AnalyticsHandler struct {
	Svc       *services.AnalyticsService
	Customers *services.CustomerService
}

func NewAnalyticsHandler(svc *services.AnalyticsService, customers *services.CustomerService) *AnalyticsHandler {
	return &AnalyticsHandler{Svc: svc, Customers: customers}
}

func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.Overview(r.Context(), queryInt(r, "days", 30))
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "analytics query failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *AnalyticsHandler) RootCauses(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Svc.RootCauses(r.Context(), queryInt(r, "days", 30))
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "analytics query failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"root_causes": rows})
}

func (h *AnalyticsHandler) Timeseries(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Svc.Timeseries(r.Context(), queryInt(r, "days", 30))
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "analytics query failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"trend": rows})
}

func (h *AnalyticsHandler) TopCustomers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Customers.Top(r.Context(), queryInt(r, "days", 30), queryInt(r, "limit", 20))
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "analytics query failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"customers": rows})
}
