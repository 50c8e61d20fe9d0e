package handlers

import (
	"net/http"

	"github.com/resolvehq/complaints-backend/internal/api/httpx"
	"github.com/resolvehq/complaints-backend/internal/mailer"
)

type AdminHandler struct {
	Mail *mailer.Mailer
}

func NewAdminHandler(mail *mailer.Mailer) *AdminHandler {
	return &AdminHandler{Mail: mail}
}

// DebugEmail reports the SMTP configuration without secrets.
func (h *AdminHandler) DebugEmail(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.Mail.Status())
}

// SMTPTest dials the SMTP server and reports whether it authenticated.
func (h *AdminHandler) SMTPTest(w http.ResponseWriter, r *http.Request) {
	st := h.Mail.TestConnection(r.Context())
	status := http.StatusOK
	if !st.ConnectionOK {
		status = http.StatusServiceUnavailable
	}
	httpx.WriteJSON(w, status, st)
}
