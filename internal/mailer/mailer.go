// Package mailer delivers decision notifications over SMTP and powers the
// /debug/email and /smtp/test admin endpoints.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/resolvehq/complaints-backend/internal/config"
	"github.com/resolvehq/complaints-backend/internal/models"
	"github.com/wneessen/go-mail"
)

var ErrNotConfigured = errors.New("smtp not configured")

type Mailer struct {
	cfg config.SMTPConfig
	log *slog.Logger
}

func New(cfg config.SMTPConfig, log *slog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

// Configured reports whether credentials are present. Without them sends are
// skipped, never failed.
func (m *Mailer) Configured() bool {
	return m.cfg.User != "" && m.cfg.Password != ""
}

// DecisionMail is everything the notification template needs.
type DecisionMail struct {
	To          string
	OrderID     string
	Decision    models.Decision
	Confidence  float64
	Reason      string
	Category    string
	Severity    models.Severity
	SLADeadline time.Time
}

// SendDecision renders and sends the outcome email.
func (m *Mailer) SendDecision(ctx context.Context, dm DecisionMail) error {
	if dm.To == "" {
		return errors.New("no recipient")
	}
	if !m.Configured() {
		m.log.Warn("smtp not configured, skipping decision email", "order", dm.OrderID)
		return ErrNotConfigured
	}

	html, err := renderHTML(dm)
	if err != nil {
		return fmt.Errorf("render decision email: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
		return err
	}
	if err := msg.To(dm.To); err != nil {
		return err
	}
	msg.Subject(fmt.Sprintf("%s: %s - Order %s", m.cfg.FromName, strings.ToUpper(string(dm.Decision)), dm.OrderID))
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf("Decision: %s\nOrder: %s\nReason: %s\n",
		strings.ToUpper(string(dm.Decision)), dm.OrderID, dm.Reason))
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	client, err := m.client()
	if err != nil {
		return err
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send decision email: %w", err)
	}
	m.log.Info("decision email sent", "to", dm.To, "order", dm.OrderID, "decision", dm.Decision)
	return nil
}

func (m *Mailer) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.User),
		mail.WithPassword(m.cfg.Password),
		mail.WithTimeout(time.Duration(m.cfg.TimeoutSec) * time.Second),
	}
	// 465 means implicit TLS, anything else negotiates STARTTLS.
	if m.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	return mail.NewClient(m.cfg.Host, opts...)
}

// ConnStatus is the result of a connection probe.
type ConnStatus struct {
	Configured   bool   `json:"configured"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	ConnectionOK bool   `json:"connection_ok"`
	Error        string `json:"error,omitempty"`
}

// TestConnection dials and authenticates without sending anything.
func (m *Mailer) TestConnection(ctx context.Context) ConnStatus {
	st := ConnStatus{Configured: m.Configured(), Host: m.cfg.Host, Port: m.cfg.Port}
	if !st.Configured {
		st.Error = "SMTP not configured"
		return st
	}

	client, err := m.client()
	if err != nil {
		st.Error = err.Error()
		return st
	}
	if err := client.DialWithContext(ctx); err != nil {
		st.Error = err.Error()
		return st
	}
	_ = client.Close()
	st.ConnectionOK = true
	return st
}

// Status is the config introspection for the debug endpoint. The password is
// reported only as present or absent.
func (m *Mailer) Status() map[string]any {
	return map[string]any{
		"configured":   m.Configured(),
		"host":         m.cfg.Host,
		"port":         m.cfg.Port,
		"user":         m.cfg.User,
		"password_set": m.cfg.Password != "",
		"from":         m.cfg.From,
		"from_name":    m.cfg.FromName,
		"timeout_sec":  m.cfg.TimeoutSec,
	}
}

func renderHTML(dm DecisionMail) (string, error) {
	style, ok := decisionStyles[dm.Decision]
	if !ok {
		style = decisionStyles[models.DecisionEscalate]
	}
	var buf bytes.Buffer
	err := decisionTmpl.Execute(&buf, tmplData{
		DecisionMail: dm,
		Style:        style,
		Category:     displayCategory(dm.Category),
		Confidence:   fmt.Sprintf("%.0f%%", dm.Confidence*100),
		Processed:    time.Now().Format("January 2, 2006 at 3:04 PM"),
		Deadline:     dm.SLADeadline.Format("2006-01-02 15:04"),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func displayCategory(c string) string {
	if c == "" {
		return "General"
	}
	words := strings.Fields(strings.ReplaceAll(c, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
