package mailer

import (
	"html/template"

	"github.com/resolvehq/complaints-backend/internal/models"
)

type decisionStyle struct {
	Color   string
	Heading string
	Lead    string
}

var decisionStyles = map[models.Decision]decisionStyle{
	models.DecisionRefund: {
		Color:   "#16a34a",
		Heading: "Refund Approved",
		Lead:    "Good news - your refund has been approved and will be processed shortly.",
	},
	models.DecisionDeny: {
		Color:   "#dc2626",
		Heading: "Complaint Reviewed",
		Lead:    "After review, we are unable to issue a refund for this order.",
	},
	models.DecisionEscalate: {
		Color:   "#d97706",
		Heading: "Under Review",
		Lead:    "Your complaint has been escalated to our support team for a closer look.",
	},
}

type tmplData struct {
	DecisionMail
	Style      decisionStyle
	Category   string
	Confidence string
	Processed  string
	Deadline   string
}

var decisionTmpl = template.Must(template.New("decision").Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background:#f3f4f6;font-family:Arial,Helvetica,sans-serif;">
  <div style="max-width:560px;margin:24px auto;background:#ffffff;border-radius:8px;overflow:hidden;">
    <div style="background:{{.Style.Color}};color:#ffffff;padding:20px 28px;">
      <h2 style="margin:0;">{{.Style.Heading}}</h2>
    </div>
    <div style="padding:24px 28px;color:#111827;">
      <p>{{.Style.Lead}}</p>
      <table style="width:100%;border-collapse:collapse;margin:16px 0;">
        <tr><td style="padding:6px 0;color:#6b7280;">Order</td><td style="padding:6px 0;">{{.OrderID}}</td></tr>
        <tr><td style="padding:6px 0;color:#6b7280;">Category</td><td style="padding:6px 0;">{{.Category}}</td></tr>
        <tr><td style="padding:6px 0;color:#6b7280;">Severity</td><td style="padding:6px 0;">{{.Severity}}</td></tr>
        <tr><td style="padding:6px 0;color:#6b7280;">Confidence</td><td style="padding:6px 0;">{{.Confidence}}</td></tr>
        <tr><td style="padding:6px 0;color:#6b7280;">Response due</td><td style="padding:6px 0;">{{.Deadline}}</td></tr>
      </table>
      <p style="color:#374151;">{{.Reason}}</p>
      <p style="color:#9ca3af;font-size:12px;margin-top:24px;">Processed {{.Processed}}. This is an automated message, replies are not monitored.</p>
    </div>
  </div>
</body>
</html>`))
