package reminder

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yukikurage/sponsor-deliverables-api/internal/mailer"
	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
)

const displayDateLayout = "Jan 2, 2006"

// DigestItem is one line of an admin overdue digest.
type DigestItem struct {
	DeliverableID uint64
	Title         string
	SponsorName   string
	EventName     string
	DueDate       time.Time
	DaysOverdue   int
}

var funcs = template.FuncMap{
	"date":   func(t time.Time) string { return t.Format(displayDateLayout) },
	"plural": plural,
}

var reminderTmpl = template.Must(template.New("reminder").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Subject}}</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="background: #2563eb; color: white; padding: 20px; margin: 0;">SponsorAssure Reminder</h1>
  <p>Hi {{.Name}},</p>
  <div style="border-left: 4px solid {{.Accent}}; padding-left: 16px;">
    <h3>{{.Headline}}</h3>
    <p><strong>Deliverable:</strong> {{.Title}}</p>
    {{- if .Sponsor}}
    <p><strong>Sponsor:</strong> {{.Sponsor}}</p>
    {{- end}}
    {{- if .Event}}
    <p><strong>Event:</strong> {{.Event}}</p>
    {{- end}}
    <p><strong>Due Date:</strong> {{date .DueDate}}</p>
  </div>
  <p>{{.Nudge}}</p>
  <a href="{{.DashboardURL}}" style="display: inline-block; background: #2563eb; color: white; padding: 12px 24px; text-decoration: none;">View in Dashboard</a>
  <p>Best regards,<br>The SponsorAssure Team</p>
</div>
</body>
</html>
`))

var digestTmpl = template.Must(template.New("digest").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Subject}}</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="background: #dc2626; color: white; padding: 20px; margin: 0;">Overdue Deliverables Alert</h1>
  <p>Hi {{.Name}},</p>
  <p><strong>You have {{len .Items}} overdue {{plural (len .Items) "deliverable"}} that require immediate attention:</strong></p>
  {{- range .Items}}
  <div style="background: white; margin: 16px 0; padding: 16px; border-left: 4px solid #dc2626;">
    <h4 style="margin: 0 0 8px 0; color: #dc2626;">{{.Title}}</h4>
    {{- if .SponsorName}}
    <p style="margin: 4px 0;"><strong>Sponsor:</strong> {{.SponsorName}}</p>
    {{- end}}
    {{- if .EventName}}
    <p style="margin: 4px 0;"><strong>Event:</strong> {{.EventName}}</p>
    {{- end}}
    <p style="margin: 4px 0;"><strong>Due Date:</strong> {{date .DueDate}} ({{.DaysOverdue}} {{plural .DaysOverdue "day"}} overdue)</p>
  </div>
  {{- end}}
  <a href="{{.DashboardURL}}" style="display: inline-block; background: #dc2626; color: white; padding: 12px 24px; text-decoration: none;">View Dashboard</a>
  <p>Best regards,<br>The SponsorAssure Team</p>
</div>
</body>
</html>
`))

// Subject returns the subject line for a reminder.
func Subject(d Decision) string {
	switch d.Kind {
	case KindOverdueDaily:
		late := -d.DaysOffset
		return fmt.Sprintf("Overdue: %s was due %d %s ago", d.Title, late, plural(late, "day"))
	case KindDueToday:
		return fmt.Sprintf("Reminder: %s due today", d.Title)
	default:
		return fmt.Sprintf("Reminder: %s due in %d %s", d.Title, d.DaysUntilDue, plural(d.DaysUntilDue, "day"))
	}
}

// DigestSubject returns the subject line for an overdue digest of n items.
func DigestSubject(n int) string {
	return fmt.Sprintf("Urgent: %d overdue %s need attention", n, plural(n, "deliverable"))
}

// BuildReminder renders the assignee email for d.
func BuildReminder(d Decision, appURL string) (mailer.Message, error) {
	subject := Subject(d)

	headline, nudge, accent := "", "", "#2563eb"
	switch d.Kind {
	case KindOverdueDaily:
		headline = "Deliverable Overdue"
		nudge = "This deliverable is past its due date. Please complete it or update its status as soon as possible."
		accent = "#dc2626"
	case KindDueToday:
		headline = "Deliverable Due Today"
		nudge = "This deliverable is due today! Please update its status in your dashboard as soon as it's completed."
		accent = "#dc2626"
	case KindDueTomorrow:
		headline = "Deliverable Due in 1 Day"
		nudge = "This deliverable is due tomorrow. Make sure you have everything ready to complete it on time."
		accent = "#dc2626"
	default:
		headline = fmt.Sprintf("Deliverable Due in %d Days", d.DaysUntilDue)
		nudge = "This is a friendly reminder to help you stay on track with your sponsor commitments."
		if d.DaysUntilDue <= 3 {
			accent = "#d97706"
		}
	}

	var html bytes.Buffer
	err := reminderTmpl.Execute(&html, map[string]any{
		"Subject":      subject,
		"Name":         d.RecipientName,
		"Accent":       accent,
		"Headline":     headline,
		"Title":        d.Title,
		"Sponsor":      d.SponsorName,
		"Event":        d.EventName,
		"DueDate":      d.DueDate,
		"Nudge":        nudge,
		"DashboardURL": dashboardURL(appURL, "/dashboard/deliverables"),
	})
	if err != nil {
		return mailer.Message{}, fmt.Errorf("failed to render reminder: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\n%s\n\nDeliverable: %s\n", d.RecipientName, headline, d.Title)
	if d.SponsorName != "" {
		fmt.Fprintf(&text, "Sponsor: %s\n", d.SponsorName)
	}
	if d.EventName != "" {
		fmt.Fprintf(&text, "Event: %s\n", d.EventName)
	}
	fmt.Fprintf(&text, "Due Date: %s\n\n%s\n\n%s\n", d.DueDate.Format(displayDateLayout), nudge, dashboardURL(appURL, "/dashboard/deliverables"))

	return mailer.Message{
		To:      d.RecipientEmail,
		ToName:  d.RecipientName,
		Subject: subject,
		Text:    text.String(),
		HTML:    html.String(),
		Tag:     string(d.Kind),
	}, nil
}

// BuildDigest renders the overdue digest for one admin.
func BuildDigest(admin models.Profile, items []DigestItem, appURL string) (mailer.Message, error) {
	subject := DigestSubject(len(items))

	var html bytes.Buffer
	err := digestTmpl.Execute(&html, map[string]any{
		"Subject":      subject,
		"Name":         admin.DisplayName(),
		"Items":        items,
		"DashboardURL": dashboardURL(appURL, "/dashboard"),
	})
	if err != nil {
		return mailer.Message{}, fmt.Errorf("failed to render digest: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\nYou have %d overdue %s that require immediate attention:\n\n", admin.DisplayName(), len(items), plural(len(items), "deliverable"))
	for _, it := range items {
		fmt.Fprintf(&text, "- %s", it.Title)
		if it.SponsorName != "" {
			fmt.Fprintf(&text, " (%s", it.SponsorName)
			if it.EventName != "" {
				fmt.Fprintf(&text, ", %s", it.EventName)
			}
			text.WriteString(")")
		}
		fmt.Fprintf(&text, ": due %s, %d %s overdue\n", it.DueDate.Format(displayDateLayout), it.DaysOverdue, plural(it.DaysOverdue, "day"))
	}
	fmt.Fprintf(&text, "\n%s\n", dashboardURL(appURL, "/dashboard"))

	return mailer.Message{
		To:      admin.Email,
		ToName:  admin.DisplayName(),
		Subject: subject,
		Text:    text.String(),
		HTML:    html.String(),
		Tag:     "overdue-digest",
	}, nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func dashboardURL(appURL, path string) string {
	return strings.TrimRight(appURL, "/") + path
}
