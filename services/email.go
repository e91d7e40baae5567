package services

import (
	"bytes"
	"context"
	"fmt"
	"lessonbook_app_go/config"
	"strings"
	"sync"
	"text/template"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Email template names
const (
	TemplateReservationConfirmation = "reservation_confirmation"
	TemplateReservationTeacher      = "reservation_teacher_notice"
	TemplateRequestReceived         = "booking_request_received"
	TemplateRequestTeacher          = "booking_request_teacher_notice"
	TemplateQuoteSent               = "quote_sent"
	TemplateReservationReminder     = "reservation_reminder"
)

// Message is a templated email: a template name plus the fields it renders
type Message struct {
	To       string
	Template string
	Fields   map[string]string
}

// Mailer delivers a message. Implementations report failure through the
// returned error and never panic.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type emailTemplate struct {
	subject *template.Template
	body    *template.Template
}

var emailTemplates = map[string]emailTemplate{
	TemplateReservationConfirmation: mustEmailTemplate(
		"Your lessons with {{.teacher_name}} are booked",
		`Hi {{.customer_name}},

Your booking with {{.teacher_name}} is confirmed:
{{.slots}}
Total: {{.total_hours}} h{{if .total_amount}}, {{.total_amount}} {{.currency}}{{end}}

Payment status: pending.
`),
	TemplateReservationTeacher: mustEmailTemplate(
		"New booking from {{.customer_name}}",
		`{{.customer_name}} <{{.customer_email}}> booked:
{{.slots}}
Total: {{.total_hours}} h{{if .total_amount}}, {{.total_amount}} {{.currency}}{{end}}
{{if .notes}}
Notes:
{{.notes}}{{end}}
`),
	TemplateRequestReceived: mustEmailTemplate(
		"We received your request for {{.teacher_name}}",
		`Hi {{.customer_name}},

{{.teacher_name}} received your request and will reply with a quote.

{{.notes}}
`),
	TemplateRequestTeacher: mustEmailTemplate(
		"New booking request from {{.customer_name}}",
		`{{.customer_name}} <{{.customer_email}}> sent a request:

{{.notes}}
`),
	TemplateQuoteSent: mustEmailTemplate(
		"Your quote from {{.teacher_name}}",
		`Hi {{.customer_name}},

{{.teacher_name}} sent you a quote:
{{.description}}
Duration: {{.duration_hours}} h
Amount: {{.amount}} {{.currency}}
{{if .notes}}
{{.notes}}
{{end}}{{if .invoice_ref}}Invoice reference: {{.invoice_ref}}
{{end}}`),
	TemplateReservationReminder: mustEmailTemplate(
		"Reminder: lesson with {{.teacher_name}} on {{.date}}",
		`Hi {{.customer_name}},

This is a reminder of your lesson with {{.teacher_name}} on {{.date}} from {{.start_time}} to {{.end_time}}.
`),
}

func mustEmailTemplate(subject, body string) emailTemplate {
	return emailTemplate{
		subject: template.Must(template.New("subject").Option("missingkey=zero").Parse(subject)),
		body:    template.Must(template.New("body").Option("missingkey=zero").Parse(body)),
	}
}

// RenderMessage produces the subject and plain-text body of a message
func RenderMessage(msg Message) (string, string, error) {
	tmpl, ok := emailTemplates[msg.Template]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", msg.Template)
	}
	var subject, body bytes.Buffer
	if err := tmpl.subject.Execute(&subject, msg.Fields); err != nil {
		return "", "", fmt.Errorf("failed to render subject of %s: %w", msg.Template, err)
	}
	if err := tmpl.body.Execute(&body, msg.Fields); err != nil {
		return "", "", fmt.Errorf("failed to render body of %s: %w", msg.Template, err)
	}
	return strings.TrimSpace(subject.String()), body.String(), nil
}

// ResendMailer sends email through the Resend API
type ResendMailer struct {
	client *resend.Client
	from   string
}

// NewMailer picks the mailer for the configuration: a log-only mailer in
// test mode, Resend otherwise.
func NewMailer(cfg *config.Config) (Mailer, error) {
	if cfg.EmailTestMode {
		return LogMailer{}, nil
	}
	if cfg.ResendAPIKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY not configured")
	}
	return &ResendMailer{
		client: resend.NewClient(cfg.ResendAPIKey),
		from:   fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
	}, nil
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("email has no recipient")
	}
	subject, body, err := RenderMessage(msg)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: subject,
		Text:    body,
	}
	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	zap.L().Info("email sent", zap.String("template", msg.Template), zap.String("resend_id", sent.Id))
	return nil
}

// LogMailer logs rendered messages instead of sending them
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	subject, body, err := RenderMessage(msg)
	if err != nil {
		return err
	}
	zap.L().Info("email (test mode, not sent)",
		zap.String("to", msg.To),
		zap.String("template", msg.Template),
		zap.String("subject", subject),
		zap.String("body", body))
	return nil
}

// Notifier sends messages off the request path. Failures are logged and
// counted; they never reach the caller.
type Notifier struct {
	mailer Mailer
	wg     sync.WaitGroup
}

// NewNotifier wraps a mailer
func NewNotifier(mailer Mailer) *Notifier {
	return &Notifier{mailer: mailer}
}

// Dispatch sends msg on its own goroutine
func (n *Notifier) Dispatch(msg Message) {
	if n == nil || n.mailer == nil {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				notificationFailures.WithLabelValues(msg.Template).Inc()
				zap.L().Error("email dispatch panicked", zap.String("template", msg.Template), zap.Any("panic", r))
			}
		}()
		if err := n.mailer.Send(context.Background(), msg); err != nil {
			notificationFailures.WithLabelValues(msg.Template).Inc()
			zap.L().Warn("failed to send email",
				zap.String("template", msg.Template),
				zap.String("to", msg.To),
				zap.Error(err))
		}
	}()
}

// Wait blocks until every dispatched message has been handled
func (n *Notifier) Wait() {
	if n != nil {
		n.wg.Wait()
	}
}

// Notifications is the notifier used by the booking flows
var Notifications = NewNotifier(LogMailer{})

// SetNotifier replaces the package notifier
func SetNotifier(n *Notifier) {
	Notifications = n
}
