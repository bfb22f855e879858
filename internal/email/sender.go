// Package email delivers transactional mail over the configured SMTP
// server using go-mail.
package email

import (
	"context"
	"fmt"
	"html"
	"net"
	"time"

	"roofline_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

const subjectDeletionRequested = "Lead deletion requested"

// Sender delivers notification emails. Implementations must be safe for
// concurrent use.
type Sender interface {
	SendDeletionRequestedEmail(ctx context.Context, toEmail string, req DeletionRequestedEmail) error
}

// DeletionRequestedEmail carries the fields rendered into the admin
// notification for a new deletion request.
type DeletionRequestedEmail struct {
	LeadName        string
	LeadAddress     string
	LeadStatusLabel string
	RequestedByName string
	Reason          string
}

// NewSender returns the configured sender, or a no-op sender when email
// delivery is disabled.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return noopSender{}
	}
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

type noopSender struct{}

func (noopSender) SendDeletionRequestedEmail(context.Context, string, DeletionRequestedEmail) error {
	return nil
}

// SMTPSender delivers mail via a direct SMTP connection.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

func (s *SMTPSender) SendDeletionRequestedEmail(ctx context.Context, toEmail string, req DeletionRequestedEmail) error {
	reason := req.Reason
	if reason == "" {
		reason = "No reason given"
	}

	body := fmt.Sprintf(`<html><body>
<h2>Lead deletion requested</h2>
<p><strong>%s</strong> asked to delete the lead <strong>%s</strong>.</p>
<ul>
<li>Address: %s</li>
<li>Pipeline stage: %s</li>
<li>Reason: %s</li>
</ul>
<p>Review the request in the admin panel to approve or deny it.</p>
</body></html>`,
		html.EscapeString(req.RequestedByName),
		html.EscapeString(req.LeadName),
		html.EscapeString(req.LeadAddress),
		html.EscapeString(req.LeadStatusLabel),
		html.EscapeString(reason),
	)

	return s.send(ctx, toEmail, subjectDeletionRequested, body)
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
