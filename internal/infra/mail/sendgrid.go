package mail

import (
	"context"
	"fmt"

	"github.com/eternalmoments/backend/internal/config"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender sends HTML email through SendGrid.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridSender(cfg *config.Config) *SendGridSender {
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.SendGrid.APIKey),
		fromEmail: cfg.SendGrid.FromEmail,
		fromName:  cfg.SendGrid.FromName,
	}
}

func (s *SendGridSender) Send(ctx context.Context, toName, toEmail, subject, html string) error {
	from := sgmail.NewEmail(s.fromName, s.fromEmail)
	to := sgmail.NewEmail(toName, toEmail)
	msg := sgmail.NewSingleEmail(from, subject, to, "", html)

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
