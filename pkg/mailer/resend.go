package mailer

import (
	"context"
	"errors"

	"github.com/resend/resend-go/v3"
)

// ResendConfig holds Resend delivery settings, populated from the
// environment via pkg/config.
type ResendConfig struct {
	APIKey      string `env:"RESEND_API_KEY,required"`
	SenderEmail string `env:"RESEND_FROM_EMAIL,required"`
	SenderName  string `env:"RESEND_FROM_NAME"`
}

// ResendSender delivers messages through the Resend API.
type ResendSender struct {
	client *resend.Client
	cfg    ResendConfig
}

// NewResend creates a Sender backed by Resend.
func NewResend(cfg ResendConfig) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(cfg.APIKey),
		cfg:    cfg,
	}
}

// Send implements Sender.
func (s *ResendSender) Send(ctx context.Context, msg *Message) error {
	from := msg.From
	if from == "" {
		from = Address(s.cfg.SenderName, s.cfg.SenderEmail)
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      msg.To,
		Cc:      msg.CC,
		Bcc:     msg.BCC,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}
