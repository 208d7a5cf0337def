package mailer

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"github.com/wneessen/go-mail"
)

// Mailer sends notification emails over SMTP.
type Mailer struct {
	client *mail.Client
	from   string
}

// MustNewMailer creates a new Mailer from config.
func MustNewMailer() *Mailer {
	client, err := mail.NewClient(
		viper.GetString("smtp.host"),
		mail.WithPort(viper.GetInt("smtp.port")),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(os.Getenv("STOREFRONT_SMTP_USER")),
		mail.WithPassword(os.Getenv("STOREFRONT_SMTP_PASSWORD")),
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to create SMTP client: %v", err))
	}

	return &Mailer{
		client: client,
		from:   viper.GetString("smtp.from"),
	}
}

// Send delivers one HTML email. Errors propagate so the caller's retry
// mechanism applies.
func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
