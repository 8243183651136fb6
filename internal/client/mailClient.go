package client

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"streamaccts/internal/config"
)

type Mail struct {
	To      string
	Subject string
	HTML    string
}

type MailClient interface {
	Send(ctx context.Context, mail Mail) error
}

type mailClientImpl struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailClient(cfg *config.SMTP) MailClient {
	return &mailClientImpl{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.Sender(),
	}
}

func (c *mailClientImpl) Send(ctx context.Context, mail Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", mail.To)
	m.SetHeader("Subject", mail.Subject)
	m.SetBody("text/html", mail.HTML)

	if err := c.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", mail.To, err)
	}
	return nil
}

type disabledMailClient struct{}

// NewDisabledMailClient is used when no SMTP credentials are configured.
func NewDisabledMailClient() MailClient {
	return disabledMailClient{}
}

func (disabledMailClient) Send(ctx context.Context, mail Mail) error {
	return fmt.Errorf("send mail to %s: smtp not configured", mail.To)
}
