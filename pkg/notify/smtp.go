package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/noah-isme/assa-portal-api/pkg/config"
)

// SMTPNotifier sends plain-text email through an SMTP relay.
type SMTPNotifier struct {
	client *mail.Client
	from   string
	logger *zap.Logger
}

// NewSMTPNotifier builds a notifier from config. It does not dial until the first send.
func NewSMTPNotifier(cfg config.SMTPConfig, logger *zap.Logger) (*SMTPNotifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPNotifier{client: client, from: cfg.From, logger: logger}, nil
}

// Send renders tpl and delivers it to address.
func (n *SMTPNotifier) Send(ctx context.Context, address string, tpl Template, data map[string]string) error {
	subject, body, err := Render(tpl, data)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(address); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	n.logger.Debug("email sent", zap.String("template", string(tpl)), zap.String("to", address))
	return nil
}
