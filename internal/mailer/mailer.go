package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"user_service/internal/config"
	"user_service/internal/models"

	gomail "github.com/wneessen/go-mail"
)

const welcomeBody = `Hello %s,

your account has been created. You can now log in with this address.
`

// Notifier tells a freshly created user about their account.
type Notifier interface {
	NotifyUserCreated(ctx context.Context, user models.User) error
}

// SMTPNotifier delivers notifications through an SMTP relay.
type SMTPNotifier struct {
	client  *gomail.Client
	from    string
	subject string
}

// New returns an SMTP notifier, or a no-op one when mail is disabled.
func New(cfg config.Mail, log *slog.Logger) (Notifier, error) {
	const op = "mailer.New"

	if !cfg.Enabled {
		log.Info("mail notifications disabled")
		return NopNotifier{}, nil
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTimeout(cfg.Timeout),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &SMTPNotifier{
		client:  client,
		from:    cfg.From,
		subject: cfg.Subject,
	}, nil
}

func (n *SMTPNotifier) NotifyUserCreated(ctx context.Context, user models.User) error {
	const op = "mailer.NotifyUserCreated"

	msg, err := n.welcomeMessage(user)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (n *SMTPNotifier) welcomeMessage(user models.User) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return nil, err
	}
	if err := msg.To(user.Mail); err != nil {
		return nil, err
	}
	msg.Subject(n.subject)
	msg.SetBodyString(gomail.TypeTextPlain, fmt.Sprintf(welcomeBody, user.Mail))

	return msg, nil
}

type NopNotifier struct{}

func (NopNotifier) NotifyUserCreated(context.Context, models.User) error { return nil }
