package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"corporate-gifting/internal/config"
	"corporate-gifting/internal/domain/ports/adapter"
	"corporate-gifting/internal/infra/i18n"
	"corporate-gifting/internal/infra/logging"
)

var _ adapter.Notifier = (*SMTPNotifier)(nil)

// SendFunc matches (*mail.Client).DialAndSendWithContext.
type SendFunc func(ctx context.Context, msgs ...*mail.Msg) error

type SMTPNotifier struct {
	from   string
	domain string
	t      *i18n.Translator
	send   SendFunc
	now    func() time.Time
	dev    bool
	log    *zerolog.Logger
}

func NewSMTPNotifier(cfg config.EmailConfig, t *i18n.Translator, dev bool, logger *zerolog.Logger) (*SMTPNotifier, error) {
	check := mail.NewMsg()
	if err := check.From(cfg.From); err != nil {
		return nil, fmt.Errorf("email.from: %w", err)
	}
	from, err := check.GetSender(false)
	if err != nil {
		return nil, fmt.Errorf("email.from: %w", err)
	}

	client, err := mail.NewClient(cfg.Host, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	l := logger.With().Str("component", "SMTPNotifier").Logger()
	return &SMTPNotifier{
		from:   cfg.From,
		domain: domainOf(from),
		t:      t,
		send:   client.DialAndSendWithContext,
		now:    time.Now,
		dev:    dev,
		log:    &l,
	}, nil
}

func clientOptions(cfg config.EmailConfig) []mail.Option {
	var opts []mail.Option
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	switch cfg.TLS {
	case "implicit":
		opts = append(opts, mail.WithSSLPort(false))
	case "opportunistic":
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	case "none":
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	return opts
}

func (n *SMTPNotifier) SendInvite(ctx context.Context, msg adapter.InviteMessage) error {
	return n.deliver(ctx, composeInvite(n.t, msg))
}

func (n *SMTPNotifier) SendConfirmation(ctx context.Context, msg adapter.ConfirmationMessage) error {
	return n.deliver(ctx, composeConfirmation(n.t, msg))
}

func (n *SMTPNotifier) deliver(ctx context.Context, e Email) error {
	m, err := n.message(e)
	if err != nil {
		return err
	}
	to := logging.Redact(e.To, n.dev)
	l := logging.With(ctx, n.log)
	if err := n.send(ctx, m); err != nil {
		l.Warn().Err(err).Str("to", to).Msg("smtp send failed")
		return fmt.Errorf("smtp: %w", err)
	}
	l.Debug().Str("to", to).Str("subject", e.Subject).Msg("email sent")
	return nil
}

// message builds a quoted-printable text/plain message so relays without
// 8BITMIME still carry non-ASCII copy intact.
func (n *SMTPNotifier) message(e Email) (*mail.Msg, error) {
	m := mail.NewMsg(mail.WithEncoding(mail.EncodingQP), mail.WithCharset(mail.CharsetUTF8))
	if err := m.From(n.from); err != nil {
		return nil, fmt.Errorf("email.from: %w", err)
	}
	if err := m.To(e.To); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(e.Subject)
	m.SetDateWithValue(n.now().UTC())
	m.SetMessageIDWithValue(uuid.NewString() + "@" + n.domain)
	m.SetBodyString(mail.TypeTextPlain, e.Body)
	return m, nil
}

func domainOf(addr string) string {
	if i := strings.LastIndexByte(addr, '@'); i >= 0 {
		return addr[i+1:]
	}
	return "localhost"
}
