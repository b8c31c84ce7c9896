package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"corporate-gifting/internal/domain/ports/adapter"
	"corporate-gifting/internal/infra/i18n"
	"corporate-gifting/internal/infra/logging"
)

var _ adapter.Notifier = (*LogNotifier)(nil)

// LogNotifier renders emails and writes them to the log instead of sending them.
// It keeps the last rendered messages for local inspection.
type LogNotifier struct {
	t   *i18n.Translator
	dev bool
	log *zerolog.Logger

	mu   sync.Mutex
	sent []Email
}

func NewLogNotifier(t *i18n.Translator, dev bool, logger *zerolog.Logger) *LogNotifier {
	l := logger.With().Str("component", "LogNotifier").Logger()
	return &LogNotifier{t: t, dev: dev, log: &l}
}

func (n *LogNotifier) SendInvite(ctx context.Context, msg adapter.InviteMessage) error {
	return n.emit(ctx, composeInvite(n.t, msg))
}

func (n *LogNotifier) SendConfirmation(ctx context.Context, msg adapter.ConfirmationMessage) error {
	return n.emit(ctx, composeConfirmation(n.t, msg))
}

func (n *LogNotifier) emit(ctx context.Context, e Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	n.sent = append(n.sent, e)
	if len(n.sent) > 100 {
		n.sent = n.sent[len(n.sent)-100:]
	}
	n.mu.Unlock()

	l := logging.With(ctx, n.log)
	ev := l.Info().Str("to", logging.Redact(e.To, n.dev)).Str("subject", e.Subject)
	if n.dev {
		ev = ev.Str("body", e.Body)
	}
	ev.Msg("email (log mode)")
	return nil
}

// Sent returns a copy of the retained messages.
func (n *LogNotifier) Sent() []Email {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Email(nil), n.sent...)
}
