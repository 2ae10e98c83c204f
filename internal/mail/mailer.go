package mail

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Mailer delivers plain-text mail. Dispatch failures are returned to the
// caller; they are never fatal to the flow that triggered them.
type Mailer interface {
	Send(ctx context.Context, subject, body string, to []string) error
}

// ConsoleMailer writes outgoing mail to the log instead of delivering it.
// Default backend for development and tests.
type ConsoleMailer struct {
	log zerolog.Logger
}

// NewConsoleMailer creates a ConsoleMailer.
func NewConsoleMailer(log zerolog.Logger) *ConsoleMailer {
	return &ConsoleMailer{log: log}
}

func (m *ConsoleMailer) Send(_ context.Context, subject, body string, to []string) error {
	m.log.Info().
		Str("subject", subject).
		Str("to", strings.Join(to, ", ")).
		Msg("mail (console backend)\n" + body)
	return nil
}
