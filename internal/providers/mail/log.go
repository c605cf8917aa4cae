package mail

import (
	"context"
	"log/slog"

	"github.com/pinobite/storefront/internal/types"
)

// LogMailer writes messages to the log instead of sending them. It is the
// default for local development.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg types.Message) error {
	m.logger.InfoContext(ctx, "mail not sent, log provider",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Text,
	)
	return nil
}

func (m *LogMailer) Name() string {
	return "log"
}

// Compile-time interface check
var _ types.Mailer = (*LogMailer)(nil)
