package email

import (
	"context"

	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

// LogSender no envía nada: deja el mensaje en el log. Se usa cuando no hay SMTP del sistema.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, m Message) error {
	logger.From(ctx).Info("email not sent (no system smtp configured)",
		logger.Component("email"),
		logger.Email(m.To),
		logger.String("subject", m.Subject),
		logger.String("text", m.Text),
	)
	return nil
}
