package notifier

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes would-be mail to the log instead of sending it.
// Used in development so tokens and magic links land in the console.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLog(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(_ context.Context, recipient, subject, body string) error {
	n.log.Info().
		Str("recipient", recipient).
		Str("subject", subject).
		Str("body", body).
		Msg("outbound mail (log sender)")
	return nil
}
