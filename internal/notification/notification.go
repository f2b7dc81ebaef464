package notification

import (
	"context"
	"log/slog"
	"time"
)

const (
	// KindDeposit indicates a credit entry was recorded.
	KindDeposit = "deposit"
	// KindWithdrawal indicates a debit entry was recorded.
	KindWithdrawal = "withdrawal"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	Amount      string
	Body        string
	OccurredAt  time.Time
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		slog.String("kind", message.Kind),
		slog.String("destination", message.Destination),
		slog.String("amount", message.Amount),
		slog.String("body", message.Body),
	)
	return nil
}
