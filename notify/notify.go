package notify

import (
	"context"
	"log/slog"
)

// Notification kinds sent in response to billing events
const (
	KindPaymentReceipt        = "payment_receipt"
	KindPaymentFailed         = "payment_failed"
	KindSubscriptionStarted   = "subscription_started"
	KindSubscriptionCancelled = "subscription_cancelled"
	KindWelcome               = "welcome"
)

/* Sender delivers best-effort notifications (email, push) to a customer.
 * Delivery failures never fail webhook processing; callers log and move on.
 */
type Sender interface {
	Send(ctx context.Context, kind, recipient string, meta map[string]string) error
}

// LogSender records notifications to the log instead of delivering them.
// Stands in until an email/push gateway is wired up.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send logs the notification
func (s *LogSender) Send(_ context.Context, kind, recipient string, meta map[string]string) error {
	s.logger.Info("notification dispatched",
		"kind", kind,
		"recipient", recipient,
		"meta", meta)
	return nil
}
