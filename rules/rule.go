package rules

import (
	"fmt"

	"github.com/calmora/billing-webhooks/webhook/payload"
)

/* Rule is the per-event-type processing policy.
 * EventType may be exact ("invoice.payment_failed") or a wildcard
 * ("customer.*"); first matching rule wins, unmatched types default to
 * enabled with service-wide settings.
 */
type Rule struct {
	EventType  string
	Enabled    bool
	MaxRetries *int // Optional: override the service retry budget
}

// Validate checks if the rule configuration is valid
func (r *Rule) Validate() error {
	if err := payload.ValidateEventType(r.EventType); err != nil {
		return fmt.Errorf("invalid event_type for rule: %w", err)
	}
	if r.MaxRetries != nil && *r.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1 for rule %s", r.EventType)
	}
	return nil
}

// Matches reports whether the rule applies to the given event type
func (r *Rule) Matches(eventType string) bool {
	return payload.MatchesEventType(eventType, []string{r.EventType})
}
