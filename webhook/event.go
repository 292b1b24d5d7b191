package webhook

import (
	"time"

	"github.com/calmora/billing-webhooks/webhook/payload"
)

/* Event represents one provider-reported state change
 * Uses value semantics as it represents data, not behavior
 */
type Event struct {
	// ID is the provider-assigned identifier, globally unique per
	// event occurrence. It is the identity key for idempotency.
	ID string

	// Type is the classified event type; RawType keeps the provider
	// string even when Type is TypeUnsupported.
	Type    EventType
	RawType string

	// CreatedAt is the provider-asserted creation time. Events may
	// arrive out of order, so it is diagnostic only.
	CreatedAt time.Time

	// Payload is the provider's resource snapshot (data.object).
	// Handlers extract required fields fallibly; nothing is assumed.
	Payload payload.Object

	// Diagnostic metadata, not used for correctness
	Livemode  bool
	RequestID string
}
