package idempotency

import (
	"context"
	"time"
)

/* Small, focused interface in front of the dedup bookkeeping.
 * The store answers "have I seen this event id" and arbitrates which of
 * several concurrent deliveries of the same id gets to run side effects.
 * It has no opinion on what processing means.
 */

// Store records which event ids have been processed and which are in flight.
type Store interface {
	/* Seen reports whether the event id has already completed processing.
	 * Pure membership check, no side effects.
	 */
	Seen(ctx context.Context, id string) (bool, error)

	/* Begin atomically claims the event id for processing.
	 * Returns false when the id was already processed or is currently in
	 * flight; exactly one concurrent caller for a given id gets true.
	 */
	Begin(ctx context.Context, id string) (bool, error)

	/* Commit marks the event id as processed and releases the claim.
	 * Called only after the business side effect succeeded, never before.
	 */
	Commit(ctx context.Context, id string, at time.Time) error

	/* Release drops the in-flight claim without marking the id processed.
	 * Called on failure so a provider redelivery can retry from scratch.
	 */
	Release(ctx context.Context, id string) error
}
