package webhook

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultLedgerSize caps the diagnostics ledger. Purely observability;
// it may be trimmed far more aggressively than the idempotency store.
const DefaultLedgerSize = 100

// LedgerEntry is one processed-delivery record kept for diagnostics.
type LedgerEntry struct {
	CorrelationID string    `json:"correlation_id"`
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	Status        string    `json:"status"`
	Summary       string    `json:"summary"`
	At            time.Time `json:"at"`
}

/* Ledger is an append-trim list of recent deliveries guarded by its own
 * lock, fully decoupled from idempotency correctness.
 */
type Ledger struct {
	mu      sync.Mutex
	max     int
	entries []LedgerEntry
}

// NewLedger creates a ledger keeping at most max entries.
func NewLedger(max int) *Ledger {
	if max <= 0 {
		max = DefaultLedgerSize
	}
	return &Ledger{max: max}
}

// Record appends an entry, assigning it a correlation id, and trims the oldest.
func (l *Ledger) Record(eventID, eventType string, status Status, summary string, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, LedgerEntry{
		CorrelationID: uuid.New().String(),
		EventID:       eventID,
		EventType:     eventType,
		Status:        status.String(),
		Summary:       summary,
		At:            at,
	})
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
}

// Recent returns the retained entries, newest first.
func (l *Ledger) Recent() []LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]LedgerEntry, len(l.entries))
	for i, entry := range l.entries {
		out[len(l.entries)-1-i] = entry
	}
	return out
}
