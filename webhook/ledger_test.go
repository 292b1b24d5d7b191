package webhook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("should return entries newest first", func(t *testing.T) {
		ledger := NewLedger(10)
		ledger.Record("evt_1", "customer.created", Succeeded, "Customer registered", at)
		ledger.Record("evt_2", "invoice.payment_succeeded", Failed, "db down", at.Add(time.Second))

		entries := ledger.Recent()

		require.Len(t, entries, 2)
		assert.Equal(t, "evt_2", entries[0].EventID)
		assert.Equal(t, "failed", entries[0].Status)
		assert.Equal(t, "evt_1", entries[1].EventID)
		assert.Equal(t, "succeeded", entries[1].Status)
		assert.NotEmpty(t, entries[0].CorrelationID)
		assert.NotEqual(t, entries[0].CorrelationID, entries[1].CorrelationID)
	})

	t.Run("should trim the oldest entries past capacity", func(t *testing.T) {
		ledger := NewLedger(2)
		ledger.Record("evt_1", "customer.created", Succeeded, "", at)
		ledger.Record("evt_2", "customer.created", Succeeded, "", at)
		ledger.Record("evt_3", "customer.created", Succeeded, "", at)

		entries := ledger.Recent()

		require.Len(t, entries, 2)
		assert.Equal(t, "evt_3", entries[0].EventID)
		assert.Equal(t, "evt_2", entries[1].EventID)
	})
}
