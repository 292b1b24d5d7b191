package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRulesFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("success - full config", func(t *testing.T) {
		path := writeRulesFile(t, `
rules:
  - event_type: "invoice.payment_succeeded"
  - event_type: "invoice.payment_failed"
    max_retries: 5
  - event_type: "payment_method.attached"
    enabled: false
`)

		table := NewTable()
		require.NoError(t, table.Load(path))
		assert.Len(t, table.List(), 3)

		rule := table.For("invoice.payment_succeeded")
		require.NotNil(t, rule)
		assert.True(t, rule.Enabled)
		assert.Nil(t, rule.MaxRetries)

		rule = table.For("invoice.payment_failed")
		require.NotNil(t, rule)
		require.NotNil(t, rule.MaxRetries)
		assert.Equal(t, 5, *rule.MaxRetries)
	})

	t.Run("error - missing file", func(t *testing.T) {
		table := NewTable()
		err := table.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading rules file")
	})

	t.Run("error - invalid YAML", func(t *testing.T) {
		path := writeRulesFile(t, "rules: [random")

		table := NewTable()
		err := table.Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing rules YAML")
	})

	t.Run("error - invalid event type", func(t *testing.T) {
		path := writeRulesFile(t, `
rules:
  - event_type: "has spaces"
`)

		table := NewTable()
		require.Error(t, table.Load(path))
	})

	t.Run("error - zero max retries", func(t *testing.T) {
		path := writeRulesFile(t, `
rules:
  - event_type: "invoice.payment_failed"
    max_retries: 0
`)

		table := NewTable()
		require.Error(t, table.Load(path))
	})
}

func TestAllowed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  - event_type: "payment_method.attached"
    enabled: false
  - event_type: "customer.*"
`), 0600))

	table := NewTable()
	require.NoError(t, table.Load(path))

	t.Run("disabled rule blocks", func(t *testing.T) {
		assert.False(t, table.Allowed("payment_method.attached"))
	})

	t.Run("wildcard rule matches", func(t *testing.T) {
		assert.True(t, table.Allowed("customer.subscription.updated"))
	})

	t.Run("unlisted type defaults to allowed", func(t *testing.T) {
		assert.True(t, table.Allowed("invoice.payment_succeeded"))
	})

	t.Run("empty table allows everything", func(t *testing.T) {
		assert.True(t, NewTable().Allowed("anything.at_all"))
	})
}

func TestMaxRetriesFor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  - event_type: "invoice.payment_failed"
    max_retries: 5
  - event_type: "customer.*"
`), 0600))

	table := NewTable()
	require.NoError(t, table.Load(path))

	attempts, ok := table.MaxRetriesFor("invoice.payment_failed")
	assert.True(t, ok)
	assert.Equal(t, 5, attempts)

	_, ok = table.MaxRetriesFor("customer.created")
	assert.False(t, ok)

	_, ok = table.MaxRetriesFor("invoice.payment_succeeded")
	assert.False(t, ok)
}
