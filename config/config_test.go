package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmora/billing-webhooks/webhook/signature"
)

func TestSecrets(t *testing.T) {
	primary, err := signature.GenerateSecret(32)
	require.NoError(t, err)
	next, err := signature.GenerateSecret(32)
	require.NoError(t, err)

	t.Run("should return the primary secret", func(t *testing.T) {
		config := Config{SignatureSecret: primary.String()}

		secrets, err := config.Secrets()

		require.NoError(t, err)
		require.Len(t, secrets, 1)
		assert.Equal(t, primary.String(), secrets[0].String())
	})

	t.Run("should include the rotation secret when set", func(t *testing.T) {
		config := Config{
			SignatureSecret:     primary.String(),
			SignatureSecretNext: next.String(),
		}

		secrets, err := config.Secrets()

		require.NoError(t, err)
		require.Len(t, secrets, 2)
		assert.Equal(t, next.String(), secrets[1].String())
	})

	t.Run("should fail when no secret is configured", func(t *testing.T) {
		config := Config{}

		_, err := config.Secrets()

		assert.Error(t, err)
	})

	t.Run("should fail on a malformed secret", func(t *testing.T) {
		config := Config{SignatureSecret: "not-a-secret"}

		_, err := config.Secrets()

		assert.Error(t, err)
	})
}

func TestRetryPolicy(t *testing.T) {
	t.Run("should parse the delay schedule", func(t *testing.T) {
		config := Config{
			MaxAttempts:           3,
			RetryDelays:           "1s, 5s, 15s",
			AttemptTimeoutSeconds: 30,
		}

		policy, err := config.RetryPolicy()

		require.NoError(t, err)
		assert.Equal(t, 3, policy.MaxAttempts)
		assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 15 * time.Second}, policy.Delays)
		assert.Equal(t, 30*time.Second, policy.AttemptTimeout)
	})

	t.Run("should fail on a malformed delay", func(t *testing.T) {
		config := Config{RetryDelays: "1s,soon"}

		_, err := config.RetryPolicy()

		assert.Error(t, err)
	})
}

func TestTolerance(t *testing.T) {
	assert.Equal(t, 2*time.Minute, (&Config{ReplayWindowSeconds: 120}).Tolerance())
	assert.Equal(t, signature.DefaultTolerance, (&Config{}).Tolerance())
}
