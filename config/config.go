package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/calmora/billing-webhooks/webhook"
	"github.com/calmora/billing-webhooks/webhook/signature"
)

type Config struct {
	Port string `mapstructure:"PORT"`

	// Signature verification
	SignatureHeader     string `mapstructure:"SIGNATURE_HEADER"`
	SignatureSecret     string `mapstructure:"SIGNATURE_SECRET"`
	SignatureSecretNext string `mapstructure:"SIGNATURE_SECRET_NEXT"` // Optional: rotation grace secret
	ReplayWindowSeconds int    `mapstructure:"REPLAY_WINDOW_SECONDS"`

	// Retry orchestration
	MaxAttempts           int    `mapstructure:"MAX_ATTEMPTS"`
	RetryDelays           string `mapstructure:"RETRY_DELAYS"` // e.g. "1s,5s,15s"
	AttemptTimeoutSeconds int    `mapstructure:"ATTEMPT_TIMEOUT_SECONDS"`

	// Idempotency store: memory, redis or bolt
	IdempotencyBackend  string `mapstructure:"IDEMPOTENCY_BACKEND"`
	IdempotencyCapacity int    `mapstructure:"IDEMPOTENCY_CAPACITY"`
	RedisAddr           string `mapstructure:"REDIS_ADDR"`
	RedisPassword       string `mapstructure:"REDIS_PASSWORD"`
	RedisDB             int    `mapstructure:"REDIS_DB"`
	BoltPath            string `mapstructure:"BOLT_PATH"`

	// Billing storage
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Processing rules
	RulesFile string `mapstructure:"RULES_FILE"`
}

func GetConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("SIGNATURE_HEADER", "Stripe-Signature")
	viper.SetDefault("REPLAY_WINDOW_SECONDS", 300)
	viper.SetDefault("MAX_ATTEMPTS", 3)
	viper.SetDefault("RETRY_DELAYS", "1s,5s,15s")
	viper.SetDefault("ATTEMPT_TIMEOUT_SECONDS", 30)
	viper.SetDefault("IDEMPOTENCY_BACKEND", "memory")
	viper.SetDefault("IDEMPOTENCY_CAPACITY", 1000)
	viper.SetDefault("BOLT_PATH", "idempotency.db")

	if err := viper.ReadInConfig(); err != nil {
		// Environment-only deployments carry no .env file
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	return &config, nil
}

// Secrets parses the configured signing secrets, newest first.
func (c *Config) Secrets() ([]signature.Secret, error) {
	if c.SignatureSecret == "" {
		return nil, fmt.Errorf("SIGNATURE_SECRET is required")
	}

	primary, err := signature.ParseSecret(c.SignatureSecret)
	if err != nil {
		return nil, fmt.Errorf("parsing SIGNATURE_SECRET: %w", err)
	}
	secrets := []signature.Secret{primary}

	if c.SignatureSecretNext != "" {
		next, err := signature.ParseSecret(c.SignatureSecretNext)
		if err != nil {
			return nil, fmt.Errorf("parsing SIGNATURE_SECRET_NEXT: %w", err)
		}
		secrets = append(secrets, next)
	}

	return secrets, nil
}

// Tolerance returns the replay window as a duration
func (c *Config) Tolerance() time.Duration {
	if c.ReplayWindowSeconds <= 0 {
		return signature.DefaultTolerance
	}
	return time.Duration(c.ReplayWindowSeconds) * time.Second
}

// RetryPolicy parses the retry settings
func (c *Config) RetryPolicy() (webhook.RetryPolicy, error) {
	policy := webhook.RetryPolicy{
		MaxAttempts:    c.MaxAttempts,
		AttemptTimeout: time.Duration(c.AttemptTimeoutSeconds) * time.Second,
	}

	for _, raw := range strings.Split(c.RetryDelays, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		delay, err := time.ParseDuration(raw)
		if err != nil {
			return webhook.RetryPolicy{}, fmt.Errorf("parsing RETRY_DELAYS entry %q: %w", raw, err)
		}
		policy.Delays = append(policy.Delays, delay)
	}

	return policy, nil
}
