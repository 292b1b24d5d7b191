package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

/* Table manages processing rules from rules.yaml
 * Provides in-memory lookup for fast access; implements the processor's
 * gate so disabled event types are ignored before dispatch.
 */

// Config represents the structure of rules.yaml
type Config struct {
	Rules []RuleConfig `yaml:"rules"`
}

// RuleConfig represents a single rule in the YAML file
type RuleConfig struct {
	EventType  string `yaml:"event_type"`
	Enabled    *bool  `yaml:"enabled"`     // Default: true
	MaxRetries *int   `yaml:"max_retries"` // Optional: override retry budget
}

// Table holds the loaded rules in declaration order
type Table struct {
	rules []*Rule
}

// NewTable creates an empty rule table; every event type is allowed.
func NewTable() *Table {
	return &Table{}
}

// Load reads and parses the rules.yaml file
func (t *Table) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading rules file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing rules YAML: %w", err)
	}

	rules := make([]*Rule, 0, len(config.Rules))
	for _, rc := range config.Rules {
		// Rules are enabled unless the file says otherwise
		enabled := true
		if rc.Enabled != nil {
			enabled = *rc.Enabled
		}

		rule := &Rule{
			EventType:  rc.EventType,
			Enabled:    enabled,
			MaxRetries: rc.MaxRetries,
		}

		if err := rule.Validate(); err != nil {
			return fmt.Errorf("validating rule: %w", err)
		}

		rules = append(rules, rule)
	}

	t.rules = rules
	return nil
}

// For retrieves the first rule matching the event type, or nil
func (t *Table) For(eventType string) *Rule {
	for _, rule := range t.rules {
		if rule.Matches(eventType) {
			return rule
		}
	}
	return nil
}

// Allowed reports whether the event type should be processed.
// Types without a rule default to allowed.
func (t *Table) Allowed(eventType string) bool {
	rule := t.For(eventType)
	if rule == nil {
		return true
	}
	return rule.Enabled
}

// MaxRetriesFor returns the retry budget override for the event type,
// if any rule sets one.
func (t *Table) MaxRetriesFor(eventType string) (int, bool) {
	rule := t.For(eventType)
	if rule == nil || rule.MaxRetries == nil {
		return 0, false
	}
	return *rule.MaxRetries, true
}

// List returns all loaded rules
func (t *Table) List() []*Rule {
	return t.rules
}
