package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/calmora/billing-webhooks/rules"
	"github.com/calmora/billing-webhooks/webhook"
)

/* validate-rules - Standalone CLI tool to validate rules.yaml
 * Usage: go run cmd/validate-rules/main.go [rules.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	rulesFile := "rules.yaml"
	if len(os.Args) > 1 {
		rulesFile = os.Args[1]
	}

	fmt.Printf("Validating rules file: %s\n\n", rulesFile)

	table := rules.NewTable()
	if err := table.Load(rulesFile); err != nil {
		fmt.Fprintf(os.Stderr, "❌ VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	loadedRules := table.List()
	fmt.Printf("✓ VALIDATION PASSED\n\n")
	fmt.Printf("Loaded %d rule(s):\n", len(loadedRules))

	for i, rule := range loadedRules {
		fmt.Printf("\n%d. Event type: %s\n", i+1, rule.EventType)
		fmt.Printf("   Enabled: %t\n", rule.Enabled)
		if rule.MaxRetries != nil {
			fmt.Printf("   Max Retries: %d\n", *rule.MaxRetries)
		}
		if !strings.HasSuffix(rule.EventType, ".*") && webhook.ParseEventType(rule.EventType) == webhook.TypeUnsupported {
			fmt.Printf("   ⚠ Warning: the service has no handler for this event type\n")
		}
	}

	fmt.Printf("\n✓ All rules are valid!\n")
	os.Exit(0)
}
