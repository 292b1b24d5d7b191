package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

// eventTypePattern validates event types: hierarchical, full-stop delimited, [a-zA-Z0-9_.]
var eventTypePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+(\.[a-zA-Z0-9_]+)*$`)

/* Object is the loosely-typed resource snapshot carried by a provider event.
 * The provider owns the schema, so nothing here assumes a field exists;
 * every accessor is fallible and handlers decide what is required.
 */
type Object map[string]any

// FieldError reports a field that is absent or has the wrong shape.
type FieldError struct {
	Path   string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("payload field %q: %s", e.Path, e.Reason)
}

// Parse decodes a JSON object into an Object.
// Numbers are kept as json.Number so integer amounts survive intact.
func Parse(data []byte) (Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var obj Object
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("unmarshaling payload object: %w", err)
	}
	return obj, nil
}

// String returns the string value at key.
func (o Object) String(key string) (string, error) {
	v, ok := o[key]
	if !ok {
		return "", FieldError{Path: key, Reason: "missing"}
	}
	s, ok := v.(string)
	if !ok {
		return "", FieldError{Path: key, Reason: fmt.Sprintf("expected string, got %T", v)}
	}
	return s, nil
}

// StringOr returns the string value at key, or def when absent or mistyped.
func (o Object) StringOr(key, def string) string {
	s, err := o.String(key)
	if err != nil {
		return def
	}
	return s
}

// Int64 returns the integer value at key.
// Accepts json.Number (the Parse default) and float64 for objects built in tests.
func (o Object) Int64(key string) (int64, error) {
	v, ok := o[key]
	if !ok {
		return 0, FieldError{Path: key, Reason: "missing"}
	}
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, FieldError{Path: key, Reason: fmt.Sprintf("expected integer, got %q", n.String())}
		}
		return i, nil
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, FieldError{Path: key, Reason: fmt.Sprintf("expected number, got %T", v)}
	}
}

// Bool returns the boolean value at key.
func (o Object) Bool(key string) (bool, error) {
	v, ok := o[key]
	if !ok {
		return false, FieldError{Path: key, Reason: "missing"}
	}
	b, ok := v.(bool)
	if !ok {
		return false, FieldError{Path: key, Reason: fmt.Sprintf("expected bool, got %T", v)}
	}
	return b, nil
}

// Object returns the nested object value at key.
func (o Object) Object(key string) (Object, error) {
	v, ok := o[key]
	if !ok {
		return nil, FieldError{Path: key, Reason: "missing"}
	}
	switch m := v.(type) {
	case Object:
		return m, nil
	case map[string]any:
		return Object(m), nil
	default:
		return nil, FieldError{Path: key, Reason: fmt.Sprintf("expected object, got %T", v)}
	}
}

// Has reports whether key is present, regardless of its type.
func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// MatchesEventType checks if eventType matches any of the given patterns.
// Supports exact matching and prefix matching (e.g., "invoice.*" matches "invoice.payment_succeeded").
func MatchesEventType(eventType string, patterns []string) bool {
	if len(patterns) == 0 {
		// No filter means accept all
		return true
	}

	for _, pattern := range patterns {
		// Exact match
		if eventType == pattern {
			return true
		}

		// Prefix match (e.g., "customer.*" matches "customer.created", "customer.subscription.updated")
		if len(pattern) > 2 && pattern[len(pattern)-2:] == ".*" {
			prefix := pattern[:len(pattern)-2]
			if len(eventType) > len(prefix) && eventType[:len(prefix)] == prefix && eventType[len(prefix)] == '.' {
				return true
			}
		}
	}

	return false
}

// ValidateEventType validates an event type format.
func ValidateEventType(eventType string) error {
	if eventType == "" {
		return fmt.Errorf("event type cannot be empty")
	}

	// Allow wildcard suffix for filtering
	if len(eventType) > 2 && eventType[len(eventType)-2:] == ".*" {
		eventType = eventType[:len(eventType)-2]
	}

	if !eventTypePattern.MatchString(eventType) {
		return fmt.Errorf("event type must be hierarchical and contain only [a-zA-Z0-9_.]: %s", eventType)
	}

	return nil
}
