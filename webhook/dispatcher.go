package webhook

import (
	"context"
	"fmt"
	"log/slog"
)

// HandlerFunc processes one decoded event and returns a human-readable
// summary used for logging. Failures should be classified with
// InvalidEventData or Transient; unclassified errors are retried.
type HandlerFunc func(ctx context.Context, event Event) (string, error)

/* Dispatcher routes a decoded event to the handler registered for its type.
 * Each known type maps to exactly one handler; unsupported or unregistered
 * types surface ErrUnsupportedType so the processor can ignore them.
 */
type Dispatcher struct {
	handlers map[EventType]HandlerFunc
	logger   *slog.Logger
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		handlers: make(map[EventType]HandlerFunc),
		logger:   logger,
	}
}

// Register maps an event type to its handler. Registering TypeUnsupported
// or registering a type twice is a wiring bug and returns an error.
func (d *Dispatcher) Register(eventType EventType, handler HandlerFunc) error {
	if eventType == TypeUnsupported {
		return fmt.Errorf("cannot register handler for unsupported type")
	}
	if _, exists := d.handlers[eventType]; exists {
		return fmt.Errorf("handler already registered for %s", eventType)
	}
	d.handlers[eventType] = handler
	return nil
}

// Dispatch invokes the handler for the event's type.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) (string, error) {
	if event.Type == TypeUnsupported {
		return "", fmt.Errorf("event type %q: %w", event.RawType, ErrUnsupportedType)
	}

	handler, ok := d.handlers[event.Type]
	if !ok {
		return "", fmt.Errorf("event type %q: %w", event.RawType, ErrUnsupportedType)
	}

	summary, err := handler(ctx, event)
	if err != nil {
		d.logger.Error("handler failed",
			"event_id", event.ID,
			"event_type", event.RawType,
			"terminal", IsTerminal(err),
			"error", err)
		return "", fmt.Errorf("handling %s: %w", event.RawType, err)
	}

	return summary, nil
}
