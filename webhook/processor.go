package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/calmora/billing-webhooks/webhook/idempotency"
	"github.com/calmora/billing-webhooks/webhook/signature"
)

// Recorder observes processing outcomes. The metrics package implements
// it; a no-op is used when none is wired.
type Recorder interface {
	EventReceived(eventType string)
	EventProcessed(eventType string, status Status, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) EventReceived(string)                         {}
func (nopRecorder) EventProcessed(string, Status, time.Duration) {}

// Gate decides whether an event type should be processed at all.
// The rules package implements it from YAML configuration.
type Gate interface {
	Allowed(eventType string) bool
}

// ProcessorConfig carries the processor's dependencies.
// Secrets, Store and Dispatcher are required.
type ProcessorConfig struct {
	Secrets    signature.Provider
	Tolerance  time.Duration
	Store      idempotency.Store
	Dispatcher *Dispatcher
	Retrier    *Retrier
	Gate       Gate
	Ledger     *Ledger
	Recorder   Recorder
	Logger     *slog.Logger
	Now        func() time.Time
}

/* Processor is the composition root for one delivery's journey:
 * verify -> decode -> claim -> dispatch with retry -> commit.
 * It owns no mutable state of its own; the idempotency store is the only
 * shared resource, so Process is safe to call from concurrent deliveries.
 */
type Processor struct {
	secrets    signature.Provider
	tolerance  time.Duration
	store      idempotency.Store
	dispatcher *Dispatcher
	retrier    *Retrier
	gate       Gate
	ledger     *Ledger
	recorder   Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// NewProcessor creates a Processor with dependency injection
func NewProcessor(cfg ProcessorConfig) (*Processor, error) {
	if cfg.Secrets == nil {
		return nil, fmt.Errorf("secret provider is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("idempotency store is required")
	}
	if cfg.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = signature.DefaultTolerance
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Retrier == nil {
		cfg.Retrier = NewRetrier(DefaultRetryPolicy(), cfg.Logger)
	}
	if cfg.Ledger == nil {
		cfg.Ledger = NewLedger(DefaultLedgerSize)
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Processor{
		secrets:    cfg.Secrets,
		tolerance:  cfg.Tolerance,
		store:      cfg.Store,
		dispatcher: cfg.Dispatcher,
		retrier:    cfg.Retrier,
		gate:       cfg.Gate,
		ledger:     cfg.Ledger,
		recorder:   cfg.Recorder,
		logger:     cfg.Logger,
		now:        cfg.Now,
	}, nil
}

// Ledger exposes the diagnostics ledger for the HTTP layer.
func (p *Processor) Ledger() *Ledger {
	return p.ledger
}

// Process runs one delivery end to end and returns its terminal result.
func (p *Processor) Process(ctx context.Context, body []byte, sigHeader string) Result {
	started := p.now()

	if err := signature.Verify(body, sigHeader, p.secrets.Secrets(), started, p.tolerance); err != nil {
		// Log without the secret or the payload body
		p.logger.Warn("rejected unauthenticated delivery", "error", err)
		p.recorder.EventProcessed("invalid", Failed, p.now().Sub(started))
		return Fail(err)
	}

	event, err := Decode(body)
	if err != nil {
		p.logger.Warn("rejected undecodable delivery", "error", err)
		p.recorder.EventProcessed("invalid", Failed, p.now().Sub(started))
		return Fail(err)
	}

	p.recorder.EventReceived(event.RawType)

	if event.Type == TypeUnsupported {
		return p.finish(event, started, Ignore(fmt.Sprintf("unsupported event type: %s", event.RawType)))
	}

	if p.gate != nil && !p.gate.Allowed(event.RawType) {
		return p.finish(event, started, Ignore(fmt.Sprintf("event type disabled: %s", event.RawType)))
	}

	claimed, err := p.store.Begin(ctx, event.ID)
	if err != nil {
		return p.finish(event, started, Fail(fmt.Errorf("claiming event %s: %w", event.ID, err)))
	}
	if !claimed {
		return p.finish(event, started, Ignore("duplicate event"))
	}

	summary, err := p.retrier.Run(ctx, event, p.dispatcher.Dispatch)
	if err != nil {
		if releaseErr := p.store.Release(ctx, event.ID); releaseErr != nil {
			p.logger.Error("releasing claim failed", "event_id", event.ID, "error", releaseErr)
		}
		if errors.Is(err, ErrUnsupportedType) {
			return p.finish(event, started, Ignore(fmt.Sprintf("no handler for event type: %s", event.RawType)))
		}
		p.logger.Error("event processing failed",
			"event_id", event.ID,
			"event_type", event.RawType,
			"error", err)
		return p.finish(event, started, Fail(err))
	}

	// Mark processed only after the side effect succeeded. If this write
	// fails the event may be applied again on redelivery, which handlers
	// tolerate; applying it zero times would not be tolerable.
	if err := p.store.Commit(ctx, event.ID, p.now()); err != nil {
		p.logger.Error("recording processed event failed", "event_id", event.ID, "error", err)
	}

	return p.finish(event, started, Succeed(summary))
}

func (p *Processor) finish(event Event, started time.Time, result Result) Result {
	summary := result.Summary
	if result.Status == Failed && result.Err != nil {
		summary = result.Err.Error()
	}
	p.ledger.Record(event.ID, event.RawType, result.Status, summary, p.now())
	p.recorder.EventProcessed(event.RawType, result.Status, p.now().Sub(started))

	p.logger.Info("delivery finished",
		"event_id", event.ID,
		"event_type", event.RawType,
		"status", result.Status.String(),
		"livemode", event.Livemode)

	return result
}
