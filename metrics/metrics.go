package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/calmora/billing-webhooks/webhook"
)

// Exporter provides OpenTelemetry metrics export in Prometheus format.
// It implements webhook.Recorder so the processor reports through it.
type Exporter struct {
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter

	received  metric.Int64Counter
	processed metric.Int64Counter
	duration  metric.Float64Histogram
}

// NewExporter creates a new OpenTelemetry metrics exporter with Prometheus format
func NewExporter() (*Exporter, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter(
		"billing-webhooks",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	e := &Exporter{
		meterProvider: meterProvider,
		meter:         meter,
	}

	if err := e.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return e, nil
}

// registerInstruments creates all OpenTelemetry metric instruments
func (e *Exporter) registerInstruments() error {
	var err error

	e.received, err = e.meter.Int64Counter(
		"webhook.events.received",
		metric.WithDescription("Number of authenticated, decodable events received"),
		metric.WithUnit("{events}"),
	)
	if err != nil {
		return fmt.Errorf("creating received counter: %w", err)
	}

	e.processed, err = e.meter.Int64Counter(
		"webhook.events.processed",
		metric.WithDescription("Number of deliveries by terminal status"),
		metric.WithUnit("{events}"),
	)
	if err != nil {
		return fmt.Errorf("creating processed counter: %w", err)
	}

	e.duration, err = e.meter.Float64Histogram(
		"webhook.processing.duration",
		metric.WithDescription("End-to-end processing time per delivery"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("creating duration histogram: %w", err)
	}

	return nil
}

// EventReceived counts one authenticated, decodable event
func (e *Exporter) EventReceived(eventType string) {
	e.received.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("event.type", eventType),
	))
}

// EventProcessed counts one terminal outcome and records its duration
func (e *Exporter) EventProcessed(eventType string, status webhook.Status, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("event.type", eventType),
		attribute.String("status", status.String()),
	)
	e.processed.Add(context.Background(), 1, attrs)
	e.duration.Record(context.Background(), elapsed.Seconds(), attrs)
}

// Handler serves Prometheus-formatted metrics
func (e *Exporter) Handler() http.Handler {
	return promhttp.Handler()
}

// Shutdown gracefully shuts down the meter provider
func (e *Exporter) Shutdown(ctx context.Context) error {
	if e.meterProvider != nil {
		return e.meterProvider.Shutdown(ctx)
	}
	return nil
}
