package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmora/billing-webhooks/webhook"
	"github.com/calmora/billing-webhooks/webhook/idempotency"
	"github.com/calmora/billing-webhooks/webhook/signature"
)

const testHeader = "Stripe-Signature"

type serverFixture struct {
	mux    http.Handler
	secret signature.Secret
}

func newServerFixture(t *testing.T, handler webhook.HandlerFunc) *serverFixture {
	t.Helper()

	secret, err := signature.GenerateSecret(32)
	require.NoError(t, err)

	dispatcher := webhook.NewDispatcher(slog.Default())
	if handler != nil {
		require.NoError(t, dispatcher.Register(webhook.TypeInvoicePaymentSucceeded, handler))
	}

	processor, err := webhook.NewProcessor(webhook.ProcessorConfig{
		Secrets:    signature.StaticProvider{secret},
		Store:      idempotency.NewMemoryStore(idempotency.DefaultCapacity),
		Dispatcher: dispatcher,
		Retrier: webhook.NewRetrier(webhook.RetryPolicy{
			MaxAttempts:    3,
			Delays:         []time.Duration{time.Millisecond},
			AttemptTimeout: time.Second,
		}, slog.Default()),
		Logger: slog.Default(),
	})
	require.NoError(t, err)

	return &serverFixture{
		mux:    WebhookHandlers(processor, testHeader, nil),
		secret: secret,
	}
}

func (f *serverFixture) post(t *testing.T, body []byte, header string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, "/v1/webhooks/payments", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set(testHeader, header)
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)
	return w
}

func (f *serverFixture) sign(body []byte) string {
	return signature.BuildHeader(time.Now(), body, f.secret)
}

func paymentBody(eventID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": "invoice.payment_succeeded",
		"created": %d,
		"data": {"object": {"customer": "cus_1", "amount_paid": 1999}}
	}`, eventID, time.Now().Unix()))
}

func paymentHandler(_ context.Context, event webhook.Event) (string, error) {
	customer, err := event.Payload.String("customer")
	if err != nil {
		return "", webhook.InvalidEventData(err)
	}
	return fmt.Sprintf("Payment successful for customer: %s", customer), nil
}

func TestPostWebhook(t *testing.T) {
	t.Run("should acknowledge a processed delivery", func(t *testing.T) {
		fixture := newServerFixture(t, paymentHandler)
		body := paymentBody("evt_1")

		w := fixture.post(t, body, fixture.sign(body))

		assert.Equal(t, http.StatusOK, w.Code)
		var response deliveryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "succeeded", response.Status)
		assert.Equal(t, "Payment successful for customer: cus_1", response.Summary)
	})

	t.Run("should acknowledge a duplicate delivery as ignored", func(t *testing.T) {
		fixture := newServerFixture(t, paymentHandler)
		body := paymentBody("evt_1")

		first := fixture.post(t, body, fixture.sign(body))
		second := fixture.post(t, body, fixture.sign(body))

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusOK, second.Code)
		var response deliveryResponse
		require.NoError(t, json.Unmarshal(second.Body.Bytes(), &response))
		assert.Equal(t, "ignored", response.Status)
		assert.Equal(t, "duplicate event", response.Summary)
	})

	t.Run("should reject a delivery with a bad signature", func(t *testing.T) {
		fixture := newServerFixture(t, paymentHandler)
		body := paymentBody("evt_2")
		other, err := signature.GenerateSecret(32)
		require.NoError(t, err)

		w := fixture.post(t, body, signature.BuildHeader(time.Now(), body, other))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response deliveryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "failed", response.Status)
	})

	t.Run("should reject a delivery with no signature header", func(t *testing.T) {
		fixture := newServerFixture(t, paymentHandler)
		body := paymentBody("evt_3")

		w := fixture.post(t, body, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should reject an undecodable payload", func(t *testing.T) {
		fixture := newServerFixture(t, paymentHandler)
		body := []byte(`{"type": "invoice.payment_succeeded"}`)

		w := fixture.post(t, body, fixture.sign(body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should acknowledge an unsupported event type", func(t *testing.T) {
		fixture := newServerFixture(t, paymentHandler)
		body := []byte(fmt.Sprintf(`{"id": "evt_4", "type": "payout.created", "created": %d}`, time.Now().Unix()))

		w := fixture.post(t, body, fixture.sign(body))

		assert.Equal(t, http.StatusOK, w.Code)
		var response deliveryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "ignored", response.Status)
	})

	t.Run("should acknowledge a handler failure after the retry budget", func(t *testing.T) {
		fixture := newServerFixture(t, func(context.Context, webhook.Event) (string, error) {
			return "", webhook.Transient(errors.New("db down"))
		})
		body := paymentBody("evt_5")

		w := fixture.post(t, body, fixture.sign(body))

		assert.Equal(t, http.StatusOK, w.Code)
		var response deliveryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "failed", response.Status)
		assert.Contains(t, response.Error, "max retry attempts exceeded")
	})
}

func TestGetRecentEvents(t *testing.T) {
	fixture := newServerFixture(t, paymentHandler)
	body := paymentBody("evt_1")
	fixture.post(t, body, fixture.sign(body))

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "/v1/events/recent", nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	fixture.mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var results []eventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "evt_1", results[0].EventID)
	assert.Equal(t, "succeeded", results[0].Status)
	assert.NotEmpty(t, results[0].CorrelationID)
}

func TestHealth(t *testing.T) {
	fixture := newServerFixture(t, nil)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "/health", nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	fixture.mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}
