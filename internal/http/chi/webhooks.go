package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/calmora/billing-webhooks/webhook"
	"github.com/calmora/billing-webhooks/webhook/signature"
)

/* HTTP layer DTOs for the webhook API
 * Separate from domain entities to avoid leaking internal structure
 */

// deliveryResponse represents the outcome returned to the provider
type deliveryResponse struct {
	Status  string `json:"status"`
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
}

// eventResponse represents one ledger entry in the API
type eventResponse struct {
	CorrelationID string    `json:"correlation_id"`
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	Status        string    `json:"status"`
	Summary       string    `json:"summary"`
	At            time.Time `json:"at"`
}

// postWebhook handles POST /v1/webhooks/payments
func postWebhook(processor *webhook.Processor, headerName string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		result := processor.Process(r.Context(), body, r.Header.Get(headerName))

		response := deliveryResponse{
			Status:  result.Status.String(),
			Summary: result.Summary,
		}
		if result.Err != nil {
			response.Error = result.Err.Error()
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode(result))
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// statusCode maps a processing result to an HTTP status for the provider.
// Rejected deliveries (bad signature, undecodable payload) get a 400 so
// the sender sees its mistake. Everything else is acknowledged with a 200;
// the retry budget was already spent in-process, and a redelivery of a
// handler failure would just fail the same way.
func statusCode(result webhook.Result) int {
	if result.Status != webhook.Failed {
		return http.StatusOK
	}
	if errors.Is(result.Err, signature.ErrInvalidSignature) || errors.Is(result.Err, signature.ErrStaleSignature) {
		return http.StatusBadRequest
	}
	if webhook.IsDecodeError(result.Err) {
		return http.StatusBadRequest
	}
	return http.StatusOK
}

// getRecentEvents handles GET /v1/events/recent
func getRecentEvents(ledger *webhook.Ledger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entries := ledger.Recent()

		responses := make([]eventResponse, 0, len(entries))
		for _, entry := range entries {
			responses = append(responses, eventResponse{
				CorrelationID: entry.CorrelationID,
				EventID:       entry.EventID,
				EventType:     entry.EventType,
				Status:        entry.Status,
				Summary:       entry.Summary,
				At:            entry.At,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(responses); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
