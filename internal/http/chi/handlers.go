package chi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"

	"github.com/calmora/billing-webhooks/webhook"
)

// WebhookHandlers sets up the webhook API routes.
// metricsHandler is optional; pass nil to skip the /metrics endpoint.
func WebhookHandlers(processor *webhook.Processor, headerName string, metricsHandler http.Handler) *chi.Mux {
	logger := httplog.NewLogger("billing-webhooks", httplog.Options{
		JSON: true,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		// Provider deliveries land here
		r.Post("/webhooks/payments", postWebhook(processor, headerName).ServeHTTP)

		// Recent processing outcomes for diagnostics
		r.Get("/events/recent", getRecentEvents(processor.Ledger()).ServeHTTP)
	})

	return r
}
