package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/calmora/billing-webhooks/notify"
	"github.com/calmora/billing-webhooks/webhook"
	"github.com/calmora/billing-webhooks/webhook/payload"
)

/* Webhook handlers: one per supported provider event type.
 * Each handler extracts the fields it needs from the loosely-typed
 * payload and fails terminally when they are absent or misshapen;
 * collaborator failures stay retryable. Notifications are best-effort
 * and never fail the event.
 */

// Handlers groups the collaborators the event handlers act on
type Handlers struct {
	service UseCase
	sender  notify.Sender
	logger  *slog.Logger
}

// NewHandlers creates the handler set
func NewHandlers(service UseCase, sender notify.Sender, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		service: service,
		sender:  sender,
		logger:  logger,
	}
}

// Register wires every supported event type into the dispatcher
func (h *Handlers) Register(d *webhook.Dispatcher) error {
	handlers := map[webhook.EventType]webhook.HandlerFunc{
		webhook.TypeInvoicePaymentSucceeded: h.invoicePaymentSucceeded,
		webhook.TypeInvoicePaymentFailed:    h.invoicePaymentFailed,
		webhook.TypeSubscriptionCreated:     h.subscriptionUpserted,
		webhook.TypeSubscriptionUpdated:     h.subscriptionUpserted,
		webhook.TypeSubscriptionDeleted:     h.subscriptionDeleted,
		webhook.TypeCustomerCreated:         h.customerCreated,
		webhook.TypePriceCreated:            h.priceCreated,
		webhook.TypePaymentMethodAttached:   h.paymentMethodAttached,
	}

	for eventType, handler := range handlers {
		if err := d.Register(eventType, handler); err != nil {
			return fmt.Errorf("registering %s handler: %w", eventType, err)
		}
	}
	return nil
}

func (h *Handlers) invoicePaymentSucceeded(ctx context.Context, event webhook.Event) (string, error) {
	customer, err := event.Payload.String("customer")
	if err != nil {
		return "", webhook.InvalidEventData(err)
	}
	amount, err := event.Payload.Int64("amount_paid")
	if err != nil {
		return "", webhook.InvalidEventData(err)
	}

	payment := Payment{
		InvoiceID:  event.Payload.StringOr("id", ""),
		CustomerID: customer,
		Amount:     amount,
		Currency:   event.Payload.StringOr("currency", "usd"),
		Status:     "paid",
		At:         event.CreatedAt,
	}

	if err := h.service.RecordPayment(ctx, payment); err != nil {
		return "", h.classify(err)
	}

	h.notify(ctx, notify.KindPaymentReceipt, customer, map[string]string{
		"invoice": payment.InvoiceID,
		"amount":  fmt.Sprintf("%d", amount),
	})

	return fmt.Sprintf("Payment successful for customer: %s", customer), nil
}

func (h *Handlers) invoicePaymentFailed(ctx context.Context, event webhook.Event) (string, error) {
	customer, err := event.Payload.String("customer")
	if err != nil {
		return "", webhook.InvalidEventData(err)
	}

	payment := Payment{
		InvoiceID:  event.Payload.StringOr("id", ""),
		CustomerID: customer,
		Amount:     amountDueOr(event.Payload, 0),
		Currency:   event.Payload.StringOr("currency", "usd"),
		Status:     "failed",
		At:         event.CreatedAt,
	}

	if err := h.service.RecordPayment(ctx, payment); err != nil {
		return "", h.classify(err)
	}

	h.notify(ctx, notify.KindPaymentFailed, customer, map[string]string{
		"invoice": payment.InvoiceID,
	})

	return fmt.Sprintf("Payment failed for customer: %s", customer), nil
}

// subscriptionUpserted serves both created and updated events; the
// provider ships the full subscription snapshot either way.
func (h *Handlers) subscriptionUpserted(ctx context.Context, event webhook.Event) (string, error) {
	id, err := event.Payload.String("id")
	if err != nil {
		return "", webhook.InvalidEventData(err)
	}
	customer, err := event.Payload.String("customer")
	if err != nil {
		return "", webhook.InvalidEventData(err)
	}

	sub := Subscription{
		ID:         id,
		CustomerID: customer,
		Status:     event.Payload.StringOr("status", "active"),
		PriceID:    priceIDOf(event.Payload),
	}
	if periodEnd, err := event.Payload.Int64("current_period_end"); err == nil {
		sub.CurrentPeriodEnd = time.Unix(periodEnd, 0).UTC()
	}
	if cancel, err := event.Payload.Bool("cancel_at_period_end"); err == nil {
		sub.CancelAtPeriodEnd = cancel
	}

	if err := h.service.ApplySubscription(ctx, sub); err != nil {
		return "", h.classify(err)
	}

	if event.Type == webhook.TypeSubscriptionCreated {
		h.notify(ctx, notify.KindSubscriptionStarted, customer, map[string]string{
			"subscription": id,
		})
	}

	return fmt.Sprintf("Subscription %s %s for customer: %s", id, sub.Status, customer), nil
}

func (h *Handlers) subscriptionDeleted(ctx context.Context, event webhook.Event) (string, error) {
	id, err := event.Payload.String("id")
	if err != nil {
		return "", webhook.InvalidEventData(err)
	}

	if err := h.service.CancelSubscription(ctx, id, event.CreatedAt); err != nil {
		return "", h.classify(err)
	}

	if customer := event.Payload.StringOr("customer", ""); customer != "" {
		h.notify(ctx, notify.KindSubscriptionCancelled, customer, map[string]string{
			"subscription": id,
		})
	}

	return fmt.Sprintf("Subscription cancelled: %s", id), nil
}

func (h *Handlers) customerCreated(ctx context.Context, event webhook.Event) (string, error) {
	id, err := event.Payload.String("id")
	if err != nil {
		return "", webhook.InvalidEventData(err)
	}

	customer := Customer{
		ID:    id,
		Email: event.Payload.StringOr("email", ""),
		Name:  event.Payload.StringOr("name", ""),
	}

	if err := h.service.RegisterCustomer(ctx, customer); err != nil {
		return "", h.classify(err)
	}

	h.notify(ctx, notify.KindWelcome, id, nil)

	return fmt.Sprintf("Customer created: %s", id), nil
}

func (h *Handlers) priceCreated(ctx context.Context, event webhook.Event) (string, error) {
	id, err := event.Payload.String("id")
	if err != nil {
		return "", webhook.InvalidEventData(err)
	}
	unitAmount, err := event.Payload.Int64("unit_amount")
	if err != nil {
		return "", webhook.InvalidEventData(err)
	}

	price := Price{
		ID:         id,
		Product:    event.Payload.StringOr("product", ""),
		UnitAmount: unitAmount,
		Currency:   event.Payload.StringOr("currency", "usd"),
	}
	if recurring, err := event.Payload.Object("recurring"); err == nil {
		price.Interval = recurring.StringOr("interval", "")
	}

	if err := h.service.RegisterPrice(ctx, price); err != nil {
		return "", h.classify(err)
	}

	return fmt.Sprintf("Price created: %s", id), nil
}

func (h *Handlers) paymentMethodAttached(ctx context.Context, event webhook.Event) (string, error) {
	id, err := event.Payload.String("id")
	if err != nil {
		return "", webhook.InvalidEventData(err)
	}
	customer, err := event.Payload.String("customer")
	if err != nil {
		return "", webhook.InvalidEventData(err)
	}

	method := PaymentMethod{
		ID:         id,
		CustomerID: customer,
		Kind:       event.Payload.StringOr("type", ""),
	}
	if card, err := event.Payload.Object("card"); err == nil {
		method.Last4 = card.StringOr("last4", "")
	}

	if err := h.service.AttachPaymentMethod(ctx, method); err != nil {
		return "", h.classify(err)
	}

	return fmt.Sprintf("Payment method attached for customer: %s", customer), nil
}

// classify maps service failures into the dispatcher's taxonomy:
// validation failures are terminal, everything else (storage, network)
// is worth retrying.
func (h *Handlers) classify(err error) error {
	if errors.Is(err, ErrInvalid) {
		return webhook.InvalidEventData(err)
	}
	return webhook.Transient(err)
}

// notify delivers best-effort; failure is logged, never propagated
func (h *Handlers) notify(ctx context.Context, kind, recipient string, meta map[string]string) {
	if h.sender == nil {
		return
	}
	if err := h.sender.Send(ctx, kind, recipient, meta); err != nil {
		h.logger.Warn("notification delivery failed",
			"kind", kind,
			"recipient", recipient,
			"error", err)
	}
}

func priceIDOf(obj payload.Object) string {
	if plan, err := obj.Object("plan"); err == nil {
		return plan.StringOr("id", "")
	}
	return obj.StringOr("price", "")
}

func amountDueOr(obj payload.Object, def int64) int64 {
	if amount, err := obj.Int64("amount_due"); err == nil {
		return amount
	}
	return def
}
