package billing

import (
	"context"
	"time"
)

/* Small, focused interfaces; composition over one monolithic interface.
 * Every write is idempotent on the underlying entity id, so re-running a
 * handler after a crash never multiplies its effect.
 */

// SubscriptionWriter persists subscription state changes
type SubscriptionWriter interface {
	UpsertSubscription(ctx context.Context, sub Subscription) error
	CancelSubscription(ctx context.Context, id string, at time.Time) error
}

// CustomerWriter persists customer records
type CustomerWriter interface {
	UpsertCustomer(ctx context.Context, customer Customer) error
}

// PriceWriter persists plan definitions
type PriceWriter interface {
	UpsertPrice(ctx context.Context, price Price) error
}

// PaymentWriter persists payment outcomes and instruments
type PaymentWriter interface {
	RecordPayment(ctx context.Context, payment Payment) error
	AttachPaymentMethod(ctx context.Context, method PaymentMethod) error
}

// Reader provides the read operations the platform needs back out
type Reader interface {
	GetSubscription(ctx context.Context, id string) (Subscription, error)
	GetCustomer(ctx context.Context, id string) (Customer, error)
}

/* Interface composition */
type Repository interface {
	SubscriptionWriter
	CustomerWriter
	PriceWriter
	PaymentWriter
	Reader
	Close(ctx context.Context) error
}
