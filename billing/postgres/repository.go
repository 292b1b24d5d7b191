package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/calmora/billing-webhooks/billing"
)

/* PostgreSQL implementation of billing.Repository
 * Every write is an upsert keyed on the provider-assigned entity id, so
 * re-running a webhook handler converges instead of duplicating rows.
 */

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository connects a pgx pool to the given DSN and pings it.
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	return &Repository{pool: pool}, nil
}

// NewRepositoryWithPool wraps an existing pool; used by tests.
func NewRepositoryWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertSubscription stores the full subscription snapshot
func (r *Repository) UpsertSubscription(ctx context.Context, sub billing.Subscription) error {
	const query = `
INSERT INTO subscriptions (id, customer_id, price_id, status, current_period_end, cancel_at_period_end, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (id) DO UPDATE SET
  customer_id = EXCLUDED.customer_id,
  price_id = EXCLUDED.price_id,
  status = EXCLUDED.status,
  current_period_end = EXCLUDED.current_period_end,
  cancel_at_period_end = EXCLUDED.cancel_at_period_end,
  updated_at = now()
`
	_, err := r.pool.Exec(ctx, query,
		sub.ID, sub.CustomerID, nullable(sub.PriceID), sub.Status,
		nullableTime(sub.CurrentPeriodEnd), sub.CancelAtPeriodEnd)
	if err != nil {
		return fmt.Errorf("upserting subscription %s: %w", sub.ID, err)
	}
	return nil
}

// CancelSubscription marks the subscription cancelled; already-cancelled
// rows are left alone so the write stays idempotent.
func (r *Repository) CancelSubscription(ctx context.Context, id string, at time.Time) error {
	const query = `
UPDATE subscriptions
SET status = 'canceled', canceled_at = COALESCE(canceled_at, $2), updated_at = now()
WHERE id = $1
`
	_, err := r.pool.Exec(ctx, query, id, at.UTC())
	if err != nil {
		return fmt.Errorf("cancelling subscription %s: %w", id, err)
	}
	return nil
}

// UpsertCustomer stores the customer record
func (r *Repository) UpsertCustomer(ctx context.Context, customer billing.Customer) error {
	const query = `
INSERT INTO customers (id, email, name, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  name = EXCLUDED.name,
  updated_at = now()
`
	_, err := r.pool.Exec(ctx, query, customer.ID, nullable(customer.Email), nullable(customer.Name))
	if err != nil {
		return fmt.Errorf("upserting customer %s: %w", customer.ID, err)
	}
	return nil
}

// UpsertPrice stores the plan definition
func (r *Repository) UpsertPrice(ctx context.Context, price billing.Price) error {
	const query = `
INSERT INTO prices (id, product, unit_amount, currency, recurring_interval, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (id) DO UPDATE SET
  product = EXCLUDED.product,
  unit_amount = EXCLUDED.unit_amount,
  currency = EXCLUDED.currency,
  recurring_interval = EXCLUDED.recurring_interval,
  updated_at = now()
`
	_, err := r.pool.Exec(ctx, query,
		price.ID, nullable(price.Product), price.UnitAmount, price.Currency, nullable(price.Interval))
	if err != nil {
		return fmt.Errorf("upserting price %s: %w", price.ID, err)
	}
	return nil
}

// RecordPayment stores one payment outcome, keyed on the invoice id
func (r *Repository) RecordPayment(ctx context.Context, payment billing.Payment) error {
	const query = `
INSERT INTO payments (invoice_id, customer_id, amount, currency, status, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (invoice_id, status) DO NOTHING
`
	_, err := r.pool.Exec(ctx, query,
		payment.InvoiceID, payment.CustomerID, payment.Amount,
		payment.Currency, payment.Status, payment.At.UTC())
	if err != nil {
		return fmt.Errorf("recording payment for invoice %s: %w", payment.InvoiceID, err)
	}
	return nil
}

// AttachPaymentMethod stores the payment instrument
func (r *Repository) AttachPaymentMethod(ctx context.Context, method billing.PaymentMethod) error {
	const query = `
INSERT INTO payment_methods (id, customer_id, kind, last4, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (id) DO UPDATE SET
  customer_id = EXCLUDED.customer_id,
  kind = EXCLUDED.kind,
  last4 = EXCLUDED.last4,
  updated_at = now()
`
	_, err := r.pool.Exec(ctx, query,
		method.ID, method.CustomerID, nullable(method.Kind), nullable(method.Last4))
	if err != nil {
		return fmt.Errorf("attaching payment method %s: %w", method.ID, err)
	}
	return nil
}

// GetSubscription retrieves a subscription by id
func (r *Repository) GetSubscription(ctx context.Context, id string) (billing.Subscription, error) {
	const query = `
SELECT id, customer_id, COALESCE(price_id, ''), status, COALESCE(current_period_end, 'epoch'::timestamptz), cancel_at_period_end
FROM subscriptions
WHERE id = $1
`
	var sub billing.Subscription
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&sub.ID, &sub.CustomerID, &sub.PriceID, &sub.Status,
		&sub.CurrentPeriodEnd, &sub.CancelAtPeriodEnd)
	if errors.Is(err, pgx.ErrNoRows) {
		return billing.Subscription{}, fmt.Errorf("subscription %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return billing.Subscription{}, fmt.Errorf("getting subscription %s: %w", id, err)
	}
	return sub, nil
}

// GetCustomer retrieves a customer by id
func (r *Repository) GetCustomer(ctx context.Context, id string) (billing.Customer, error) {
	const query = `
SELECT id, COALESCE(email, ''), COALESCE(name, '')
FROM customers
WHERE id = $1
`
	var customer billing.Customer
	err := r.pool.QueryRow(ctx, query, id).Scan(&customer.ID, &customer.Email, &customer.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return billing.Customer{}, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return billing.Customer{}, fmt.Errorf("getting customer %s: %w", id, err)
	}
	return customer, nil
}

// Close releases the connection pool
func (r *Repository) Close(ctx context.Context) error {
	r.pool.Close()
	return nil
}

// nullable maps "" to NULL so empty optional fields do not shadow data
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
