package billing

import "time"

/* Entities mirror the provider's billing resources as the rest of the
 * platform needs them. No tags: these represent the business, not a wire
 * format, and use value semantics since they are data.
 */

// Subscription is one customer's recurring plan
type Subscription struct {
	ID                string
	CustomerID        string
	PriceID           string
	Status            string
	CurrentPeriodEnd  time.Time
	CancelAtPeriodEnd bool
}

// Customer is a billable account holder
type Customer struct {
	ID    string
	Email string
	Name  string
}

// Price is a purchasable plan definition
type Price struct {
	ID         string
	Product    string
	UnitAmount int64
	Currency   string
	Interval   string
}

// Payment is the outcome of one invoice payment attempt
type Payment struct {
	InvoiceID  string
	CustomerID string
	Amount     int64
	Currency   string
	Status     string
	At         time.Time
}

// PaymentMethod is a stored payment instrument
type PaymentMethod struct {
	ID         string
	CustomerID string
	Kind       string
	Last4      string
}
