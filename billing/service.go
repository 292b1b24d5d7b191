package billing

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInvalid marks input that fails business validation; retrying the
// same input can never succeed.
var ErrInvalid = errors.New("invalid billing data")

// UseCase defines the business operations the webhook handlers invoke
type UseCase interface {
	ApplySubscription(ctx context.Context, sub Subscription) error
	CancelSubscription(ctx context.Context, id string, at time.Time) error
	RegisterCustomer(ctx context.Context, customer Customer) error
	RegisterPrice(ctx context.Context, price Price) error
	RecordPayment(ctx context.Context, payment Payment) error
	AttachPaymentMethod(ctx context.Context, method PaymentMethod) error
}

/* Service represents the business logic layer
 * Uses pointer semantics as it's an API, not data
 */
type Service struct {
	Repo Repository
}

// NewService creates a new billing service with dependency injection
func NewService(repo Repository) *Service {
	return &Service{
		Repo: repo,
	}
}

// ApplySubscription validates and stores a subscription snapshot
func (s *Service) ApplySubscription(ctx context.Context, sub Subscription) error {
	if sub.ID == "" {
		return fmt.Errorf("subscription id is required: %w", ErrInvalid)
	}
	if sub.CustomerID == "" {
		return fmt.Errorf("subscription %s has no customer: %w", sub.ID, ErrInvalid)
	}

	if err := s.Repo.UpsertSubscription(ctx, sub); err != nil {
		return fmt.Errorf("storing subscription: %w", err)
	}
	return nil
}

// CancelSubscription marks a subscription as cancelled
func (s *Service) CancelSubscription(ctx context.Context, id string, at time.Time) error {
	if id == "" {
		return fmt.Errorf("subscription id is required: %w", ErrInvalid)
	}

	if err := s.Repo.CancelSubscription(ctx, id, at); err != nil {
		return fmt.Errorf("cancelling subscription: %w", err)
	}
	return nil
}

// RegisterCustomer validates and stores a customer record
func (s *Service) RegisterCustomer(ctx context.Context, customer Customer) error {
	if customer.ID == "" {
		return fmt.Errorf("customer id is required: %w", ErrInvalid)
	}

	if err := s.Repo.UpsertCustomer(ctx, customer); err != nil {
		return fmt.Errorf("storing customer: %w", err)
	}
	return nil
}

// RegisterPrice validates and stores a plan definition
func (s *Service) RegisterPrice(ctx context.Context, price Price) error {
	if price.ID == "" {
		return fmt.Errorf("price id is required: %w", ErrInvalid)
	}
	if price.UnitAmount < 0 {
		return fmt.Errorf("price %s has negative amount: %w", price.ID, ErrInvalid)
	}

	if err := s.Repo.UpsertPrice(ctx, price); err != nil {
		return fmt.Errorf("storing price: %w", err)
	}
	return nil
}

// RecordPayment validates and stores a payment outcome
func (s *Service) RecordPayment(ctx context.Context, payment Payment) error {
	if payment.CustomerID == "" {
		return fmt.Errorf("payment has no customer: %w", ErrInvalid)
	}
	if payment.Amount < 0 {
		return fmt.Errorf("payment amount cannot be negative: %w", ErrInvalid)
	}

	if err := s.Repo.RecordPayment(ctx, payment); err != nil {
		return fmt.Errorf("storing payment: %w", err)
	}
	return nil
}

// AttachPaymentMethod validates and stores a payment instrument
func (s *Service) AttachPaymentMethod(ctx context.Context, method PaymentMethod) error {
	if method.ID == "" {
		return fmt.Errorf("payment method id is required: %w", ErrInvalid)
	}
	if method.CustomerID == "" {
		return fmt.Errorf("payment method %s has no customer: %w", method.ID, ErrInvalid)
	}

	if err := s.Repo.AttachPaymentMethod(ctx, method); err != nil {
		return fmt.Errorf("storing payment method: %w", err)
	}
	return nil
}
