package webhook

/* EventType is the closed set of provider event types this service acts on.
 * Anything else decodes to TypeUnsupported so a new provider event can
 * never break ingestion; the raw string is kept on the Event for logging.
 */
type EventType int

const (
	TypeUnsupported EventType = iota
	TypeInvoicePaymentSucceeded
	TypeInvoicePaymentFailed
	TypeSubscriptionCreated
	TypeSubscriptionUpdated
	TypeSubscriptionDeleted
	TypeCustomerCreated
	TypePriceCreated
	TypePaymentMethodAttached
)

// String returns the provider wire name of the event type
func (t EventType) String() string {
	switch t {
	case TypeInvoicePaymentSucceeded:
		return "invoice.payment_succeeded"
	case TypeInvoicePaymentFailed:
		return "invoice.payment_failed"
	case TypeSubscriptionCreated:
		return "customer.subscription.created"
	case TypeSubscriptionUpdated:
		return "customer.subscription.updated"
	case TypeSubscriptionDeleted:
		return "customer.subscription.deleted"
	case TypeCustomerCreated:
		return "customer.created"
	case TypePriceCreated:
		return "price.created"
	case TypePaymentMethodAttached:
		return "payment_method.attached"
	default:
		return "unsupported"
	}
}

// ParseEventType maps a provider type string to an EventType.
// Unknown strings map to TypeUnsupported, never an error.
func ParseEventType(s string) EventType {
	switch s {
	case "invoice.payment_succeeded":
		return TypeInvoicePaymentSucceeded
	case "invoice.payment_failed":
		return TypeInvoicePaymentFailed
	case "customer.subscription.created":
		return TypeSubscriptionCreated
	case "customer.subscription.updated":
		return TypeSubscriptionUpdated
	case "customer.subscription.deleted":
		return TypeSubscriptionDeleted
	case "customer.created":
		return TypeCustomerCreated
	case "price.created":
		return TypePriceCreated
	case "payment_method.attached":
		return TypePaymentMethodAttached
	default:
		return TypeUnsupported
	}
}

// KnownEventTypes lists every supported type, in wire form.
func KnownEventTypes() []string {
	types := []EventType{
		TypeInvoicePaymentSucceeded,
		TypeInvoicePaymentFailed,
		TypeSubscriptionCreated,
		TypeSubscriptionUpdated,
		TypeSubscriptionDeleted,
		TypeCustomerCreated,
		TypePriceCreated,
		TypePaymentMethodAttached,
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names
}
