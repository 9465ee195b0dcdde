package domain

import (
	"strings"
	"time"
)

// Payment is the authoritative record for financial state. It is keyed by the
// provider-issued invoice ID (at most one Payment per invoice) and references
// the Order it settles. PaidAt is set if and only if Status is SUCCESS.
type Payment struct {
	InvoiceID      string
	OrderReference string
	Amount         int64
	Status         PaymentStatus
	PaymentMethod  string
	PaidAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentExpired PaymentStatus = "EXPIRED"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Terminal reports whether no further webhook event may change the status.
// SUCCESS is the only hard-terminal state: an expired invoice can still be
// settled late by the provider, but a settled one never regresses.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentSuccess
}

// EventKind classifies the status string carried by a provider webhook.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventPaid
	EventExpired
	EventCancelled
)

// EventKindOf normalises a provider status string. Xendit reports settled
// invoices as either PAID or SETTLED depending on the settlement stage; both
// mean money arrived.
func EventKindOf(status string) EventKind {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "PAID", "SETTLED":
		return EventPaid
	case "EXPIRED":
		return EventExpired
	case "CANCELLED":
		return EventCancelled
	default:
		return EventUnknown
	}
}

// Apply runs the webhook transition state machine and returns the next status
// plus whether anything changed. It is pure; the persistence layer enforces
// the same rules atomically so concurrent deliveries cannot race.
//
// Rules:
//   - a paid event moves any non-SUCCESS status to SUCCESS
//   - expiry and cancellation only close a PENDING payment
//   - SUCCESS never regresses
//   - unrecognised events change nothing
func (s PaymentStatus) Apply(e EventKind) (PaymentStatus, bool) {
	if s.Terminal() {
		return s, false
	}
	switch e {
	case EventPaid:
		return PaymentSuccess, true
	case EventExpired:
		if s == PaymentPending {
			return PaymentExpired, true
		}
	case EventCancelled:
		if s == PaymentPending {
			return PaymentFailed, true
		}
	}
	return s, false
}

// OrderStatusFor maps a payment status to the order status propagated as a
// secondary, non-atomic write. The Payment row stays authoritative.
func OrderStatusFor(s PaymentStatus) OrderStatus {
	switch s {
	case PaymentSuccess:
		return OrderPaid
	case PaymentExpired:
		return OrderExpired
	case PaymentFailed:
		return OrderFailed
	default:
		return OrderPending
	}
}
