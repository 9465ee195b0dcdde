package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/domain"
	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/ports"
)

// Outcome classifies what a webhook delivery did. Everything except an
// infrastructure error is acknowledged 200 to the provider: retries cannot fix
// an unknown invoice or an already-settled payment.
type Outcome string

const (
	// OutcomeApplied: the payment transitioned.
	OutcomeApplied Outcome = "applied"
	// OutcomeNoop: the payment exists but the event changed nothing, such as
	// a replayed settlement or a regression attempt against SUCCESS.
	OutcomeNoop Outcome = "noop"
	// OutcomeUnknownInvoice: no payment matches the invoice ID.
	OutcomeUnknownInvoice Outcome = "unknown_invoice"
	// OutcomeIgnored: the status string is not one we act on.
	OutcomeIgnored Outcome = "ignored"
)

// Event is the validated subset of a provider webhook payload.
type Event struct {
	InvoiceID     string
	ExternalID    string
	Status        string
	PaymentMethod string
	PaidAmount    int64
}

// WebhookService applies idempotent status transitions driven by provider
// callbacks. Authentication and structural validation happen at the HTTP
// boundary; by the time Process runs, the event is trusted and well-formed.
type WebhookService struct {
	store ports.Store
}

func NewWebhookService(store ports.Store) *WebhookService {
	return &WebhookService{store: store}
}

// Process applies one delivery. The write is a single atomic conditional
// update in the store; the read below it only classifies what happened and
// never feeds back into a write, so concurrent duplicate deliveries are safe.
//
// A non-nil error means an infrastructure fault; the handler answers 5xx so
// the provider retries, which is harmless against the conditional update.
func (s *WebhookService) Process(ctx context.Context, ev Event) (Outcome, error) {
	kind := domain.EventKindOf(ev.Status)

	switch kind {
	case domain.EventPaid:
		applied, err := s.store.SettlePayment(ctx, ev.InvoiceID, ev.PaymentMethod, time.Now().UTC())
		if err != nil {
			return "", fmt.Errorf("webhook: settle %q: %w", ev.InvoiceID, err)
		}
		if applied {
			s.propagateOrderStatus(ctx, ev.InvoiceID, domain.PaymentSuccess)
			slog.InfoContext(ctx, "payment settled", "invoice_id", ev.InvoiceID)
			return OutcomeApplied, nil
		}
		return s.classifyNoop(ctx, ev)

	case domain.EventExpired, domain.EventCancelled:
		next := domain.PaymentExpired
		if kind == domain.EventCancelled {
			next = domain.PaymentFailed
		}
		applied, err := s.store.ClosePayment(ctx, ev.InvoiceID, next)
		if err != nil {
			return "", fmt.Errorf("webhook: close %q: %w", ev.InvoiceID, err)
		}
		if applied {
			s.propagateOrderStatus(ctx, ev.InvoiceID, next)
			slog.InfoContext(ctx, "payment closed", "invoice_id", ev.InvoiceID, "status", next)
			return OutcomeApplied, nil
		}
		return s.classifyNoop(ctx, ev)

	default:
		slog.InfoContext(ctx, "webhook status not actionable",
			"invoice_id", ev.InvoiceID, "status", ev.Status)
		return OutcomeIgnored, nil
	}
}

// classifyNoop distinguishes "no matching payment" from "nothing to change".
// Both are acknowledged; only the operational logging differs.
func (s *WebhookService) classifyNoop(ctx context.Context, ev Event) (Outcome, error) {
	p, err := s.store.PaymentByInvoiceID(ctx, ev.InvoiceID)
	if errors.Is(err, ports.ErrNotFound) {
		// Not an error from the provider's perspective: acknowledge so it
		// stops retrying, but flag it for the operator.
		slog.WarnContext(ctx, "webhook for unknown invoice",
			"invoice_id", ev.InvoiceID, "external_id", ev.ExternalID, "status", ev.Status)
		return OutcomeUnknownInvoice, nil
	}
	if err != nil {
		return "", fmt.Errorf("webhook: classify %q: %w", ev.InvoiceID, err)
	}

	slog.InfoContext(ctx, "webhook event was a no-op",
		"invoice_id", ev.InvoiceID, "current_status", p.Status, "event_status", ev.Status)
	return OutcomeNoop, nil
}

// propagateOrderStatus mirrors the payment transition onto the order row.
// Deliberately best-effort and non-atomic: the payment row is authoritative
// and eventual consistency between the two records is acceptable.
func (s *WebhookService) propagateOrderStatus(ctx context.Context, invoiceID string, status domain.PaymentStatus) {
	p, err := s.store.PaymentByInvoiceID(ctx, invoiceID)
	if err != nil {
		slog.WarnContext(ctx, "order propagation: payment lookup failed",
			"invoice_id", invoiceID, "error", err)
		return
	}
	if err := s.store.SetOrderStatus(ctx, p.OrderReference, domain.OrderStatusFor(status)); err != nil {
		slog.WarnContext(ctx, "order propagation failed",
			"invoice_id", invoiceID, "reference", p.OrderReference, "error", err)
	}
}
