package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/domain"
	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/ports"
)

// Validation errors are rejected at the boundary before the provider is
// contacted; nothing is persisted for them.
var (
	ErrEmptyCart    = errors.New("checkout: cart is empty")
	ErrInvalidItem  = errors.New("checkout: item must have product_id, name, positive price and quantity")
	ErrInvalidEmail = errors.New("checkout: payer email is invalid")
)

// BookkeepingError reports the awkward case where the provider accepted the
// invoice but the local write failed afterwards. The caller must be told the
// invoice exists so a retry does not create a duplicate.
type BookkeepingError struct {
	InvoiceID string
	Err       error
}

func (e *BookkeepingError) Error() string {
	return fmt.Sprintf("checkout: invoice %s created but not recorded locally: %v", e.InvoiceID, e.Err)
}

func (e *BookkeepingError) Unwrap() error { return e.Err }

// CheckoutService is the order/checkout initiator: it snapshots the cart,
// computes totals, opens a provider invoice and persists the pending
// order/payment pair.
type CheckoutService struct {
	store    ports.Store
	provider ports.InvoiceProvider

	shippingCost  int64
	invoiceExpiry time.Duration
	redirectBase  string
}

func NewCheckoutService(
	store ports.Store,
	provider ports.InvoiceProvider,
	shippingCost int64,
	invoiceExpiry time.Duration,
	redirectBase string,
) *CheckoutService {
	return &CheckoutService{
		store:         store,
		provider:      provider,
		shippingCost:  shippingCost,
		invoiceExpiry: invoiceExpiry,
		redirectBase:  redirectBase,
	}
}

// CheckoutResult is what the HTTP layer returns to the client.
type CheckoutResult struct {
	Reference  string
	InvoiceID  string
	InvoiceURL string
	Subtotal   int64
	Total      int64
}

// Submit runs one checkout attempt.
//
// Order of operations matters: validation first (client error, no I/O), then
// the provider call (its timeout bounds the whole attempt), and only after the
// provider accepted do the local rows exist. A provider rejection or timeout
// leaves no local state behind.
func (s *CheckoutService) Submit(ctx context.Context, items []domain.LineItem, payerEmail string) (*CheckoutResult, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, it := range items {
		if it.ProductID == "" || it.Name == "" || it.Price <= 0 || it.Quantity <= 0 {
			return nil, ErrInvalidItem
		}
	}
	if _, err := mail.ParseAddress(payerEmail); err != nil {
		return nil, ErrInvalidEmail
	}

	var subtotal int64
	for _, it := range items {
		subtotal += it.Subtotal()
	}
	total := subtotal + s.shippingCost

	// Unique with overwhelming probability: millisecond timestamp plus a
	// random suffix. Uniqueness only needs to hold among near-simultaneous
	// requests, so no coordination is needed.
	reference := newReference()

	req := ports.InvoiceRequest{
		ExternalID:  reference,
		PayerEmail:  payerEmail,
		Description: fmt.Sprintf("Pembelian produk di toko demo. Total %d item.", len(items)),
		Amount:      total,
		Expiry:      s.invoiceExpiry,
		SuccessURL:  s.redirectBase + "/success",
		FailureURL:  s.redirectBase + "/failure",
		Items:       invoiceItems(items),
	}

	inv, err := s.provider.CreateInvoice(ctx, req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &domain.Order{
		Reference:    reference,
		PayerEmail:   payerEmail,
		Items:        items,
		Subtotal:     subtotal,
		ShippingCost: s.shippingCost,
		Total:        total,
		Status:       domain.OrderPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	payment := &domain.Payment{
		InvoiceID:      inv.ID,
		OrderReference: reference,
		Amount:         total,
		Status:         domain.PaymentPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.CreateCheckout(ctx, order, payment); err != nil {
		// The invoice exists at the provider even though we could not record
		// it. Surfacing the invoice ID lets an operator reconcile by hand.
		slog.ErrorContext(ctx, "invoice created but checkout not persisted",
			"invoice_id", inv.ID, "reference", reference, "error", err)
		return nil, &BookkeepingError{InvoiceID: inv.ID, Err: err}
	}

	slog.InfoContext(ctx, "checkout created",
		"reference", reference, "invoice_id", inv.ID, "total", total)

	return &CheckoutResult{
		Reference:  reference,
		InvoiceID:  inv.ID,
		InvoiceURL: inv.InvoiceURL,
		Subtotal:   subtotal,
		Total:      total,
	}, nil
}

func invoiceItems(items []domain.LineItem) []ports.InvoiceItem {
	out := make([]ports.InvoiceItem, len(items))
	for i, it := range items {
		out[i] = ports.InvoiceItem{Name: it.Name, Price: it.Price, Quantity: it.Quantity}
	}
	return out
}

func newReference() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("order-%d-%s", time.Now().UnixMilli(), suffix)
}
