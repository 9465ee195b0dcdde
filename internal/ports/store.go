package ports

import (
	"context"
	"errors"
	"time"

	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/domain"
)

// ErrNotFound is returned by lookups when no record matches.
var ErrNotFound = errors.New("store: not found")

// Store is the port for the persistence layer. The application services depend
// on this abstraction, not on SQLite directly, so the implementation can be
// swapped for Postgres or an in-memory fake in tests.
//
// SettlePayment and ClosePayment must be single atomic conditional updates,
// not read-then-write pairs: two concurrent webhook deliveries for the same
// invoice must observe exactly one applied transition.
type Store interface {
	// CreateCheckout persists the order snapshot and its pending payment in
	// one transaction.
	CreateCheckout(ctx context.Context, order *domain.Order, payment *domain.Payment) error

	// PaymentByInvoiceID looks a payment up by the provider-issued invoice ID.
	PaymentByInvoiceID(ctx context.Context, invoiceID string) (*domain.Payment, error)

	// SettlePayment moves the payment to SUCCESS and records paidAt, only if
	// the current status is not already SUCCESS. Reports whether a row
	// actually changed. A non-empty method overwrites the stored one.
	SettlePayment(ctx context.Context, invoiceID, method string, paidAt time.Time) (bool, error)

	// ClosePayment moves a PENDING payment to the given terminal-failure
	// status (EXPIRED or FAILED). Reports whether a row actually changed.
	ClosePayment(ctx context.Context, invoiceID string, status domain.PaymentStatus) (bool, error)

	// SetOrderStatus is the secondary, best-effort propagation write.
	SetOrderStatus(ctx context.Context, reference string, status domain.OrderStatus) error

	// StatusByReference returns the payment status for the order identified
	// by its external reference. ErrNotFound when the reference is unknown.
	StatusByReference(ctx context.Context, reference string) (domain.PaymentStatus, error)

	// ListProducts returns the catalog.
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// Ping reports whether the backing database is reachable.
	Ping(ctx context.Context) error
}
