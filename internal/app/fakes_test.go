package app

import (
	"context"
	"sync"
	"time"

	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/domain"
	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/ports"
)

// fakeStore is an in-memory ports.Store for service tests. Its conditional
// updates mirror the SQL guards so the idempotency tests exercise the same
// semantics the real store enforces.
type fakeStore struct {
	mu       sync.Mutex
	orders   map[string]*domain.Order
	payments map[string]*domain.Payment
	products []domain.Product

	createErr error
	settleErr error

	createCalls  int
	settleCalls  int
	writeAttempt int
}

var _ ports.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:   make(map[string]*domain.Order),
		payments: make(map[string]*domain.Payment),
	}
}

func (f *fakeStore) CreateCheckout(_ context.Context, order *domain.Order, payment *domain.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	o := *order
	p := *payment
	f.orders[o.Reference] = &o
	f.payments[p.InvoiceID] = &p
	return nil
}

func (f *fakeStore) PaymentByInvoiceID(_ context.Context, invoiceID string) (*domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[invoiceID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) SettlePayment(_ context.Context, invoiceID, method string, paidAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settleCalls++
	f.writeAttempt++
	if f.settleErr != nil {
		return false, f.settleErr
	}
	p, ok := f.payments[invoiceID]
	if !ok || p.Status == domain.PaymentSuccess {
		return false, nil
	}
	p.Status = domain.PaymentSuccess
	t := paidAt
	p.PaidAt = &t
	if method != "" {
		p.PaymentMethod = method
	}
	return true, nil
}

func (f *fakeStore) ClosePayment(_ context.Context, invoiceID string, status domain.PaymentStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeAttempt++
	p, ok := f.payments[invoiceID]
	if !ok || p.Status != domain.PaymentPending {
		return false, nil
	}
	p.Status = status
	return true, nil
}

func (f *fakeStore) SetOrderStatus(_ context.Context, reference string, status domain.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[reference]; ok {
		o.Status = status
	}
	return nil
}

func (f *fakeStore) StatusByReference(_ context.Context, reference string) (domain.PaymentStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.OrderReference == reference {
			return p.Status, nil
		}
	}
	return "", ports.ErrNotFound
}

func (f *fakeStore) ListProducts(_ context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Product(nil), f.products...), nil
}

func (f *fakeStore) Ping(context.Context) error { return nil }

// seedPayment installs an order/payment pair directly, bypassing checkout.
func (f *fakeStore) seedPayment(invoiceID, reference string, status domain.PaymentStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[reference] = &domain.Order{Reference: reference, Status: domain.OrderPending}
	p := &domain.Payment{InvoiceID: invoiceID, OrderReference: reference, Status: status}
	if status == domain.PaymentSuccess {
		t := time.Now().UTC()
		p.PaidAt = &t
	}
	f.payments[invoiceID] = p
}

// fakeProvider is a scripted ports.InvoiceProvider.
type fakeProvider struct {
	mu       sync.Mutex
	requests []ports.InvoiceRequest
	invoice  *ports.Invoice
	err      error
}

var _ ports.InvoiceProvider = (*fakeProvider)(nil)

func (f *fakeProvider) CreateInvoice(_ context.Context, req ports.InvoiceRequest) (*ports.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	inv := *f.invoice
	return &inv, nil
}
