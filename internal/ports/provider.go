package ports

import (
	"context"
	"time"
)

// InvoiceRequest captures everything needed to open a hosted invoice with the
// payment provider.
type InvoiceRequest struct {
	ExternalID  string
	PayerEmail  string
	Description string
	Amount      int64
	Expiry      time.Duration
	SuccessURL  string
	FailureURL  string
	Items       []InvoiceItem
}

// InvoiceItem mirrors a cart line on the provider's invoice page.
type InvoiceItem struct {
	Name     string
	Price    int64
	Quantity int
}

// Invoice is the minimal information the provider returns for a created
// invoice: its own identifier (the webhook lookup key) and the hosted
// payment-page URL handed back to the client.
type Invoice struct {
	ID         string
	InvoiceURL string
	ExpiryDate time.Time
}

// InvoiceProvider abstracts the upstream invoicing API.
type InvoiceProvider interface {
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error)
}
