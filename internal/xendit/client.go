// Package xendit implements ports.InvoiceProvider against the Xendit v2
// invoice API. Only the fields this system depends on are modelled; the rest
// of the provider payload is ignored.
package xendit

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/ports"
)

const defaultBaseURL = "https://api.xendit.co"

// ErrMissingAPIKey marks a server misconfiguration: the secret key is absent,
// so no request was attempted. Handlers must surface this as a generic server
// fault, distinct from a provider rejection.
var ErrMissingAPIKey = errors.New("xendit: secret key not configured")

// APIError carries a non-success response from the provider. The status code
// and message are propagated to the checkout caller.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("xendit: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Client talks to the Xendit invoice API.
type Client struct {
	apiKey string

	// BaseURL is overridable for tests.
	BaseURL string

	httpClient *http.Client
}

var _ ports.InvoiceProvider = (*Client)(nil)

// NewClient builds a client with a bounded request timeout. The outbound
// transport is instrumented so provider calls show up in traces.
func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		BaseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// invoiceRequest is the wire shape of POST /v2/invoices.
type invoiceRequest struct {
	ExternalID         string        `json:"external_id"`
	PayerEmail         string        `json:"payer_email"`
	Description        string        `json:"description"`
	Amount             int64         `json:"amount"`
	InvoiceDuration    int           `json:"invoice_duration"`
	SuccessRedirectURL string        `json:"success_redirect_url,omitempty"`
	FailureRedirectURL string        `json:"failure_redirect_url,omitempty"`
	Items              []invoiceItem `json:"items"`
}

type invoiceItem struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type invoiceResponse struct {
	ID         string    `json:"id"`
	InvoiceURL string    `json:"invoice_url"`
	Status     string    `json:"status"`
	ExpiryDate time.Time `json:"expiry_date"`
}

type errorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// CreateInvoice opens a hosted invoice. The context bounds the call on top of
// the client-level timeout; on error no invoice handle is returned, and the
// caller must not create local records.
func (c *Client) CreateInvoice(ctx context.Context, req ports.InvoiceRequest) (*ports.Invoice, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	body := invoiceRequest{
		ExternalID:         req.ExternalID,
		PayerEmail:         req.PayerEmail,
		Description:        req.Description,
		Amount:             req.Amount,
		InvoiceDuration:    int(req.Expiry.Seconds()),
		SuccessRedirectURL: req.SuccessURL,
		FailureRedirectURL: req.FailureURL,
		Items:              make([]invoiceItem, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		body.Items = append(body.Items, invoiceItem{Name: it.Name, Price: it.Price, Quantity: it.Quantity})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("xendit: marshal invoice request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v2/invoices", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("xendit: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Basic "+basicAuth(c.apiKey))

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("xendit: create invoice %q: %w", req.ExternalID, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var apiErr errorResponse
		if err := json.NewDecoder(res.Body).Decode(&apiErr); err != nil {
			apiErr.Message = "invoice creation rejected"
		}
		return nil, &APIError{
			StatusCode: res.StatusCode,
			Code:       apiErr.ErrorCode,
			Message:    apiErr.Message,
		}
	}

	var inv invoiceResponse
	if err := json.NewDecoder(res.Body).Decode(&inv); err != nil {
		return nil, fmt.Errorf("xendit: decode invoice response: %w", err)
	}
	if inv.ID == "" || inv.InvoiceURL == "" {
		return nil, fmt.Errorf("xendit: incomplete invoice response for %q", req.ExternalID)
	}

	return &ports.Invoice{
		ID:         inv.ID,
		InvoiceURL: inv.InvoiceURL,
		ExpiryDate: inv.ExpiryDate,
	}, nil
}

// basicAuth encodes the secret key the way the Xendit API expects:
// the key as username with an empty password.
func basicAuth(key string) string {
	return base64.StdEncoding.EncodeToString([]byte(key + ":"))
}
