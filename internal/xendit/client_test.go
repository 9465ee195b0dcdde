package xendit

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/ports"
)

func invoiceReq() ports.InvoiceRequest {
	return ports.InvoiceRequest{
		ExternalID:  "order-123-abc",
		PayerEmail:  "buyer@example.com",
		Description: "test order",
		Amount:      165000,
		Expiry:      time.Hour,
		SuccessURL:  "http://localhost:3000/success",
		FailureURL:  "http://localhost:3000/failure",
		Items: []ports.InvoiceItem{
			{Name: "Kopi", Price: 55000, Quantity: 2},
			{Name: "Teh", Price: 30000, Quantity: 1},
		},
	}
}

func TestCreateInvoice(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/invoices", r.URL.Path)

		// Secret key as basic-auth username with empty password.
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("sk_test:"))
		assert.Equal(t, want, r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "inv_abc",
			"invoice_url": "https://checkout.xendit.co/web/inv_abc",
			"status":      "PENDING",
			"expiry_date": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
		})
	}))
	defer srv.Close()

	c := NewClient("sk_test", 5*time.Second)
	c.BaseURL = srv.URL

	inv, err := c.CreateInvoice(context.Background(), invoiceReq())
	require.NoError(t, err)
	assert.Equal(t, "inv_abc", inv.ID)
	assert.Equal(t, "https://checkout.xendit.co/web/inv_abc", inv.InvoiceURL)

	assert.Equal(t, "order-123-abc", captured["external_id"])
	assert.Equal(t, float64(165000), captured["amount"])
	assert.Equal(t, float64(3600), captured["invoice_duration"])
	assert.Len(t, captured["items"], 2)
}

func TestCreateInvoiceProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error_code": "MINIMUM_AMOUNT_ERROR",
			"message":    "amount below minimum",
		})
	}))
	defer srv.Close()

	c := NewClient("sk_test", 5*time.Second)
	c.BaseURL = srv.URL

	_, err := c.CreateInvoice(context.Background(), invoiceReq())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "MINIMUM_AMOUNT_ERROR", apiErr.Code)
	assert.Equal(t, "amount below minimum", apiErr.Message)
}

func TestCreateInvoiceMissingKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient("", 5*time.Second)
	c.BaseURL = srv.URL

	_, err := c.CreateInvoice(context.Background(), invoiceReq())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.False(t, called, "no request may leave the process without a credential")
}

func TestCreateInvoiceIncompleteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "PENDING"})
	}))
	defer srv.Close()

	c := NewClient("sk_test", 5*time.Second)
	c.BaseURL = srv.URL

	_, err := c.CreateInvoice(context.Background(), invoiceReq())
	assert.Error(t, err)
}

func TestCreateInvoiceTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient("sk_test", 20*time.Millisecond)
	c.BaseURL = srv.URL

	_, err := c.CreateInvoice(context.Background(), invoiceReq())
	assert.Error(t, err)
}
