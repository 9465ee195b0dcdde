package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/app"
	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/domain"
	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/pkg/metrics"
	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/ports"
	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/xendit"
)

// CallbackTokenHeader carries the webhook shared secret, named by the
// provider's callback convention.
const CallbackTokenHeader = "X-Callback-Token"

// Handler handles the storefront HTTP surface: checkout submission, provider
// webhooks, status polling and the catalog.
type Handler struct {
	checkout *app.CheckoutService
	webhook  *app.WebhookService
	status   *app.StatusService
	catalog  *app.CatalogService
	store    ports.Store

	// callbackToken is the expected X-Callback-Token value. Empty means the
	// deployment is misconfigured; the webhook endpoint answers 500 rather
	// than silently accepting unauthenticated callbacks.
	callbackToken string

	metrics *metrics.ServerMetrics
}

func NewHandler(
	checkout *app.CheckoutService,
	webhook *app.WebhookService,
	status *app.StatusService,
	catalog *app.CatalogService,
	store ports.Store,
	callbackToken string,
	m *metrics.ServerMetrics,
) *Handler {
	return &Handler{
		checkout:      checkout,
		webhook:       webhook,
		status:        status,
		catalog:       catalog,
		store:         store,
		callbackToken: callbackToken,
		metrics:       m,
	}
}

// Checkout accepts the cart payload and returns the hosted payment URL.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "checkout", http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	items := make([]domain.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	res, err := h.checkout.Submit(r.Context(), items, req.PayerEmail)
	if err != nil {
		h.writeCheckoutError(w, r, err)
		return
	}

	h.writeJSON(w, "checkout", http.StatusOK, CheckoutResponse{
		Message:    "Invoice berhasil dibuat",
		InvoiceURL: res.InvoiceURL,
		Reference:  res.Reference,
	})
}

// writeCheckoutError maps the checkout error taxonomy onto HTTP statuses:
// validation → 400, missing credential → 500 (generic, nothing leaked),
// provider rejection → the provider's own status and message, bookkeeping
// failure after a created invoice → 500 with an explicit warning so the
// client does not resubmit and create a duplicate invoice.
func (h *Handler) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		apiErr  *xendit.APIError
		bookErr *app.BookkeepingError
	)
	switch {
	case errors.Is(err, app.ErrEmptyCart),
		errors.Is(err, app.ErrInvalidItem),
		errors.Is(err, app.ErrInvalidEmail):
		h.writeError(w, "checkout", http.StatusBadRequest, "invalid_request", err.Error())

	case errors.Is(err, xendit.ErrMissingAPIKey):
		slog.ErrorContext(r.Context(), "checkout rejected: provider credential not configured")
		h.writeError(w, "checkout", http.StatusInternalServerError, "configuration_error", "server configuration error")

	case errors.As(err, &apiErr):
		h.writeError(w, "checkout", apiErr.StatusCode, "provider_rejected", apiErr.Message)

	case errors.As(err, &bookErr):
		h.writeError(w, "checkout", http.StatusInternalServerError, "invoice_not_recorded",
			"invoice was created but could not be recorded; do not retry, contact support")

	default:
		slog.ErrorContext(r.Context(), "checkout failed", "error", err)
		h.writeError(w, "checkout", http.StatusBadGateway, "provider_error", "could not create invoice")
	}
}

// XenditWebhook receives asynchronous provider callbacks.
//
// Acknowledgment policy: once the token matches and the payload is
// structurally valid, the response is 200 regardless of whether a business
// update happened: retrying cannot fix an unknown invoice or an
// already-settled payment, and a non-2xx would make the provider hammer the
// endpoint. 5xx is reserved for misconfiguration and infrastructure faults,
// where a retry is actually wanted.
func (h *Handler) XenditWebhook(w http.ResponseWriter, r *http.Request) {
	if h.callbackToken == "" {
		slog.ErrorContext(r.Context(), "webhook rejected: callback token not configured")
		h.writeError(w, "webhook", http.StatusInternalServerError, "configuration_error", "server configuration error")
		return
	}
	if r.Header.Get(CallbackTokenHeader) != h.callbackToken {
		slog.WarnContext(r.Context(), "webhook rejected: invalid callback token")
		h.writeError(w, "webhook", http.StatusForbidden, "forbidden", "invalid callback token")
		return
	}

	var req WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "webhook", http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.ID == "" || req.Status == "" {
		h.writeError(w, "webhook", http.StatusBadRequest, "invalid_payload", "id and status are required")
		return
	}

	outcome, err := h.webhook.Process(r.Context(), app.Event{
		InvoiceID:     req.ID,
		ExternalID:    req.ExternalID,
		Status:        req.Status,
		PaymentMethod: req.PaymentMethod,
		PaidAmount:    req.PaidAmount,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "webhook processing failed", "invoice_id", req.ID, "error", err)
		h.writeError(w, "webhook", http.StatusInternalServerError, "internal_error", "webhook processing failed")
		return
	}

	if h.metrics != nil {
		h.metrics.WebhookOutcomes.WithLabelValues(string(outcome)).Inc()
	}
	h.writeJSON(w, "webhook", http.StatusOK, WebhookResponse{
		Message: "webhook processed: " + string(outcome),
	})
}

// PaymentStatus answers client polling by order reference.
func (h *Handler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get("transaction_id")
	if reference == "" {
		h.writeError(w, "status", http.StatusBadRequest, "transaction_id_required", "")
		return
	}

	status, err := h.status.Get(r.Context(), reference)
	if errors.Is(err, ports.ErrNotFound) {
		// Distinct from every real status so the client can tell "we have no
		// such transaction" apart from "still pending".
		h.writeJSON(w, "status", http.StatusNotFound, StatusResponse{Status: "UNKNOWN"})
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "status lookup failed", "reference", reference, "error", err)
		h.writeError(w, "status", http.StatusInternalServerError, "internal_error", "could not read status")
		return
	}

	h.writeJSON(w, "status", http.StatusOK, StatusResponse{Status: string(status)})
}

// ListProducts serves the catalog page data.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "catalog listing failed", "error", err)
		h.writeError(w, "products", http.StatusInternalServerError, "internal_error", "could not load products")
		return
	}

	data := make([]ProductDTO, len(products))
	for i, p := range products {
		data[i] = ProductDTO{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Image:       p.Image,
		}
	}
	h.writeJSON(w, "products", http.StatusOK, ProductsResponse{Success: true, Data: data})
}

// Health reports database reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.writeJSON(w, "health", http.StatusServiceUnavailable, map[string]string{"status": "db_error"})
		return
	}
	h.writeJSON(w, "health", http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, handler string, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
	if h.metrics != nil {
		h.metrics.Requests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
	}
}

func (h *Handler) writeError(w http.ResponseWriter, handler string, status int, code, msg string) {
	h.writeJSON(w, handler, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
