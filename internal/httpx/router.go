package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/pkg/metrics"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/api/checkout", handler.Checkout)
	r.Post("/api/webhooks/xendit", handler.XenditWebhook)
	r.Get("/api/payment-status", handler.PaymentStatus)
	r.Get("/api/products", handler.ListProducts)

	r.Get("/health", handler.Health)
	r.Handle("/metrics", metrics.Handler())

	return r
}
