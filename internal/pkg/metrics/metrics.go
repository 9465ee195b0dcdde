// Package metrics registers the Prometheus instruments for the storefront.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	// Requests counts HTTP requests by handler and response status.
	Requests *prometheus.CounterVec

	// WebhookOutcomes counts webhook deliveries by business outcome
	// (applied, noop, unknown_invoice, ignored), which is invisible in the
	// HTTP status code because no-ops are acknowledged with 200.
	WebhookOutcomes *prometheus.CounterVec
}

func NewServerMetrics(service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})

	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: service,
		Name:      "webhook_outcomes_total",
		Help:      "Webhook deliveries by reconciliation outcome.",
	}, []string{"outcome"})

	prometheus.MustRegister(requests, outcomes)
	return &ServerMetrics{Requests: requests, WebhookOutcomes: outcomes}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
