// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gentest_provider_requests_total",
		Help: "Provider calls by provider, model and outcome.",
	}, []string{"provider", "model", "outcome"})

	ProviderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gentest_provider_request_duration_seconds",
		Help:    "Provider call latency.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
	}, []string{"provider", "model"})

	Generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gentest_generations_total",
		Help: "Generation requests by outcome.",
	}, []string{"outcome"})

	TokensMetered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gentest_tokens_metered_total",
		Help: "Tokens added to user usage counters.",
	}, []string{"model"})

	DocumentationDegraded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gentest_documentation_degraded_total",
		Help: "Generations returned without a documentation object.",
	})

	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gentest_webhook_events_total",
		Help: "Billing and identity webhook deliveries by provider and outcome.",
	}, []string{"provider", "outcome"})
)
