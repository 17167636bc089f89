// Package metrics provides Prometheus metrics collection for the responder.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "robinai"

// Collector holds all Prometheus metrics for the responder.
type Collector struct {
	// Webhook metrics
	WebhookEvents   *prometheus.CounterVec
	WebhookDuration prometheus.Histogram

	// Completion metrics
	CompletionDuration prometheus.Histogram
	CompletionErrors   prometheus.Counter
	TokensUsed         *prometheus.CounterVec

	// Delivery metrics
	DeliveryFailures prometheus.Counter

	// Budget metrics
	BudgetRemaining prometheus.Gauge

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
}

// New creates a new metrics collector registered on the default registry.
func New() *Collector {
	return newWith(promauto.With(prometheus.DefaultRegisterer))
}

// NewWithRegistry creates a collector on a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	return newWith(promauto.With(reg))
}

func newWith(factory promauto.Factory) *Collector {
	return &Collector{
		WebhookEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_events_total",
				Help:      "Webhook events processed, by outcome",
			},
			[]string{"outcome"},
		),
		WebhookDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "webhook_duration_seconds",
				Help:      "End-to-end webhook handling duration in seconds",
				Buckets:   []float64{.005, .025, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),
		CompletionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "completion_duration_seconds",
				Help:      "Completion API call duration in seconds",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),
		CompletionErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "completion_errors_total",
				Help:      "Failed completion API calls",
			},
		),
		TokensUsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tokens_used_total",
				Help:      "Tokens consumed, by kind (prompt, completion)",
			},
			[]string{"kind"},
		),
		DeliveryFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "delivery_failures_total",
				Help:      "Failed posts to the group chat",
			},
		),
		BudgetRemaining: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "budget_tokens_remaining",
				Help:      "Tokens remaining in today's budget",
			},
		),
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reloads_total",
				Help:      "Successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reload_errors_total",
				Help:      "Failed config reloads",
			},
		),
	}
}
