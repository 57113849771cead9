package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Wallet metrics
	WalletsCreated    prometheus.Counter
	ItemMutations     *prometheus.CounterVec
	ItemValue         *prometheus.HistogramVec
	MutationFailures  *prometheus.CounterVec
	BalanceMismatches *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	PublishFailures *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metrics with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		WalletsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "gowallet_wallets_created_total",
			Help: "Total number of wallets created",
		}),
		ItemMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gowallet_item_mutations_total",
				Help: "Committed wallet item mutations by operation and type",
			},
			[]string{"operation", "type"},
		),
		ItemValue: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gowallet_item_value",
				Help:    "Wallet item values",
				Buckets: []float64{1, 10, 50, 100, 500, 1000, 10000, 100000},
			},
			[]string{"type"},
		),
		MutationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gowallet_mutation_failures_total",
				Help: "Failed wallet mutations by operation and reason",
			},
			[]string{"operation", "reason"},
		),
		BalanceMismatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gowallet_balance_mismatches_total",
				Help: "Wallets whose cached value differed from the item sum",
			},
			[]string{"wallet_id"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gowallet_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gowallet_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "gowallet_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gowallet_outbox_events_published_total",
				Help: "Outbox events delivered to the broker",
			},
			[]string{"event_type"},
		),
		PublishFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gowallet_outbox_publish_failures_total",
				Help: "Outbox events that failed to publish",
			},
			[]string{"event_type"},
		),
	}
}

// WalletCreated implements usecase.MetricsRecorder.
func (m *Metrics) WalletCreated() {
	m.WalletsCreated.Inc()
}

// ItemMutated implements usecase.MetricsRecorder.
func (m *Metrics) ItemMutated(operation string, itemType domain.ItemType, value decimal.Decimal) {
	m.ItemMutations.WithLabelValues(operation, string(itemType)).Inc()
	m.ItemValue.WithLabelValues(string(itemType)).Observe(value.InexactFloat64())
}

// MutationFailed implements usecase.MetricsRecorder.
func (m *Metrics) MutationFailed(operation, reason string) {
	m.MutationFailures.WithLabelValues(operation, reason).Inc()
}

// BalanceMismatch implements usecase.MetricsRecorder.
func (m *Metrics) BalanceMismatch(walletID string) {
	m.BalanceMismatches.WithLabelValues(walletID).Inc()
}

// EventPublished records a delivered outbox event.
func (m *Metrics) EventPublished(eventType string) {
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

// EventPublishFailed records an outbox event that could not be delivered.
func (m *Metrics) EventPublishFailed(eventType string) {
	m.PublishFailures.WithLabelValues(eventType).Inc()
}
