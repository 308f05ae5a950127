// Package metrics defines Prometheus metrics for gliderwatch.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gliderwatch"

// Cycle metrics.
var (
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cycles_total",
		Help:      "Total number of processing cycles started.",
	})

	CycleFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cycle_failures_total",
		Help:      "Total number of cycles aborted by a fatal error.",
	})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cycle_duration_seconds",
		Help:      "Duration of processing cycles in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Feed metrics.
var (
	FeedListingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_listings_total",
		Help:      "Total number of valid listings seen in feed fetches.",
	})

	FeedRejectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_rejects_total",
		Help:      "Total number of malformed feed entries rejected.",
	})

	NewListingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "new_listings_total",
		Help:      "Total number of previously unseen listings processed.",
	})
)

// Enrichment metrics.
var (
	EnrichmentFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrichment_failures_total",
		Help:      "Total number of detail or profile page fetches that failed.",
	})

	UnknownGeneratorTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unknown_generator_total",
		Help:      "Total number of pages whose site generator was not recognized.",
	})
)

// Delivery metrics.
var (
	NotificationsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of listings delivered to the notifier.",
	})

	NotificationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Total number of listings whose delivery failed terminally.",
	})

	TelegramRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "telegram_retries_total",
		Help:      "Total number of Telegram requests retried after rate limiting.",
	})
)
