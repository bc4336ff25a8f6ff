// Package metrics exposes Prometheus counters for the bookmark core and the feed.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for bookmark operations.
const (
	OutcomeOK        = "ok"
	OutcomeDuplicate = "duplicate"
	OutcomeNotFound  = "not_found"
	OutcomeFailed    = "failed"
)

// Recorder is what the store, broadcaster and feed reloader report to.
type Recorder interface {
	RecordBookmarkOp(op, outcome string)
	RecordStoreError(op string)
	RecordEmit()
	SetSubscribers(n int)
	RecordFeedFetch(ok bool, latency time.Duration)
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	bookmarkOps *prometheus.CounterVec
	storeErrors *prometheus.CounterVec
	emits       prometheus.Counter
	subscribers prometheus.Gauge
	feedFetches *prometheus.CounterVec
	feedLatency prometheus.Histogram
}

// NewCollector creates a Collector and registers it on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		bookmarkOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kompas_bookmark_ops_total",
			Help: "Bookmark store operations by operation and outcome",
		}, []string{"op", "outcome"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kompas_bookmark_store_errors_total",
			Help: "Persistence errors downgraded at the bookmark store boundary",
		}, []string{"op"}),
		emits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kompas_broadcast_emits_total",
			Help: "Bookmark change pulses emitted",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kompas_broadcast_subscribers",
			Help: "Currently registered bookmark change observers",
		}),
		feedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kompas_feed_fetch_total",
			Help: "Home feed fetches by outcome",
		}, []string{"outcome"}),
		feedLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kompas_feed_fetch_latency_seconds",
			Help:    "Home feed fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.bookmarkOps,
		c.storeErrors,
		c.emits,
		c.subscribers,
		c.feedFetches,
		c.feedLatency,
	)

	return c
}

func (c *Collector) RecordBookmarkOp(op, outcome string) {
	c.bookmarkOps.WithLabelValues(op, outcome).Inc()
}

func (c *Collector) RecordStoreError(op string) {
	c.storeErrors.WithLabelValues(op).Inc()
}

func (c *Collector) RecordEmit() {
	c.emits.Inc()
}

func (c *Collector) SetSubscribers(n int) {
	c.subscribers.Set(float64(n))
}

func (c *Collector) RecordFeedFetch(ok bool, latency time.Duration) {
	outcome := OutcomeOK
	if !ok {
		outcome = OutcomeFailed
	}
	c.feedFetches.WithLabelValues(outcome).Inc()
	c.feedLatency.Observe(latency.Seconds())
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) RecordBookmarkOp(string, string)     {}
func (NopRecorder) RecordStoreError(string)             {}
func (NopRecorder) RecordEmit()                         {}
func (NopRecorder) SetSubscribers(int)                  {}
func (NopRecorder) RecordFeedFetch(bool, time.Duration) {}
