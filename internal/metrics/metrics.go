// Package metrics exposes Prometheus collectors for the crawl engine.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	tasksQueuedTotal       prometheus.Counter
	tasksFilteredTotal     *prometheus.CounterVec
	tasksUnroutedTotal     prometheus.Counter
	tasksProcessedTotal    *prometheus.CounterVec
	handlerDurationSeconds *prometheus.HistogramVec
	activeWorkers          prometheus.Gauge
	queueDepth             prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		tasksQueuedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crawl_tasks_queued_total",
				Help: "Total number of tasks admitted to the queue.",
			},
		)

		tasksFilteredTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawl_tasks_filtered_total",
				Help: "Total number of candidate tasks rejected before enqueue, labeled by site.",
			},
			[]string{"site"},
		)

		tasksUnroutedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crawl_tasks_unrouted_total",
				Help: "Total number of tasks discarded because no handler matched.",
			},
		)

		tasksProcessedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawl_tasks_processed_total",
				Help: "Total number of tasks a worker finished, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		handlerDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crawl_handler_duration_seconds",
				Help:    "Histogram of handler execution latencies, labeled by site.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"site"},
		)

		activeWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "crawl_active_workers",
				Help: "Number of workers currently processing a task.",
			},
		)

		queueDepth = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "crawl_queue_depth",
				Help: "Number of tasks waiting in the queue.",
			},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveQueued increments the admitted-task counter.
func ObserveQueued() {
	tasksQueuedTotal.Inc()
}

// ObserveFiltered increments the rejected-candidate counter for the site.
func ObserveFiltered(site string) {
	tasksFilteredTotal.WithLabelValues(SanitizeSite(site)).Inc()
}

// ObserveUnrouted increments the no-matching-handler counter.
func ObserveUnrouted() {
	tasksUnroutedTotal.Inc()
}

// ObserveProcessed increments the processed-task counter for the outcome
// ("ok" or "error") and records the handler latency.
func ObserveProcessed(site string, outcome string, duration time.Duration) {
	tasksProcessedTotal.WithLabelValues(outcome).Inc()
	handlerDurationSeconds.WithLabelValues(SanitizeSite(site)).Observe(duration.Seconds())
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	activeWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	activeWorkers.Dec()
}

// SetQueueDepth records the current number of queued tasks.
func SetQueueDepth(n int) {
	queueDepth.Set(float64(n))
}
