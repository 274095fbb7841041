package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PodsTotal is the number of pods currently known locally, by depth bucket.
	PodsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "colony_pods_total",
			Help: "Total number of pods known locally, by depth",
		},
		[]string{"depth"},
	)

	ScratchpadsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "colony_scratchpads_total",
			Help: "Total number of scratchpads owned locally",
		},
	)

	KeyDerivationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "colony_key_derivations_total",
			Help: "Total number of keys derived from the master secret, by bucket",
		},
		[]string{"bucket"}, // pointer, scratchpad, bad
	)

	UploadOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "colony_upload_operations_total",
			Help: "Total number of network operations issued by upload_all, by kind and result",
		},
		[]string{"kind", "result"},
	)

	UploadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "colony_upload_all_duration_seconds",
			Help:    "Time taken for upload_all to drain the update queue",
			Buckets: prometheus.DefBuckets,
		},
	)

	RefreshDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "colony_refresh_duration_seconds",
			Help:    "Time taken for refresh operations, by kind",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"}, // cache, ref
	)

	ForksResolvedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "colony_forks_resolved_total",
			Help: "Total number of scratchpad forks resolved via select_newest",
		},
	)

	CrawlPodsVisitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "colony_crawl_pods_visited_total",
			Help: "Total number of pods visited during reference crawls",
		},
	)

	SearchQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "colony_search_queries_total",
			Help: "Total number of search queries served, by type",
		},
		[]string{"type"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "colony_search_duration_seconds",
			Help:    "Search query duration in seconds, by type",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(PodsTotal)
	prometheus.MustRegister(ScratchpadsTotal)
	prometheus.MustRegister(KeyDerivationsTotal)
	prometheus.MustRegister(UploadOperationsTotal)
	prometheus.MustRegister(UploadDuration)
	prometheus.MustRegister(RefreshDuration)
	prometheus.MustRegister(ForksResolvedTotal)
	prometheus.MustRegister(CrawlPodsVisitedTotal)
	prometheus.MustRegister(SearchQueriesTotal)
	prometheus.MustRegister(SearchDuration)
}

// Handler returns the Prometheus HTTP handler for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
