// Package metrics exposes Prometheus collectors for linking runs, keyword
// extraction batches and page fetches.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "seosuite"

// Fetch results recorded by ObserveFetch.
const (
	FetchOK       = "ok"
	FetchError    = "error"
	FetchCacheHit = "cache_hit"
)

// Metrics holds all seosuite collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry prometheus.Gatherer

	// Linking
	LinkRuns      *prometheus.CounterVec
	LinkArticles  prometheus.Histogram
	LinksRendered prometheus.Counter

	// Keyword extraction
	ExtractionBatches prometheus.Counter
	ExtractedURLs     *prometheus.CounterVec
	BatchDuration     prometheus.Histogram

	// Fetching
	Fetches       *prometheus.CounterVec
	FetchDuration prometheus.Histogram
}

// New registers the collectors with reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		LinkRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "link_runs_total",
			Help:      "Linking maps generated, by strategy",
		}, []string{"strategy"}),
		LinkArticles: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "link_run_articles",
			Help:      "Number of articles per linking run",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		LinksRendered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "link_texts_rendered_total",
			Help:      "Link paragraphs rendered",
		}),

		ExtractionBatches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keyword_batches_total",
			Help:      "Keyword extraction batches completed",
		}),
		ExtractedURLs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keyword_urls_total",
			Help:      "URLs processed by keyword extraction, by result",
		}, []string{"result"}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "keyword_batch_duration_seconds",
			Help:      "Wall time of a keyword extraction batch",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),

		Fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_fetches_total",
			Help:      "Page and sitemap fetches, by result",
		}, []string{"result"}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_fetch_duration_seconds",
			Help:      "Time to retrieve a single page",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveLinkRun records a generated linking map.
func (m *Metrics) ObserveLinkRun(strategy string, articles int) {
	if m == nil {
		return
	}
	m.LinkRuns.WithLabelValues(strategy).Inc()
	m.LinkArticles.Observe(float64(articles))
}

// ObserveRendered records rendered link paragraphs.
func (m *Metrics) ObserveRendered(n int) {
	if m == nil {
		return
	}
	m.LinksRendered.Add(float64(n))
}

// ObserveBatch records a finished extraction batch.
func (m *Metrics) ObserveBatch(successful, failed int, d time.Duration) {
	if m == nil {
		return
	}
	m.ExtractionBatches.Inc()
	m.ExtractedURLs.WithLabelValues("success").Add(float64(successful))
	m.ExtractedURLs.WithLabelValues("failed").Add(float64(failed))
	m.BatchDuration.Observe(d.Seconds())
}

// ObserveFetch records one fetch attempt. Cache hits pass a zero duration.
func (m *Metrics) ObserveFetch(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.Fetches.WithLabelValues(result).Inc()
	if result != FetchCacheHit {
		m.FetchDuration.Observe(d.Seconds())
	}
}
