package completion

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CompletionMetricsRecorder defines the interface for recording completion
// request metrics. The interface abstracts the metrics backend so that unit
// tests can inject a mock recorder and providers (OpenAI-compatible, Claude)
// can share one implementation.
type CompletionMetricsRecorder interface {
	// RecordResponseLength records the length of a model response in characters.
	RecordResponseLength(length int)

	// RecordFailure increments the counter of failed completion requests.
	RecordFailure()

	// RecordDuration records the time taken by a completion request.
	RecordDuration(duration time.Duration)
}

// PrometheusCompletionMetrics implements CompletionMetricsRecorder using
// Prometheus metrics. This is the production implementation.
type PrometheusCompletionMetrics struct {
	lengthHistogram   prometheus.Histogram
	failureCounter    prometheus.Counter
	durationHistogram prometheus.Histogram
}

var (
	prometheusMetricsInstance *PrometheusCompletionMetrics
	prometheusMetricsOnce     sync.Once
)

// getOrCreateHistogram gets an existing histogram or creates a new one if it doesn't exist
func getOrCreateHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	h := prometheus.NewHistogram(opts)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Histogram)
		}
		return promauto.NewHistogram(opts)
	}
	return h
}

// getOrCreateCounter gets an existing counter or creates a new one if it doesn't exist
func getOrCreateCounter(opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Counter)
		}
		return promauto.NewCounter(opts)
	}
	return c
}

// NewPrometheusCompletionMetrics creates a new Prometheus-based metrics recorder.
// Uses singleton pattern to avoid duplicate metric registration in tests.
func NewPrometheusCompletionMetrics() *PrometheusCompletionMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusCompletionMetrics{
			lengthHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "completion_response_length_characters",
				Help:    "Distribution of model response lengths in characters (Unicode runes)",
				Buckets: []float64{100, 500, 1000, 2000, 4000, 8000, 16000},
			}),
			failureCounter: getOrCreateCounter(prometheus.CounterOpts{
				Name: "completion_request_failures_total",
				Help: "Total number of completion requests that failed after retries",
			}),
			durationHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "completion_request_duration_seconds",
				Help:    "Time taken by a single completion API request",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			}),
		}
	})
	return prometheusMetricsInstance
}

// RecordResponseLength implements CompletionMetricsRecorder.RecordResponseLength
func (p *PrometheusCompletionMetrics) RecordResponseLength(length int) {
	p.lengthHistogram.Observe(float64(length))
}

// RecordFailure implements CompletionMetricsRecorder.RecordFailure
func (p *PrometheusCompletionMetrics) RecordFailure() {
	p.failureCounter.Inc()
}

// RecordDuration implements CompletionMetricsRecorder.RecordDuration
func (p *PrometheusCompletionMetrics) RecordDuration(duration time.Duration) {
	p.durationHistogram.Observe(duration.Seconds())
}
