package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics track material ingestion and extraction
var (
	// MaterialsTotal tracks total number of materials in the database
	MaterialsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "materials_total",
			Help: "Total number of materials in the database",
		},
	)

	// MaterialsProcessedTotal counts processed materials by outcome
	MaterialsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "materials_processed_total",
			Help: "Total number of materials processed",
		},
		[]string{"status"}, // status: success, failure
	)

	// MaterialProcessingDuration measures end-to-end ingestion time
	MaterialProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "material_processing_duration_seconds",
			Help:    "Time taken to ingest one material end to end",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	// ExtractionErrorsTotal counts extraction failures by source format
	ExtractionErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_errors_total",
			Help: "Total number of content extraction failures",
		},
		[]string{"format"},
	)

	// ExtractedContentSize measures extracted text size in characters
	ExtractedContentSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "extracted_content_size_characters",
			Help: "Extracted material text size in characters",
			Buckets: []float64{
				100, 400, 1600, 6400, 25600, 102400, 409600, 1638400,
			},
		},
	)
)

// Generation metrics track the structured generation operations
var (
	// GenerationRequestsTotal counts generation operations by kind and outcome
	GenerationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_requests_total",
			Help: "Total number of structured generation operations",
		},
		[]string{"operation", "status"}, // operation: objectives, templates, question, validation
	)

	// GenerationDuration measures one generation operation end to end
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_duration_seconds",
			Help:    "Time taken by one structured generation operation",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"operation"},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordOperationDuration records the duration of a named database operation
func RecordOperationDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
