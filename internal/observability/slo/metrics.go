package slo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SLO targets define the service level objectives for the ingestion pipeline.
// These targets are used to measure and monitor processing reliability.
const (
	// ProcessingSuccessSLO defines the target ratio of materials reaching
	// completed status (99% = at most 1 in 100 ingestions may fail)
	ProcessingSuccessSLO = 0.99

	// ProcessingLatencyP95SLO defines the target for 95th percentile
	// end-to-end ingestion latency in seconds (PDF decode plus extraction)
	ProcessingLatencyP95SLO = 30.0

	// GenerationLatencyP95SLO defines the target for 95th percentile
	// structured generation latency in seconds (one completion round trip)
	GenerationLatencyP95SLO = 60.0
)

// SLO tracking metrics
// These gauges are updated periodically (e.g., every minute) based on recent
// measurements to track whether the service is meeting its SLO targets.
var (
	// SLOProcessingSuccess tracks the current processing success ratio (0-1)
	// calculated as: completed_materials / processed_materials
	SLOProcessingSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_processing_success_ratio",
			Help: "Current material processing success ratio (0-1), target: 0.99",
		},
	)

	// SLOProcessingLatencyP95 tracks the current p95 ingestion latency
	// calculated from material_processing_duration_seconds histogram
	SLOProcessingLatencyP95 = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_processing_latency_p95_seconds",
			Help: "Current p95 ingestion latency in seconds, target: 30",
		},
	)

	// SLOGenerationLatencyP95 tracks the current p95 generation latency
	// calculated from generation_duration_seconds histogram
	SLOGenerationLatencyP95 = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_generation_latency_p95_seconds",
			Help: "Current p95 generation latency in seconds, target: 60",
		},
	)
)

// UpdateProcessingSuccess updates the processing success SLO metric.
// Call this periodically (e.g., every minute) with the calculated ratio.
//
// Example calculation:
//
//	processed := getProcessedCount()
//	completed := getCompletedCount()
//	slo.UpdateProcessingSuccess(float64(completed) / float64(processed))
func UpdateProcessingSuccess(ratio float64) {
	SLOProcessingSuccess.Set(ratio)
}

// UpdateProcessingLatencyP95 updates the p95 ingestion latency SLO metric.
//
// Example using Prometheus query:
//
//	histogram_quantile(0.95, rate(material_processing_duration_seconds_bucket[5m]))
func UpdateProcessingLatencyP95(seconds float64) {
	SLOProcessingLatencyP95.Set(seconds)
}

// UpdateGenerationLatencyP95 updates the p95 generation latency SLO metric.
//
// Example using Prometheus query:
//
//	histogram_quantile(0.95, rate(generation_duration_seconds_bucket[5m]))
func UpdateGenerationLatencyP95(seconds float64) {
	SLOGenerationLatencyP95.Set(seconds)
}
