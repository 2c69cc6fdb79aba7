// Package metrics declares the Prometheus collectors for the material
// pipeline: ingestion counts and durations, extraction failures by format,
// structured generation operations, and database pool health.
//
// Collectors register on the default registry at init via promauto and are
// served by the worker's /metrics endpoint. Record* helpers exist where a
// call site would otherwise repeat label plumbing:
//
//	start := time.Now()
//	// ... ingest the material ...
//	metrics.RecordMaterialProcessed(err == nil)
//	metrics.RecordProcessingDuration(time.Since(start))
package metrics
