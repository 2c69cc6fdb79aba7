package metrics

import (
	"time"
)

// RecordMaterialProcessed records the outcome of one material ingestion.
// Status is recorded as "success" or "failure".
func RecordMaterialProcessed(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	MaterialsProcessedTotal.WithLabelValues(status).Inc()
}

// RecordProcessingDuration records the end-to-end time of one ingestion.
func RecordProcessingDuration(duration time.Duration) {
	MaterialProcessingDuration.Observe(duration.Seconds())
}

// RecordExtractionError records a content extraction failure for a format tag
// ("pdf", "docx", "url", ...).
func RecordExtractionError(format string) {
	ExtractionErrorsTotal.WithLabelValues(format).Inc()
}

// RecordExtractedContent records the size of successfully extracted text.
func RecordExtractedContent(sizeChars int) {
	ExtractedContentSize.Observe(float64(sizeChars))
}

// RecordGeneration records one structured generation operation.
// Operation is one of "objectives", "templates", "question", "validation".
func RecordGeneration(operation string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	GenerationRequestsTotal.WithLabelValues(operation, status).Inc()
	GenerationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateMaterialsTotal updates the total count of materials in the database.
// This gauge should be updated periodically to reflect the current state.
func UpdateMaterialsTotal(count int) {
	MaterialsTotal.Set(float64(count))
}
