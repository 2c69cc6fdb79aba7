package worker

import (
	"studyforge/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics provides Prometheus metrics for the maintenance worker.
// It embeds the standard ConfigMetrics for configuration monitoring and adds
// job execution metrics labelled by job name ("cleanup", "refresh").
//
// Embedded metrics (from ConfigMetrics):
//   - worker_config_load_timestamp: Unix timestamp of last configuration load
//   - worker_config_validation_errors_total: Total validation errors by field
//   - worker_config_fallbacks_total: Total fallback operations by field
//   - worker_config_fallback_active: 1 if any fallback active, 0 otherwise
//
// Worker-specific metrics:
//   - worker_job_runs_total: Total job runs by job and status (success/failure)
//   - worker_job_duration_seconds: Duration histogram by job
//   - worker_job_last_success_timestamp: Unix timestamp of last successful run by job
type WorkerMetrics struct {
	*config.ConfigMetrics

	// JobRunsTotal counts job runs.
	// Labels: job (cleanup, refresh), status (success, failure)
	JobRunsTotal *prometheus.CounterVec

	// JobDurationSeconds measures the duration of job execution.
	// Labels: job
	// Buckets: 10ms to 5m, sized for filesystem sweeps and a COUNT query
	JobDurationSeconds *prometheus.HistogramVec

	// JobLastSuccessTimestamp records the Unix timestamp of the last
	// successful run per job.
	JobLastSuccessTimestamp *prometheus.GaugeVec
}

// NewWorkerMetrics creates a WorkerMetrics instance with all metrics
// initialized and registered on the default registry.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		JobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Total number of maintenance job runs by job and status",
		}, []string{"job", "status"}),

		JobDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of maintenance job execution in seconds",
			Buckets: []float64{0.01, 0.1, 1, 5, 30, 60, 300},
		}, []string{"job"}),

		JobLastSuccessTimestamp: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful run per job",
		}, []string{"job"}),
	}
}

// RecordJobRun increments the run counter for the given job and status.
// Status should be either "success" or "failure".
func (m *WorkerMetrics) RecordJobRun(job, status string) {
	m.JobRunsTotal.WithLabelValues(job, status).Inc()
}

// RecordJobDuration observes the duration of a job execution in seconds.
func (m *WorkerMetrics) RecordJobDuration(job string, seconds float64) {
	m.JobDurationSeconds.WithLabelValues(job).Observe(seconds)
}

// RecordLastSuccess records the current time as the job's last successful
// completion.
func (m *WorkerMetrics) RecordLastSuccess(job string) {
	m.JobLastSuccessTimestamp.WithLabelValues(job).SetToCurrentTime()
}
