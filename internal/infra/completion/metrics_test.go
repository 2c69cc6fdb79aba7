package completion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrometheusCompletionMetrics(t *testing.T) {
	metrics := NewPrometheusCompletionMetrics()

	require.NotNil(t, metrics)
	assert.NotNil(t, metrics.lengthHistogram)
	assert.NotNil(t, metrics.failureCounter)
	assert.NotNil(t, metrics.durationHistogram)
}

func TestNewPrometheusCompletionMetrics_Singleton(t *testing.T) {
	metrics1 := NewPrometheusCompletionMetrics()
	metrics2 := NewPrometheusCompletionMetrics()

	assert.Equal(t, metrics1, metrics2)
}

func TestPrometheusCompletionMetrics_Record(t *testing.T) {
	metrics := NewPrometheusCompletionMetrics()

	// Recording must not panic for boundary values
	assert.NotPanics(t, func() {
		metrics.RecordResponseLength(0)
		metrics.RecordResponseLength(16000)
		metrics.RecordFailure()
		metrics.RecordDuration(0)
		metrics.RecordDuration(90 * time.Second)
	})
}
