package completion_test

import (
	"context"
	"strings"
	"testing"

	"studyforge/internal/infra/completion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoOp_Complete(t *testing.T) {
	client := completion.NewNoOp()

	t.Run("short prompt echoed unchanged", func(t *testing.T) {
		output, err := client.Complete(context.Background(), "system", "short prompt")

		require.NoError(t, err)
		assert.Equal(t, "short prompt", output)
	})

	t.Run("long prompt truncated", func(t *testing.T) {
		long := strings.Repeat("a", 1000)

		output, err := client.Complete(context.Background(), "system", long)

		require.NoError(t, err)
		assert.Equal(t, 503, len(output))
		assert.True(t, strings.HasSuffix(output, "..."))
	})
}

func TestNoOp_Ping(t *testing.T) {
	client := completion.NewNoOp()

	assert.NoError(t, client.Ping(context.Background()))
}
