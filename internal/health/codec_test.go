package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodecChecker(t *testing.T) {
	checker := NewCodecChecker()
	assert.Equal(t, "codec", checker.Name())
	assert.NoError(t, checker.Check(context.Background()))

	details := checker.Details()
	assert.Greater(t, details["frame_rates"], 0)
	assert.Equal(t, len(codecVectors), details["vectors"])
}

func TestCodecChecker_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, NewCodecChecker().Check(ctx), context.Canceled)
}
