package dbretry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreDefaults(t *testing.T) {
	t.Helper()

	prevElapsed, prevInitial, prevMax, prevRetries :=
		maxElapsedTime, initialInterval, maxInterval, maxRetries
	t.Cleanup(func() {
		maxElapsedTime = prevElapsed
		initialInterval = prevInitial
		maxInterval = prevMax
		maxRetries = prevRetries
	})
}

func TestConfigureBoundsAttempts(t *testing.T) {
	restoreDefaults(t)
	Configure(2, time.Millisecond, 2*time.Millisecond)

	attempts := 0
	err := NoResult(context.Background(), func(context.Context) error {
		attempts++

		return errors.New("dial tcp: connection refused")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after retries")
	// Initial attempt plus the configured retry budget.
	assert.Equal(t, 3, attempts)
}

func TestConfigureIgnoresZeroValues(t *testing.T) {
	restoreDefaults(t)
	Configure(0, 0, 0)

	assert.Equal(t, uint64(5), maxRetries)
	assert.Equal(t, 500*time.Millisecond, initialInterval)
	assert.Equal(t, 5*time.Second, maxInterval)
}

func TestOperationStopsOnPermanentError(t *testing.T) {
	restoreDefaults(t)
	Configure(4, time.Millisecond, 2*time.Millisecond)

	attempts := 0
	_, err := Operation(context.Background(), func(context.Context) (int, error) {
		attempts++

		return 0, errors.New("syntax error at or near SELECT")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestOperationReturnsResult(t *testing.T) {
	restoreDefaults(t)
	Configure(2, time.Millisecond, 2*time.Millisecond)

	attempts := 0
	result, err := Operation(context.Background(), func(context.Context) (string, error) {
		attempts++
		if attempts < 2 {
			return "", errors.New("connection reset by peer")
		}

		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, attempts)
}
