package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	got, err := Do(context.Background(), 5*time.Second, 3, func(_ context.Context) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, attempts)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), 5*time.Second, 2, func(_ context.Context) (string, error) {
		attempts++
		return "", errors.New("still failing")
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	attempts := 0
	notFound := errors.New("no rows")
	_, err := Do(context.Background(), 5*time.Second, 5, func(_ context.Context) (int, error) {
		attempts++
		return 0, Permanent(notFound)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, notFound)
	assert.Equal(t, 1, attempts)
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Do(ctx, time.Second, 3, func(_ context.Context) (int, error) {
		return 0, errors.New("transient")
	})
	require.Error(t, err)
}
