package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry_FirstTry(t *testing.T) {
	attempts := 0
	err := Backoff{Attempts: 3, Delay: time.Millisecond}.Retry(context.Background(), func() error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetry_EventualSuccess(t *testing.T) {
	attempts := 0
	err := Backoff{Attempts: 5, Delay: time.Millisecond}.Retry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	attempts := 0
	expected := errors.New("persistent error")
	err := Backoff{Attempts: 3, Delay: time.Millisecond}.Retry(context.Background(), func() error {
		attempts++
		return expected
	})
	assert.Equal(t, expected, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Backoff{Attempts: 10, Delay: 10 * time.Millisecond}.Retry(ctx, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts)
}

func TestRetry_DelayDoubles(t *testing.T) {
	var stamps []time.Time
	err := Backoff{Attempts: 4, Delay: 10 * time.Millisecond}.Retry(context.Background(), func() error {
		stamps = append(stamps, time.Now())
		if len(stamps) < 4 {
			return errors.New("error")
		}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, stamps, 4)

	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), 10*time.Millisecond)
	assert.GreaterOrEqual(t, stamps[2].Sub(stamps[1]), 20*time.Millisecond)
	assert.GreaterOrEqual(t, stamps[3].Sub(stamps[2]), 40*time.Millisecond)
}

func TestRetry_InvalidAttempts(t *testing.T) {
	for _, n := range []int{0, -1} {
		called := false
		err := Backoff{Attempts: n}.Retry(context.Background(), func() error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, ErrInvalidAttempts)
		assert.False(t, called)
	}
}
