package genai

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		attempt int
		initial time.Duration
		max     time.Duration
		upper   time.Duration
	}{
		{"first attempt", 0, time.Second, 10 * time.Second, 0},
		{"negative attempt", -1, time.Second, 10 * time.Second, 0},
		{"second attempt", 1, time.Second, 10 * time.Second, time.Second},
		{"third attempt", 2, time.Second, 10 * time.Second, 2 * time.Second},
		{"capped", 10, time.Second, 5 * time.Second, 5 * time.Second},
		{"zero initial", 1, 0, 10 * time.Second, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			for range 10 {
				got := CalculateBackoff(tt.attempt, tt.initial, tt.max)
				assert.GreaterOrEqual(t, got, time.Duration(0))
				assert.LessOrEqual(t, got, tt.upper)
			}
		})
	}
}

func TestSleep(t *testing.T) {
	t.Parallel()

	start := time.Now()
	require.NoError(t, Sleep(t.Context(), 30*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	assert.NoError(t, Sleep(t.Context(), 0))
	assert.NoError(t, Sleep(t.Context(), -time.Second))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("success first time", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := WithRetry(t.Context(), fastRetry(3), nil, func(context.Context) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("transient then success", func(t *testing.T) {
		t.Parallel()
		calls, retries := 0, 0
		err := WithRetry(t.Context(), fastRetry(3),
			func(int, error, time.Duration) { retries++ },
			func(context.Context) error {
				calls++
				if calls < 3 {
					return errors.New("service unavailable")
				}
				return nil
			})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, 2, retries)
	})

	t.Run("permanent error stops", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := WithRetry(t.Context(), fastRetry(3), nil, func(context.Context) error {
			calls++
			return errors.New("invalid api key")
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("fallback error is not retried", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := WithRetry(t.Context(), fastRetry(3), nil, func(context.Context) error {
			calls++
			return errors.New("quota exceeded")
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := WithRetry(t.Context(), fastRetry(2), nil, func(context.Context) error {
			calls++
			return errors.New("overloaded")
		})
		require.EqualError(t, err, "overloaded")
		assert.Equal(t, 2, calls)
	})

	t.Run("zero attempts still runs once", func(t *testing.T) {
		t.Parallel()
		calls := 0
		_ = WithRetry(t.Context(), RetryConfig{}, nil, func(context.Context) error {
			calls++
			return nil
		})
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		err := WithRetry(ctx, fastRetry(3), nil, func(context.Context) error {
			t.Fatal("fn must not run")
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("retry-after honoured within cap", func(t *testing.T) {
		t.Parallel()
		var delays []time.Duration
		calls := 0
		cfg := RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: 20 * time.Millisecond}
		err := WithRetry(t.Context(), cfg,
			func(_ int, _ error, d time.Duration) { delays = append(delays, d) },
			func(context.Context) error {
				calls++
				if calls == 1 {
					return &openai.Error{
						StatusCode: http.StatusTooManyRequests,
						Response:   &http.Response{Header: http.Header{"Retry-After": {"30"}}},
					}
				}
				return nil
			})
		require.NoError(t, err)
		assert.Equal(t, []time.Duration{20 * time.Millisecond}, delays)
	})

	t.Run("insufficient budget", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithTimeout(t.Context(), 5*time.Millisecond)
		defer cancel()
		cfg := RetryConfig{MaxAttempts: 3, InitialDelay: time.Hour, MaxDelay: time.Hour}
		calls := 0
		err := WithRetry(ctx, cfg, nil, func(context.Context) error {
			calls++
			return &LLMError{Err: errors.New("busy"), StatusCode: http.StatusServiceUnavailable}
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestBudget(t *testing.T) {
	t.Parallel()

	assert.Zero(t, RemainingBudget(t.Context()))
	assert.True(t, HasSufficientBudget(context.Background(), time.Hour))

	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()
	assert.Positive(t, RemainingBudget(ctx))
	assert.True(t, HasSufficientBudget(ctx, 10*time.Millisecond))
	assert.False(t, HasSufficientBudget(ctx, time.Hour))
}
