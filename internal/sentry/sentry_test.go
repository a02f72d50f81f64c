package sentry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	t.Parallel()

	cfg := Config{Token: "tok", Host: "errors.betterstack.com"}
	assert.Equal(t, "https://tok@errors.betterstack.com/1", cfg.DSN())
}

func TestInitializeDisabled(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Initialize(Config{}))
	assert.Error(t, Initialize(Config{Token: "tok"}), "host is required with a token")
}

// Sentry keeps global state, so these run serially.
func TestInitializeAndCapture(t *testing.T) {
	require.NoError(t, Initialize(Config{
		Token:       "test-token",
		Host:        "errors.betterstack.com",
		Environment: "test",
	}))
	assert.True(t, IsEnabled())

	assert.NotPanics(t, func() {
		CaptureException(context.Background(), errors.New("classify failed"), map[string]string{"reason": "runtime"})
		CaptureException(context.Background(), nil, nil)
	})
	Flush(100 * time.Millisecond)
}
