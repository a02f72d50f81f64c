package warmup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadinessStateInitial(t *testing.T) {
	t.Parallel()

	state := NewReadinessState(10 * time.Minute)
	assert.False(t, state.IsReady())
	assert.False(t, state.InitCompleted())

	status := state.Status()
	assert.False(t, status.Ready)
	assert.False(t, status.Degraded)
	assert.Equal(t, "classifier loading", status.Reason)
	assert.Equal(t, 600, status.TimeoutSeconds)
	assert.Equal(t, 10*time.Second, state.RetryAfter())
}

func TestReadinessStateMarkReady(t *testing.T) {
	t.Parallel()

	state := NewReadinessState(10 * time.Minute)
	state.MarkReady()
	state.MarkReady()

	assert.True(t, state.IsReady())
	assert.True(t, state.InitCompleted())
	status := state.Status()
	assert.True(t, status.Ready)
	assert.Empty(t, status.Reason)
}

func TestReadinessStateDegraded(t *testing.T) {
	t.Parallel()

	state := NewReadinessState(10 * time.Minute)
	state.MarkDegraded("model not loaded: open model.json: no such file")

	assert.True(t, state.IsReady())
	reason, ok := state.Degraded()
	require.True(t, ok)
	assert.Contains(t, reason, "model.json")

	status := state.Status()
	assert.True(t, status.Ready)
	assert.True(t, status.Degraded)
	assert.Equal(t, reason, status.Reason)
}

func TestReadinessStateTimeout(t *testing.T) {
	t.Parallel()

	state := NewReadinessState(50 * time.Millisecond)
	assert.False(t, state.IsReady())

	time.Sleep(60 * time.Millisecond)
	assert.True(t, state.IsReady())
	assert.False(t, state.InitCompleted())
	assert.Equal(t, "timeout reached (classifier may still be loading)", state.Status().Reason)
	assert.Equal(t, time.Second, state.RetryAfter())
}

func TestReadinessStateConcurrent(t *testing.T) {
	t.Parallel()

	state := NewReadinessState(10 * time.Minute)
	var wg sync.WaitGroup
	for i := range 100 {
		wg.Go(func() {
			for range 100 {
				if i%2 == 0 {
					state.MarkReady()
				} else {
					_ = state.Status()
					_ = state.IsReady()
				}
			}
		})
	}
	wg.Wait()
	assert.True(t, state.IsReady())
}

type fakeGate struct {
	done chan struct{}
	err  error
}

func (g *fakeGate) Done() <-chan struct{} { return g.done }
func (g *fakeGate) Err() error            { return g.err }
func (g *fakeGate) StrategyName() string  { return "fake" }

func TestWatch(t *testing.T) {
	t.Parallel()

	t.Run("ready", func(t *testing.T) {
		t.Parallel()
		gate := &fakeGate{done: make(chan struct{})}
		state := NewReadinessState(time.Hour)
		finished := make(chan struct{})
		go func() {
			Watch(t.Context(), gate, state, nil)
			close(finished)
		}()

		assert.False(t, state.IsReady())
		close(gate.done)
		<-finished
		assert.True(t, state.IsReady())
		_, degraded := state.Degraded()
		assert.False(t, degraded)
	})

	t.Run("degraded", func(t *testing.T) {
		t.Parallel()
		gate := &fakeGate{done: make(chan struct{}), err: errors.New("load failed")}
		close(gate.done)
		state := NewReadinessState(time.Hour)
		Watch(t.Context(), gate, state, nil)

		reason, degraded := state.Degraded()
		assert.True(t, degraded)
		assert.Equal(t, "load failed", reason)
	})

	t.Run("context cancelled", func(t *testing.T) {
		t.Parallel()
		gate := &fakeGate{done: make(chan struct{})}
		state := NewReadinessState(time.Hour)
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		Watch(ctx, gate, state, nil)
		assert.False(t, state.InitCompleted())
	})
}
