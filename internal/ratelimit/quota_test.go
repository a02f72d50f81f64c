package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives a Quota without sleeping.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestQuota(limit int, window time.Duration) (*Quota, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)}
	q := NewQuota(limit, window)
	q.start, q.now = clock.t, clock.now
	return q, clock
}

func TestQuotaUnlimited(t *testing.T) {
	t.Parallel()

	q := NewQuota(0, time.Hour)
	require.Nil(t, q)
	assert.True(t, q.Allow())
	assert.True(t, q.Check())
	assert.Equal(t, -1, q.Remaining())
	assert.Zero(t, q.Used())
	assert.Zero(t, q.Wait())
	q.Consume()
}

func TestQuotaAllow(t *testing.T) {
	t.Parallel()

	q, _ := newTestQuota(5, time.Minute)
	for i := range 5 {
		assert.True(t, q.Allow(), "request %d", i+1)
	}
	assert.False(t, q.Allow())
	assert.Zero(t, q.Remaining())
	assert.InDelta(t, 5, q.Used(), 1e-9)
}

func TestQuotaCheckDoesNotCount(t *testing.T) {
	t.Parallel()

	q, _ := newTestQuota(1, time.Minute)
	assert.True(t, q.Check())
	assert.True(t, q.Check())
	q.Consume()
	assert.False(t, q.Check())
}

func TestQuotaRollingWeight(t *testing.T) {
	t.Parallel()

	q, clock := newTestQuota(10, time.Hour)
	for range 10 {
		q.Allow()
	}

	clock.advance(90 * time.Minute)
	// half of the previous window still overlaps
	assert.InDelta(t, 5, q.Used(), 1e-9)
	assert.Equal(t, 5, q.Remaining())
	assert.True(t, q.Allow())
}

func TestQuotaLongGapForgets(t *testing.T) {
	t.Parallel()

	q, clock := newTestQuota(10, time.Hour)
	for range 10 {
		q.Allow()
	}
	clock.advance(3 * time.Hour)
	assert.Zero(t, q.Used())
	assert.Equal(t, 10, q.Remaining())
}

func TestQuotaWait(t *testing.T) {
	t.Parallel()

	t.Run("room left", func(t *testing.T) {
		t.Parallel()
		q, _ := newTestQuota(2, time.Hour)
		q.Allow()
		assert.Zero(t, q.Wait())
	})

	t.Run("exhausted in current window", func(t *testing.T) {
		t.Parallel()
		q, clock := newTestQuota(2, time.Hour)
		q.Allow()
		q.Allow()
		clock.advance(10 * time.Minute)
		// the window ends in 50m and the carried-over count then needs no decay
		assert.Equal(t, 50*time.Minute, q.Wait())
	})

	t.Run("carried over", func(t *testing.T) {
		t.Parallel()
		q, clock := newTestQuota(4, time.Hour)
		for range 4 {
			q.Allow()
		}
		clock.advance(time.Hour)
		q.Allow()
		// used = 1 + 4*w, fits once w < 3/4, i.e. 15m into the window
		assert.Equal(t, 15*time.Minute, q.Wait())

		clock.advance(15*time.Minute + time.Second)
		assert.Zero(t, q.Wait())
		assert.True(t, q.Check())
	})
}
