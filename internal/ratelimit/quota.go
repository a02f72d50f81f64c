package ratelimit

import "time"

// Quota caps requests over a rolling window. It keeps counts for the
// current and previous fixed windows and weights the previous one by how
// much of it still overlaps the rolling window:
//
//	used = curr + prev * (window - elapsed) / window
//
// Quota is not synchronised; KeyedLimiter holds the entry lock around it.
// A nil Quota is unlimited.
type Quota struct {
	limit  int
	window time.Duration
	start  time.Time
	curr   int
	prev   int
	now    func() time.Time
}

// NewQuota returns nil (unlimited) when limit <= 0.
func NewQuota(limit int, window time.Duration) *Quota {
	if limit <= 0 {
		return nil
	}
	return &Quota{limit: limit, window: window, start: time.Now(), now: time.Now}
}

// advance rotates the fixed windows up to now and returns it.
func (q *Quota) advance() time.Time {
	now := q.now()
	if elapsed := now.Sub(q.start); elapsed >= q.window {
		n := elapsed / q.window
		q.prev = 0
		if n == 1 {
			q.prev = q.curr
		}
		q.curr = 0
		q.start = q.start.Add(n * q.window)
	}
	return now
}

func (q *Quota) weight(now time.Time) float64 {
	left := q.window - now.Sub(q.start)
	return max(0, min(1, float64(left)/float64(q.window)))
}

func (q *Quota) used(now time.Time) float64 {
	return float64(q.curr) + float64(q.prev)*q.weight(now)
}

// Check reports whether one more request fits, without counting it.
func (q *Quota) Check() bool {
	if q == nil {
		return true
	}
	return q.used(q.advance()) < float64(q.limit)
}

// Consume counts one request.
func (q *Quota) Consume() {
	if q == nil {
		return
	}
	q.advance()
	q.curr++
}

// Allow counts the request if it fits.
func (q *Quota) Allow() bool {
	if !q.Check() {
		return false
	}
	q.Consume()
	return true
}

// Used returns the weighted request count in the rolling window.
func (q *Quota) Used() float64 {
	if q == nil {
		return 0
	}
	return q.used(q.advance())
}

// Remaining returns the whole requests left, or -1 when unlimited.
func (q *Quota) Remaining() int {
	if q == nil {
		return -1
	}
	return int(max(0, float64(q.limit)-q.used(q.advance())))
}

// Wait returns how long until Check succeeds again.
func (q *Quota) Wait() time.Duration {
	if q == nil {
		return 0
	}
	now := q.advance()
	if q.used(now) < float64(q.limit) {
		return 0
	}

	// Both counts are fixed until the window ends, so only prev decays.
	start, prev, room := q.start, float64(q.prev), float64(q.limit-q.curr)
	if room <= 0 {
		start, prev, room = start.Add(q.window), float64(q.curr), float64(q.limit)
	}
	// prev * (window - e) / window < room  <=>  e > window * (1 - room/prev)
	at := start.Add(time.Duration(float64(q.window) * (1 - room/prev)))
	return max(at.Sub(now), 0)
}
