package warmup

import (
	"sync/atomic"
	"time"
)

// ReadinessState tracks whether the classifier has finished loading.
// Traffic is admitted once MarkReady is called or the timeout elapses.
// startTime and timeout are immutable; the flags are atomic.
type ReadinessState struct {
	ready     atomic.Bool
	degraded  atomic.Pointer[string]
	startTime time.Time
	timeout   time.Duration
}

// ReadinessStatus is the /readyz response body.
type ReadinessStatus struct {
	Ready          bool   `json:"ready"`
	Degraded       bool   `json:"degraded"`
	Reason         string `json:"reason,omitempty"`
	ElapsedSeconds int    `json:"elapsed_seconds,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// NewReadinessState starts the clock for timeout.
func NewReadinessState(timeout time.Duration) *ReadinessState {
	return &ReadinessState{
		startTime: time.Now(),
		timeout:   timeout,
	}
}

// IsReady reports whether init finished or the timeout elapsed.
func (s *ReadinessState) IsReady() bool {
	return s.ready.Load() || time.Since(s.startTime) >= s.timeout
}

// MarkReady records a successful init.
func (s *ReadinessState) MarkReady() {
	s.ready.Store(true)
}

// MarkDegraded records a failed init. The service still becomes ready:
// every prediction degrades to unknown and advice falls back.
func (s *ReadinessState) MarkDegraded(reason string) {
	s.degraded.Store(&reason)
	s.ready.Store(true)
}

// Degraded returns the failure reason, if init failed.
func (s *ReadinessState) Degraded() (string, bool) {
	if r := s.degraded.Load(); r != nil {
		return *r, true
	}
	return "", false
}

// InitCompleted reports whether MarkReady or MarkDegraded was called.
func (s *ReadinessState) InitCompleted() bool {
	return s.ready.Load()
}

// RetryAfter suggests how long a probe should wait while not ready.
func (s *ReadinessState) RetryAfter() time.Duration {
	left := s.timeout - time.Since(s.startTime)
	return max(time.Second, min(left, 10*time.Second))
}

// Status snapshots the state for the readiness endpoint.
func (s *ReadinessState) Status() ReadinessStatus {
	status := ReadinessStatus{
		Ready:          s.IsReady(),
		ElapsedSeconds: int(time.Since(s.startTime).Seconds()),
		TimeoutSeconds: int(s.timeout.Seconds()),
	}

	switch reason, degraded := s.Degraded(); {
	case degraded:
		status.Degraded = true
		status.Reason = reason
	case !status.Ready:
		status.Reason = "classifier loading"
	case !s.ready.Load():
		status.Reason = "timeout reached (classifier may still be loading)"
	}
	return status
}
