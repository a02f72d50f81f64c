// Package warmup gates traffic on classifier initialisation.
//
// The server starts the classifier load in the background and hands it to
// Watch, which flips a ReadinessState once the load settles.
package warmup

import (
	"context"
	"time"

	"github.com/garyellow/agri-advisor-go/internal/logger"
)

// Gate is the part of intent.Classifier that Watch observes.
type Gate interface {
	Done() <-chan struct{}
	Err() error
	StrategyName() string
}

// Watch blocks until gate finishes loading or ctx ends, then records the
// outcome on state. Run it in its own goroutine.
func Watch(ctx context.Context, gate Gate, state *ReadinessState, log *logger.Logger) {
	if log == nil {
		log = logger.Discard()
	}
	log = log.WithModule("warmup").WithField("strategy", gate.StrategyName())
	start := time.Now()

	select {
	case <-ctx.Done():
		return
	case <-gate.Done():
	}

	if err := gate.Err(); err != nil {
		state.MarkDegraded(err.Error())
		log.WithError(err).WarnContext(ctx, "Serving in degraded mode",
			"duration_ms", time.Since(start).Milliseconds())
		return
	}
	state.MarkReady()
	log.InfoContext(ctx, "Service ready", "duration_ms", time.Since(start).Milliseconds())
}
