package intent

import (
	"context"
	"errors"
	"fmt"

	domerrors "github.com/garyellow/agri-advisor-go/internal/errors"
)

// Strategy scores text against candidate labels. Implementations must be
// safe for concurrent use once loaded.
type Strategy interface {
	Name() string
	Classify(ctx context.Context, text string, labels []Label) ([]Score, error)
}

// Loader is implemented by strategies that need one-time initialisation,
// such as reading model artifacts.
type Loader interface {
	Load(ctx context.Context) error
}

// Reason classifies why a prediction degraded.
type Reason string

const (
	ReasonLoad         Reason = "load"
	ReasonRuntime      Reason = "runtime"
	ReasonTimeout      Reason = "timeout"
	ReasonMalformed    Reason = "malformed"
	ReasonInvalidInput Reason = "invalid_input"
)

// Failure is the typed error returned by Classifier.Classify.
type Failure struct {
	Reason   Reason
	Strategy string
	Err      error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("classify [%s] %s: %v", f.Strategy, f.Reason, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func newFailure(strategy string, err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Reason: reasonOf(err), Strategy: strategy, Err: err}
}

func reasonOf(err error) Reason {
	switch {
	case errors.Is(err, domerrors.ErrInvalidInput):
		return ReasonInvalidInput
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), errors.Is(err, domerrors.ErrTimeout):
		return ReasonTimeout
	case errors.Is(err, domerrors.ErrModelNotLoaded):
		return ReasonLoad
	case errors.Is(err, domerrors.ErrMalformedOutput), errors.Is(err, domerrors.ErrUnknownIntent):
		return ReasonMalformed
	default:
		return ReasonRuntime
	}
}
