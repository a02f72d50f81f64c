package knowledge

import (
	"errors"
	"fmt"
	"strings"

	domerrors "github.com/garyellow/agri-advisor-go/internal/errors"
	"github.com/garyellow/agri-advisor-go/internal/intent"
)

var (
	errUnknownIntent = domerrors.ErrUnknownIntent
	errUnknownCrop   = domerrors.ErrUnknownCrop
)

// Validate checks that t answers every intent: crop-specific intents have
// per-crop advice over vocabulary crops and a clarifying question, the
// other advisory intents have a default text, and the fixed replies are set.
func Validate(t Table) error {
	var errs []error
	for _, l := range intent.All() {
		if l.Control() {
			if _, ok := t.entries[l]; ok {
				errs = append(errs, fmt.Errorf("%s: control intents take no entry", l))
			}
			continue
		}

		e := t.entries[l]
		if l.CropSpecific() {
			if !e.IsPerCrop() || len(e.Crops()) == 0 {
				errs = append(errs, fmt.Errorf("%s: needs per-crop advice", l))
			}
			for _, c := range e.Crops() {
				if !c.Valid() {
					errs = append(errs, fmt.Errorf("%s: %w: %q", l, errUnknownCrop, c))
				}
				if text, _ := e.Lookup(c); strings.TrimSpace(text) == "" {
					errs = append(errs, fmt.Errorf("%s/%s: empty advice", l, c))
				}
			}
			if _, ok := t.Clarifying(l); !ok {
				errs = append(errs, fmt.Errorf("%s: missing clarifying question", l))
			}
			continue
		}

		text, ok := e.Text()
		if !ok || strings.TrimSpace(text) == "" {
			errs = append(errs, fmt.Errorf("%s: needs a default text", l))
		}
	}

	for l := range t.entries {
		if !l.Valid() {
			errs = append(errs, fmt.Errorf("%w: %q", errUnknownIntent, l))
		}
	}
	fixed := []struct{ name, text string }{
		{"greeting", t.greeting},
		{"thanks", t.thanks},
		{"fallback", t.fallback},
	}
	for _, f := range fixed {
		if strings.TrimSpace(f.text) == "" {
			errs = append(errs, fmt.Errorf("%s text is empty", f.name))
		}
	}
	return errors.Join(errs...)
}
