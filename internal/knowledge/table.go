package knowledge

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/garyellow/agri-advisor-go/internal/crop"
	"github.com/garyellow/agri-advisor-go/internal/intent"
)

// Table is the immutable knowledge base. Build one with Builtin and,
// optionally, WithOverrides; it is never modified afterwards.
type Table struct {
	entries  map[intent.Label]Entry
	clarify  map[intent.Label]string
	greeting string
	thanks   string
	fallback string
}

// Builtin returns the curated table shipped with the service.
func Builtin() Table {
	return Table{
		entries:  builtinEntries(),
		clarify:  maps.Clone(builtinClarify),
		greeting: GreetingText,
		thanks:   ThanksText,
		fallback: FallbackText,
	}
}

// Entry returns the entry for l, or the zero Entry.
func (t Table) Entry(l intent.Label) Entry { return t.entries[l] }

// Clarifying returns the question asked when a crop-specific intent
// arrives without a usable crop.
func (t Table) Clarifying(l intent.Label) (string, bool) {
	s, ok := t.clarify[l]
	return s, ok && s != ""
}

func (t Table) Greeting() string { return t.greeting }
func (t Table) Thanks() string   { return t.thanks }
func (t Table) Fallback() string { return t.fallback }

// Kind says which part of the table a Row targets.
type Kind string

const (
	// KindAdvice rows set a default text (empty Crop) or one crop's advice.
	// On greeting, thanks and unknown they replace the fixed replies.
	KindAdvice Kind = "advice"
	// KindClarify rows set a crop-specific intent's clarifying question.
	KindClarify Kind = "clarify"
)

// Row is one flattened table cell, as stored in the knowledge database.
type Row struct {
	Intent intent.Label
	Crop   crop.Name
	Kind   Kind
	Text   string
}

// WithOverrides returns a copy of t with rows applied in order. Rows are
// checked individually; use Validate for whole-table consistency.
func (t Table) WithOverrides(rows []Row) (Table, error) {
	out := Table{
		entries:  maps.Clone(t.entries),
		clarify:  maps.Clone(t.clarify),
		greeting: t.greeting,
		thanks:   t.thanks,
		fallback: t.fallback,
	}
	if out.entries == nil {
		out.entries = make(map[intent.Label]Entry)
	}
	if out.clarify == nil {
		out.clarify = make(map[intent.Label]string)
	}

	var errs []error
	for i, r := range rows {
		if err := out.apply(r); err != nil {
			errs = append(errs, fmt.Errorf("row %d (%s/%s): %w", i, r.Intent, r.Crop, err))
		}
	}
	if len(errs) > 0 {
		return t, errors.Join(errs...)
	}
	return out, nil
}

func (t *Table) apply(r Row) error {
	text := strings.TrimSpace(r.Text)
	if text == "" {
		return errors.New("empty text")
	}
	if !r.Intent.Valid() {
		return fmt.Errorf("%w: %q", errUnknownIntent, r.Intent)
	}
	if r.Crop != "" && !r.Crop.Valid() {
		return fmt.Errorf("%w: %q", errUnknownCrop, r.Crop)
	}

	switch r.Kind {
	case KindClarify:
		if !r.Intent.CropSpecific() {
			return errors.New("clarifying questions apply only to crop-specific intents")
		}
		t.clarify[r.Intent] = text
	case KindAdvice:
		switch r.Intent {
		case intent.Greeting:
			t.greeting = text
		case intent.Thanks:
			t.thanks = text
		case intent.Unknown:
			t.fallback = text
		default:
			if r.Crop == "" {
				if r.Intent.CropSpecific() {
					return errors.New("crop-specific intents need a crop")
				}
				t.entries[r.Intent] = Default(text)
				return nil
			}
			if !r.Intent.CropSpecific() {
				return errors.New("crop-independent intents take no crop")
			}
			t.entries[r.Intent] = t.entries[r.Intent].with(r.Crop, text)
		}
	default:
		return fmt.Errorf("unknown kind %q", r.Kind)
	}
	return nil
}

// Rows flattens t in taxonomy order, per-crop cells in entry order.
// Applying the rows to an empty Table reproduces t.
func (t Table) Rows() []Row {
	var rows []Row
	for _, l := range intent.All() {
		switch l {
		case intent.Greeting:
			rows = append(rows, Row{Intent: l, Kind: KindAdvice, Text: t.greeting})
			continue
		case intent.Thanks:
			rows = append(rows, Row{Intent: l, Kind: KindAdvice, Text: t.thanks})
			continue
		case intent.Unknown:
			rows = append(rows, Row{Intent: l, Kind: KindAdvice, Text: t.fallback})
			continue
		}

		e := t.entries[l]
		if text, ok := e.Text(); ok {
			rows = append(rows, Row{Intent: l, Kind: KindAdvice, Text: text})
		}
		for _, c := range e.Crops() {
			text, _ := e.Lookup(c)
			rows = append(rows, Row{Intent: l, Crop: c, Kind: KindAdvice, Text: text})
		}
		if q, ok := t.clarify[l]; ok {
			rows = append(rows, Row{Intent: l, Kind: KindClarify, Text: q})
		}
	}
	return rows
}
