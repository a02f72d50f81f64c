// Package knowledge holds the curated advisory table and turns an
// (intent, crop) pair into advice text.
package knowledge

import (
	"cmp"
	"maps"
	"slices"

	"github.com/garyellow/agri-advisor-go/internal/crop"
)

type entryKind uint8

const (
	kindDefault entryKind = iota + 1
	kindPerCrop
)

// Entry is the advice stored for one intent: either a single default text
// or per-crop texts with a fixed order. The zero Entry is empty.
type Entry struct {
	kind    entryKind
	text    string
	perCrop map[crop.Name]string
	order   []crop.Name
}

// Default creates an entry that answers every crop the same way.
func Default(text string) Entry {
	return Entry{kind: kindDefault, text: text}
}

// PerCrop creates a crop-keyed entry. order fixes which crop counts as
// "first"; crops in advice but missing from order are appended in
// vocabulary order, and order entries without advice are dropped.
func PerCrop(advice map[crop.Name]string, order []crop.Name) Entry {
	m := maps.Clone(advice)
	seen := make(map[crop.Name]bool, len(m))
	ord := make([]crop.Name, 0, len(m))
	for _, c := range order {
		if _, ok := m[c]; ok && !seen[c] {
			ord = append(ord, c)
			seen[c] = true
		}
	}
	var rest []crop.Name
	for c := range m {
		if !seen[c] {
			rest = append(rest, c)
		}
	}
	slices.SortFunc(rest, func(a, b crop.Name) int {
		return cmp.Or(cmp.Compare(a.Rank(), b.Rank()), cmp.Compare(a, b))
	})
	return Entry{kind: kindPerCrop, perCrop: m, order: append(ord, rest...)}
}

// IsZero reports whether the entry holds nothing.
func (e Entry) IsZero() bool { return e.kind == 0 }

// IsPerCrop reports whether advice depends on the crop.
func (e Entry) IsPerCrop() bool { return e.kind == kindPerCrop }

// Text returns the default text; ok is false for per-crop entries.
func (e Entry) Text() (string, bool) {
	return e.text, e.kind == kindDefault
}

// Lookup returns the advice for c.
func (e Entry) Lookup(c crop.Name) (string, bool) {
	if e.kind != kindPerCrop {
		return "", false
	}
	s, ok := e.perCrop[c]
	return s, ok
}

// First returns the crop listed first and its advice.
func (e Entry) First() (crop.Name, string, bool) {
	if e.kind != kindPerCrop || len(e.order) == 0 {
		return "", "", false
	}
	c := e.order[0]
	return c, e.perCrop[c], true
}

// Crops returns the crops with advice, in entry order.
func (e Entry) Crops() []crop.Name { return slices.Clone(e.order) }

// with returns a copy of a per-crop entry with c set to text. New crops go
// to the end of the order.
func (e Entry) with(c crop.Name, text string) Entry {
	m := maps.Clone(e.perCrop)
	if m == nil {
		m = make(map[crop.Name]string, 1)
	}
	order := slices.Clone(e.order)
	if _, ok := m[c]; !ok {
		order = append(order, c)
	}
	m[c] = text
	return Entry{kind: kindPerCrop, perCrop: m, order: order}
}
