package knowledge

import (
	"fmt"
	"strings"

	"github.com/garyellow/agri-advisor-go/internal/crop"
	"github.com/garyellow/agri-advisor-go/internal/intent"
)

// Policy decides the reply when a crop is named but the intent has no
// advice for it.
type Policy string

const (
	// PolicyClarify asks the intent's clarifying question.
	PolicyClarify Policy = "clarify"
	// PolicyLegacy answers with the intent's first crop advice, prefixed
	// "For <crop>: ".
	PolicyLegacy Policy = "legacy"
)

// ParsePolicy maps a config value to a Policy.
func ParsePolicy(s string) (Policy, bool) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyClarify, PolicyLegacy:
		return p, true
	}
	return "", false
}

// Outcome labels which rule produced a reply.
type Outcome string

const (
	OutcomeEntry    Outcome = "entry"
	OutcomeClarify  Outcome = "clarify"
	OutcomeLegacy   Outcome = "legacy"
	OutcomeDefault  Outcome = "default"
	OutcomeControl  Outcome = "control"
	OutcomeFallback Outcome = "fallback"
)

// Reply is advice plus the rule that chose it.
type Reply struct {
	Advice  string
	Outcome Outcome
}

// Synthesizer maps (intent, crop) to advice. It is pure and safe for
// concurrent use.
type Synthesizer struct {
	table  Table
	policy Policy
}

// NewSynthesizer creates a Synthesizer. An unrecognised policy means
// PolicyClarify.
func NewSynthesizer(t Table, p Policy) *Synthesizer {
	if _, ok := ParsePolicy(string(p)); !ok {
		p = PolicyClarify
	}
	return &Synthesizer{table: t, policy: p}
}

// Policy returns the missing-crop policy in effect.
func (s *Synthesizer) Policy() Policy { return s.policy }

// Build returns the advice text. text is accepted for interface stability
// and does not influence the reply.
func (s *Synthesizer) Build(label intent.Label, c crop.Name, ok bool, text string) string {
	return s.Respond(label, c, ok, text).Advice
}

// Respond is Build with the outcome attached.
func (s *Synthesizer) Respond(label intent.Label, c crop.Name, ok bool, _ string) Reply {
	t := s.table
	switch label {
	case intent.Greeting:
		return Reply{t.greeting, OutcomeControl}
	case intent.Thanks:
		return Reply{t.thanks, OutcomeControl}
	case intent.AskWeather, intent.AskSeed, intent.AskMarket, intent.AskSubsidy, intent.AskEquipment:
		if text, found := t.entries[label].Text(); found {
			return Reply{text, OutcomeDefault}
		}
		return Reply{rephraseText, OutcomeDefault}
	case intent.AskSoil:
		if text, found := t.entries[label].Text(); found {
			return Reply{text, OutcomeDefault}
		}
		return Reply{soilText, OutcomeDefault}
	}

	if !label.CropSpecific() {
		return Reply{t.fallback, OutcomeFallback}
	}
	entry := t.entries[label]
	if !entry.IsPerCrop() {
		return Reply{t.fallback, OutcomeFallback}
	}

	ok = ok && c.Valid()
	if ok {
		if advice, found := entry.Lookup(c); found {
			return Reply{c.Display() + " – " + advice, OutcomeEntry}
		}
		if s.policy == PolicyLegacy {
			advice := extensionText
			if _, first, found := entry.First(); found {
				advice = first
			}
			return Reply{fmt.Sprintf("For %s: %s", c, advice), OutcomeLegacy}
		}
	}
	if q, found := t.Clarifying(label); found {
		return Reply{q, OutcomeClarify}
	}
	return Reply{t.fallback, OutcomeFallback}
}
