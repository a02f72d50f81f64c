// Package intent defines the intent taxonomy and the classifier that
// assigns one label, with a confidence, to a farmer's question.
//
// The classifier wraps a pluggable Strategy (zero-shot LLM scoring,
// a fine-tuned local model, or lexical BM25 matching) behind a single
// contract: it never returns a label outside the taxonomy and degrades
// to Unknown instead of failing the query.
package intent

import "strings"

// TaxonomyVersion identifies the label set. Bump it whenever labels are
// added, removed or renamed so artifacts trained on an older set are rejected.
const TaxonomyVersion = "2"

// Label is one intent category.
type Label string

// Crop-specific intents. Advice for these depends on which crop is named.
const (
	AskCropInfo   Label = "ask_crop_info"
	AskFertilizer Label = "ask_fertilizer"
	AskPest       Label = "ask_pest"
	AskIrrigation Label = "ask_irrigation"
	AskPlanting   Label = "ask_planting"
	AskHarvesting Label = "ask_harvesting"
	AskDisease    Label = "ask_disease"
)

// Crop-independent intents.
const (
	AskSoil      Label = "ask_soil"
	AskWeather   Label = "ask_weather"
	AskSeed      Label = "ask_seed"
	AskMarket    Label = "ask_market"
	AskSubsidy   Label = "ask_subsidy"
	AskEquipment Label = "ask_equipment"
)

// Conversational control intents.
const (
	Greeting Label = "greeting"
	Thanks   Label = "thanks"
	Unknown  Label = "unknown"
)

// taxonomy order is the tie-break order for equal scores.
var taxonomy = []Label{
	AskCropInfo, AskFertilizer, AskPest, AskIrrigation, AskPlanting, AskHarvesting, AskDisease,
	AskSoil, AskWeather, AskSeed, AskMarket, AskSubsidy, AskEquipment,
	Greeting, Thanks, Unknown,
}

var rank = func() map[Label]int {
	m := make(map[Label]int, len(taxonomy))
	for i, l := range taxonomy {
		m[l] = i
	}
	return m
}()

// All returns every label in taxonomy order.
func All() []Label {
	return append([]Label(nil), taxonomy...)
}

// Candidates returns the labels offered to a strategy: everything but Unknown,
// which is reserved for degraded results.
func Candidates() []Label {
	out := make([]Label, 0, len(taxonomy)-1)
	for _, l := range taxonomy {
		if l != Unknown {
			out = append(out, l)
		}
	}
	return out
}

// Parse resolves a label name case-insensitively.
func Parse(s string) (Label, bool) {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := rank[l]; !ok {
		return "", false
	}
	return l, true
}

// Valid reports whether l belongs to the taxonomy.
func (l Label) Valid() bool {
	_, ok := rank[l]
	return ok
}

// CropSpecific reports whether advice for l is keyed by crop.
func (l Label) CropSpecific() bool {
	switch l {
	case AskCropInfo, AskFertilizer, AskPest, AskIrrigation, AskPlanting, AskHarvesting, AskDisease:
		return true
	}
	return false
}

// Control reports whether l is a conversational label rather than a question.
func (l Label) Control() bool {
	return l == Greeting || l == Thanks || l == Unknown
}

func (l Label) String() string { return string(l) }

func (l Label) order() int {
	if r, ok := rank[l]; ok {
		return r
	}
	return len(taxonomy)
}
