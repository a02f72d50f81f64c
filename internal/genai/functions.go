package genai

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"google.golang.org/genai"

	domerrors "github.com/garyellow/agri-advisor-go/internal/errors"
	"github.com/garyellow/agri-advisor-go/internal/intent"
)

// ScoreFunctionName is the only function the model may call.
const ScoreFunctionName = "score_intents"

// labelDescriptions tell the model what each label covers. Keep in sync
// with the intent taxonomy; labels without an entry get a generic text.
var labelDescriptions = map[intent.Label]string{
	intent.AskCropInfo:   "General information about a crop: varieties, climate, duration, uses.",
	intent.AskFertilizer: "Fertilizer, manure or nutrient doses and timing for a crop.",
	intent.AskPest:       "Insect or animal pests attacking a crop and how to control them.",
	intent.AskIrrigation: "Watering needs, schedules or irrigation methods for a crop.",
	intent.AskPlanting:   "Sowing or transplanting time, spacing, seed rate, nursery practice.",
	intent.AskHarvesting: "When and how to harvest a crop, maturity signs, post-harvest handling.",
	intent.AskDisease:    "Plant diseases such as blight, rust, wilt or rot and their management.",
	intent.AskSoil:       "Soil type, pH, testing, organic matter or soil preparation.",
	intent.AskWeather:    "Weather, rainfall, forecasts or climate effects on farming.",
	intent.AskSeed:       "Buying seed, seed varieties, certified seed or seed treatment.",
	intent.AskMarket:     "Crop prices, mandis, selling produce or market trends.",
	intent.AskSubsidy:    "Government schemes, subsidies, loans or insurance for farmers.",
	intent.AskEquipment:  "Tractors, sprayers, tools or farm machinery.",
	intent.Greeting:      "A greeting with no farming question, e.g. hello or namaste.",
	intent.Thanks:        "Thanks or acknowledgement with no new question.",
}

// BuildScoreFunction declares score_intents with one required NUMBER
// property per candidate label.
func BuildScoreFunction(labels []intent.Label) *genai.FunctionDeclaration {
	props := make(map[string]*genai.Schema, len(labels))
	required := make([]string, 0, len(labels))
	for _, l := range labels {
		desc, ok := labelDescriptions[l]
		if !ok {
			desc = "Relevance of the " + l.String() + " intent."
		}
		props[l.String()] = &genai.Schema{
			Type:        genai.TypeNumber,
			Description: desc + " Score from 0 (unrelated) to 1 (certain).",
		}
		required = append(required, l.String())
	}

	return &genai.FunctionDeclaration{
		Name:        ScoreFunctionName,
		Description: "Record how well the farmer's message matches each intent.",
		Parameters: &genai.Schema{
			Type:             genai.TypeObject,
			Properties:       props,
			Required:         required,
			PropertyOrdering: required,
		},
	}
}

// parseScores reads one score per label from function-call arguments.
// Values may be JSON numbers or numeric strings; anything else, or a
// missing label, is malformed output.
func parseScores(args map[string]any, labels []intent.Label) ([]intent.Score, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: %s called without arguments", domerrors.ErrMalformedOutput, ScoreFunctionName)
	}

	scores := make([]intent.Score, 0, len(labels))
	var total float64
	for _, l := range labels {
		raw, ok := args[l.String()]
		if !ok {
			return nil, fmt.Errorf("%w: missing score for %s", domerrors.ErrMalformedOutput, l)
		}
		v, err := toFloat(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: score for %s: %w", domerrors.ErrMalformedOutput, l, err)
		}
		v = max(v, 0)
		total += v
		scores = append(scores, intent.Score{Label: l, Score: v})
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: every score is zero", domerrors.ErrMalformedOutput)
	}
	return scores, nil
}

func parseScoreArguments(arguments string, labels []intent.Label) ([]intent.Score, error) {
	var args map[string]any
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return nil, fmt.Errorf("%w: arguments are not a JSON object: %w", domerrors.ErrMalformedOutput, err)
	}
	return parseScores(args, labels)
}

func toFloat(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, err
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("not numeric: %q", n)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("not numeric: %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not finite: %v", f)
	}
	return f, nil
}
