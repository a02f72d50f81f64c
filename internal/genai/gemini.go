package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	domerrors "github.com/garyellow/agri-advisor-go/internal/errors"
	"github.com/garyellow/agri-advisor-go/internal/intent"
)

// geminiScorer scores intents with Gemini function calling.
type geminiScorer struct {
	client *genai.Client
	model  string
}

func newGeminiScorer(ctx context.Context, apiKey, model string) (*geminiScorer, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if model == "" {
		model = DefaultGeminiModels[0]
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &geminiScorer{client: client, model: model}, nil
}

// Score forces a score_intents call (ANY mode) and parses its arguments.
func (s *geminiScorer) Score(ctx context.Context, text string, labels []intent.Label) ([]intent.Score, error) {
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{
			FunctionDeclarations: []*genai.FunctionDeclaration{BuildScoreFunction(labels)},
		}},
		SystemInstruction: genai.NewContentFromText(ScoringSystemPrompt, genai.RoleUser),
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{ScoreFunctionName},
			},
		},
		Temperature:     genai.Ptr[float32](0),
		MaxOutputTokens: 512,
	}

	start := time.Now()
	result, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(text), config)
	duration := time.Since(start)
	if err != nil {
		slog.WarnContext(ctx, "Intent scoring API call failed",
			"provider", ProviderGemini,
			"model", s.model,
			"input_length", len(text),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return nil, wrapCallError(fmt.Errorf("generate content: %w", err), ProviderGemini, s.model)
	}

	scores, err := s.parseResult(result, labels)
	if err == nil && result.UsageMetadata != nil {
		slog.DebugContext(ctx, "Intent scoring completed",
			"provider", ProviderGemini,
			"model", s.model,
			"input_tokens", result.UsageMetadata.PromptTokenCount,
			"output_tokens", result.UsageMetadata.CandidatesTokenCount,
			"duration_ms", duration.Milliseconds())
	}
	return scores, err
}

func (s *geminiScorer) parseResult(result *genai.GenerateContentResponse, labels []intent.Label) ([]intent.Score, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("%w: empty response from model", domerrors.ErrMalformedOutput)
	}
	candidate := result.Candidates[0]
	if candidate.Content == nil {
		return nil, fmt.Errorf("%w: no content (finish reason %s)", domerrors.ErrMalformedOutput, candidate.FinishReason)
	}
	for _, part := range candidate.Content.Parts {
		if fc := part.FunctionCall; fc != nil {
			if fc.Name != ScoreFunctionName {
				return nil, fmt.Errorf("%w: unexpected function %q", domerrors.ErrMalformedOutput, fc.Name)
			}
			return parseScores(fc.Args, labels)
		}
	}
	return nil, fmt.Errorf("%w: no function call in response (expected with ANY mode)", domerrors.ErrMalformedOutput)
}

func (s *geminiScorer) Provider() Provider { return ProviderGemini }

func (s *geminiScorer) Model() string { return s.model }

// Close is a no-op; genai.Client holds no resources that need releasing.
func (s *geminiScorer) Close() error { return nil }
