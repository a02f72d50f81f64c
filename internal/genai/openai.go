package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	domerrors "github.com/garyellow/agri-advisor-go/internal/errors"
	"github.com/garyellow/agri-advisor-go/internal/intent"
)

// openaiScorer scores intents through any OpenAI-compatible chat endpoint
// (Groq, Cerebras, OpenAI, or a custom base URL).
type openaiScorer struct {
	client   openai.Client
	model    string
	provider Provider
}

func newOpenAIScorer(provider Provider, apiKey, model, baseURL string) (*openaiScorer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: api key is required", provider)
	}
	if baseURL == "" {
		var ok bool
		if baseURL, ok = ProviderEndpoint[provider]; !ok {
			return nil, fmt.Errorf("unsupported OpenAI-compatible provider: %s", provider)
		}
	}
	if model == "" {
		return nil, fmt.Errorf("%s: model is required", provider)
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0), // WithRetry owns retries
	)
	return &openaiScorer{client: client, model: model, provider: provider}, nil
}

// buildScoreTool converts the score_intents declaration to the OpenAI tool
// format. JSON Schema types are lowercase ("number", not "NUMBER").
func buildScoreTool(labels []intent.Label) openai.ChatCompletionToolUnionParam {
	fd := BuildScoreFunction(labels)
	properties := make(map[string]any, len(fd.Parameters.Properties))
	for name, schema := range fd.Parameters.Properties {
		properties[name] = map[string]string{
			"type":        strings.ToLower(string(schema.Type)),
			"description": schema.Description,
		}
	}

	return openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
		Name:        fd.Name,
		Description: openai.String(fd.Description),
		Parameters: openai.FunctionParameters{
			"type":       "object",
			"properties": properties,
			"required":   fd.Parameters.Required,
		},
	})
}

// Score forces a tool call (required mode) and parses its JSON arguments.
func (s *openaiScorer) Score(ctx context.Context, text string, labels []intent.Label) ([]intent.Score, error) {
	params := openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(ScoringSystemPrompt),
			openai.UserMessage(text),
		},
		Tools: []openai.ChatCompletionToolUnionParam{buildScoreTool(labels)},
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String(string(openai.ChatCompletionToolChoiceOptionAutoRequired)),
		},
		Temperature: openai.Float(0),
		MaxTokens:   openai.Int(512),
	}

	start := time.Now()
	resp, err := s.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)
	if err != nil {
		slog.WarnContext(ctx, "Intent scoring API call failed",
			"provider", s.provider,
			"model", s.model,
			"input_length", len(text),
			"duration_ms", duration.Milliseconds(),
			"status", StatusCode(err))
		return nil, wrapCallError(fmt.Errorf("chat completion: %w", err), s.provider, s.model)
	}

	scores, err := s.parseResult(resp, labels)
	if err == nil && resp.Usage.TotalTokens > 0 {
		slog.DebugContext(ctx, "Intent scoring completed",
			"provider", s.provider,
			"model", s.model,
			"input_tokens", resp.Usage.PromptTokens,
			"output_tokens", resp.Usage.CompletionTokens,
			"duration_ms", duration.Milliseconds())
	}
	return scores, err
}

func (s *openaiScorer) parseResult(resp *openai.ChatCompletion, labels []intent.Label) ([]intent.Score, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response from model", domerrors.ErrMalformedOutput)
	}
	calls := resp.Choices[0].Message.ToolCalls
	if len(calls) == 0 {
		return nil, fmt.Errorf("%w: no tool call in response (expected with required mode)", domerrors.ErrMalformedOutput)
	}
	tc := calls[0]
	if tc.Type != "function" || tc.Function.Name != ScoreFunctionName {
		return nil, fmt.Errorf("%w: unexpected tool %s/%s", domerrors.ErrMalformedOutput, tc.Type, tc.Function.Name)
	}
	return parseScoreArguments(tc.Function.Arguments, labels)
}

func (s *openaiScorer) Provider() Provider { return s.provider }

func (s *openaiScorer) Model() string { return s.model }

// Close is a no-op; the openai-go client holds no resources.
func (s *openaiScorer) Close() error { return nil }
