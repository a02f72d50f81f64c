package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	domerrors "github.com/garyellow/agri-advisor-go/internal/errors"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorAction
	}{
		{"nil error", nil, ActionFail},
		{"context canceled", context.Canceled, ActionFail},
		{"deadline exceeded", context.DeadlineExceeded, ActionRetry},
		{"malformed scores", fmt.Errorf("%w: missing ask_pest", domerrors.ErrMalformedOutput), ActionFallback},
		{"LLMError 429", &LLMError{Err: errors.New("slow down"), StatusCode: http.StatusTooManyRequests}, ActionRetry},
		{"LLMError 503", &LLMError{Err: errors.New("down"), StatusCode: http.StatusServiceUnavailable}, ActionRetry},
		{"LLMError 401", &LLMError{Err: errors.New("who"), StatusCode: http.StatusUnauthorized}, ActionFail},
		{"gemini 500", fmt.Errorf("generate: %w", genai.APIError{Code: 500, Message: "internal"}), ActionRetry},
		{"gemini 400", genai.APIError{Code: 400, Message: "bad schema"}, ActionFail},
		{"openai 429", &openai.Error{StatusCode: 429}, ActionRetry},
		{"openai 403", &openai.Error{StatusCode: 403}, ActionFail},
		{"quota text", errors.New("RESOURCE_EXHAUSTED: quota limit"), ActionFallback},
		{"daily limit text", errors.New("daily limit reached"), ActionFallback},
		{"rate limit text", errors.New("rate limit exceeded temporarily"), ActionRetry},
		{"overloaded text", errors.New("server overloaded"), ActionRetry},
		{"gateway timeout text", errors.New("gateway timeout"), ActionRetry},
		{"invalid api key text", errors.New("invalid api key"), ActionFail},
		{"not found text", errors.New("model not found"), ActionFail},
		{"unknown text", errors.New("something unexpected happened"), ActionRetry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code   int
		action ErrorAction
		label  string
	}{
		{429, ActionRetry, "rate_limit"},
		{408, ActionRetry, "transient_error"},
		{409, ActionRetry, "transient_error"},
		{500, ActionRetry, "server_error"},
		{503, ActionRetry, "server_error"},
		{401, ActionFail, "auth_error"},
		{403, ActionFail, "auth_error"},
		{400, ActionFail, "client_error"},
		{404, ActionFail, "client_error"},
		{418, ActionFail, "client_error"},
		{302, ActionRetry, "error"},
	}
	for _, tt := range tests {
		got := classifyStatus(tt.code)
		assert.Equal(t, tt.action, got.action, "status %d", tt.code)
		assert.Equal(t, tt.label, got.label, "status %d", tt.code)
	}
}

func TestStatusCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 429, StatusCode(&LLMError{Err: errors.New("x"), StatusCode: 429}))
	assert.Equal(t, 503, StatusCode(fmt.Errorf("wrap: %w", genai.APIError{Code: 503})))
	assert.Equal(t, 401, StatusCode(&openai.Error{StatusCode: 401}))
	assert.Zero(t, StatusCode(errors.New("plain")))
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers http.Header
		want    time.Duration
	}{
		{"empty", http.Header{}, 0},
		{"milliseconds", http.Header{"Retry-After-Ms": {"1500"}}, 1500 * time.Millisecond},
		{"seconds", http.Header{"Retry-After": {"5"}}, 5 * time.Second},
		{"groq reset", http.Header{"X-Ratelimit-Reset-Tokens": {"2s"}}, 2 * time.Second},
		{"ms wins", http.Header{"Retry-After-Ms": {"500"}, "Retry-After": {"5"}}, 500 * time.Millisecond},
		{"invalid", http.Header{"Retry-After": {"soon"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseRetryAfter(tt.headers))
		})
	}
}

func TestRetryAfter(t *testing.T) {
	t.Parallel()

	err := &openai.Error{
		StatusCode: 429,
		Response:   &http.Response{Header: http.Header{"Retry-After": {"3"}}},
	}
	assert.Equal(t, 3*time.Second, RetryAfter(err))
	assert.Zero(t, RetryAfter(&openai.Error{StatusCode: 429}))
	assert.Zero(t, RetryAfter(errors.New("plain")))
}

func TestLLMError(t *testing.T) {
	t.Parallel()

	base := errors.New("test error")
	err := &LLMError{Provider: ProviderGroq, Model: "llama-3.3-70b-versatile", StatusCode: 429, Err: base}
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "groq/llama-3.3-70b-versatile: test error (status 429)", err.Error())
	assert.Equal(t, "test error", (&LLMError{Err: base}).Error())

	wrapped := wrapCallError(fmt.Errorf("chat completion: %w", &openai.Error{StatusCode: 503}), ProviderCerebras, "qwen-3")
	var llmErr *LLMError
	require.ErrorAs(t, wrapped, &llmErr)
	assert.Equal(t, ProviderCerebras, llmErr.Provider)
	assert.Equal(t, 503, llmErr.StatusCode)
	assert.Equal(t, ActionRetry, ClassifyError(wrapped))
	assert.NoError(t, wrapCallError(nil, ProviderGemini, "gemini-2.5-flash"))
}

func TestErrorActionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "retry", ActionRetry.String())
	assert.Equal(t, "fallback", ActionFallback.String())
	assert.Equal(t, "fail", ActionFail.String())
	assert.Equal(t, "unknown", ErrorAction(99).String())
}
