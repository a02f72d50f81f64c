package genai

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"

	domerrors "github.com/garyellow/agri-advisor-go/internal/errors"
)

// ErrorAction is what the scorer chain does after a failed call.
type ErrorAction int

const (
	// ActionRetry repeats the call on the same model after a backoff.
	ActionRetry ErrorAction = iota
	// ActionFallback moves on to the next model in the chain.
	ActionFallback
	// ActionFail gives up on this provider: every model would fail the same way.
	ActionFail
)

func (a ErrorAction) String() string {
	switch a {
	case ActionRetry:
		return "retry"
	case ActionFallback:
		return "fallback"
	case ActionFail:
		return "fail"
	default:
		return "unknown"
	}
}

// LLMError is a failed scoring call, tagged with where it happened.
type LLMError struct {
	Provider   Provider
	Model      string
	StatusCode int // 0 when the transport failed before a response
	Err        error
}

func (e *LLMError) Error() string {
	var b strings.Builder
	if e.Provider != "" {
		b.WriteString(string(e.Provider))
		if e.Model != "" {
			b.WriteString("/" + e.Model)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Err.Error())
	if e.StatusCode > 0 {
		b.WriteString(" (status " + strconv.Itoa(e.StatusCode) + ")")
	}
	return b.String()
}

func (e *LLMError) Unwrap() error { return e.Err }

// wrapCallError tags an SDK error with provider, model and HTTP status.
func wrapCallError(err error, provider Provider, model string) error {
	if err == nil {
		return nil
	}
	return &LLMError{Provider: provider, Model: model, StatusCode: StatusCode(err), Err: err}
}

// verdict is the outcome of classifying one error: the chain's next step
// and the status label recorded for the call.
type verdict struct {
	action ErrorAction
	label  string
}

// messageRules classify errors that carry no status code. Order matters:
// quota beats rate limit, auth beats the generic "invalid".
var messageRules = []struct {
	verdict
	needles []string
}{
	{verdict{ActionFallback, "quota"}, []string{"quota", "daily limit", "monthly limit", "billing"}},
	{verdict{ActionRetry, "rate_limit"}, []string{"rate limit", "too many requests", "resource_exhausted", "429"}},
	{verdict{ActionRetry, "server_error"}, []string{
		"unavailable", "internal server error", "bad gateway", "gateway timeout",
		"overloaded", "capacity", "500", "502", "503", "504",
	}},
	{verdict{ActionRetry, "transient_error"}, []string{"408", "409", "timeout", "deadline", "connection"}},
	{verdict{ActionFail, "auth_error"}, []string{
		"401", "403", "unauthorized", "unauthenticated", "invalid api key", "forbidden", "permission denied",
	}},
	{verdict{ActionFail, "client_error"}, []string{"400", "404", "422", "invalid", "bad request", "not found", "unprocessable"}},
}

func classify(err error) verdict {
	switch {
	case err == nil:
		return verdict{ActionFail, "success"}
	case errors.Is(err, context.Canceled):
		return verdict{ActionFail, "canceled"}
	case errors.Is(err, context.DeadlineExceeded):
		return verdict{ActionRetry, "timeout"}
	case errors.Is(err, domerrors.ErrMalformedOutput):
		// another model may well return a complete score set
		return verdict{ActionFallback, "malformed"}
	}

	if code := StatusCode(err); code > 0 {
		return classifyStatus(code)
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range messageRules {
		for _, needle := range rule.needles {
			if strings.Contains(msg, needle) {
				return rule.verdict
			}
		}
	}
	return verdict{ActionRetry, "error"}
}

func classifyStatus(code int) verdict {
	switch {
	case code == http.StatusTooManyRequests:
		return verdict{ActionRetry, "rate_limit"}
	case code == http.StatusRequestTimeout || code == http.StatusConflict:
		return verdict{ActionRetry, "transient_error"}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return verdict{ActionFail, "auth_error"}
	case code >= 500:
		return verdict{ActionRetry, "server_error"}
	case code >= 400:
		return verdict{ActionFail, "client_error"}
	default:
		return verdict{ActionRetry, "error"}
	}
}

// ClassifyError decides whether a failed call is retried on the same model,
// handed to the next model, or ends the provider's turn.
func ClassifyError(err error) ErrorAction {
	return classify(err).action
}

// StatusCode extracts the HTTP status from an LLMError or a provider SDK
// error. Returns 0 when none is present.
func StatusCode(err error) int {
	var llmErr *LLMError
	if errors.As(err, &llmErr) && llmErr.StatusCode > 0 {
		return llmErr.StatusCode
	}
	var geminiErr genai.APIError
	if errors.As(err, &geminiErr) {
		return geminiErr.Code
	}
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return openaiErr.StatusCode
	}
	return 0
}

// RetryAfter returns the delay an OpenAI-compatible error response asked
// for, or 0.
func RetryAfter(err error) time.Duration {
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) && openaiErr.Response != nil {
		return ParseRetryAfter(openaiErr.Response.Header)
	}
	return 0
}

// ParseRetryAfter reads retry-after-ms, then retry-after (seconds or an
// HTTP date), then Groq's x-ratelimit-reset-tokens. Returns 0 if none parse.
func ParseRetryAfter(headers http.Header) time.Duration {
	if ms, err := strconv.Atoi(headers.Get("retry-after-ms")); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	if v := headers.Get("retry-after"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			return time.Duration(sec) * time.Second
		}
		if t, err := http.ParseTime(v); err == nil {
			return max(time.Until(t), 0)
		}
	}
	if d, err := time.ParseDuration(headers.Get("x-ratelimit-reset-tokens")); err == nil && d > 0 {
		return d
	}
	return 0
}

// errorLabel is the metrics status for a scoring call.
func errorLabel(err error) string {
	return classify(err).label
}
