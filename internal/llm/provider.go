// Package llm provides a single text-generation interface over the Gemini
// and DeepSeek APIs, plus a router that picks the back-end for a model and
// paces requests to the model's published quota.
package llm

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNoAPIKey      = errors.New("llm: API key not configured")
	ErrRateLimit     = errors.New("llm: rate limit exceeded")
	ErrEmptyResponse = errors.New("llm: empty response")
	ErrProviderDown  = errors.New("llm: provider unavailable")
	ErrInvalidModel  = errors.New("llm: invalid model")
	ErrNoProviders   = errors.New("llm: no providers configured")
)

// Request is one stage call: a system instruction and a single user turn.
// Zero sampling fields leave the provider default in place.
type Request struct {
	Model       string
	System      string
	Prompt      string
	Temperature float64
	TopP        float64
	TopK        int
	MaxTokens   int
}

// Response carries the generated text and what it cost.
type Response struct {
	Content      string
	FinishReason string
	Model        string
	Provider     string
	Usage        Usage
	Latency      time.Duration
}

// Usage is the token accounting reported by the provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Provider generates text for a Request.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Response, error)
}
