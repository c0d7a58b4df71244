package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DeepSeekProvider implements Provider for DeepSeek's OpenAI-compatible
// chat completions API.
type DeepSeekProvider struct {
	client *resty.Client
	model  string
}

// DeepSeekOption configures the DeepSeek provider.
type DeepSeekOption func(*deepSeekSettings)

type deepSeekSettings struct {
	model   string
	baseURL string
	timeout time.Duration
}

// WithDeepSeekModel sets the default model.
func WithDeepSeekModel(model string) DeepSeekOption {
	return func(s *deepSeekSettings) { s.model = model }
}

// WithDeepSeekBaseURL overrides the API endpoint.
func WithDeepSeekBaseURL(url string) DeepSeekOption {
	return func(s *deepSeekSettings) { s.baseURL = url }
}

// WithDeepSeekTimeout sets the request timeout.
func WithDeepSeekTimeout(d time.Duration) DeepSeekOption {
	return func(s *deepSeekSettings) { s.timeout = d }
}

// NewDeepSeekProvider creates a DeepSeek provider.
func NewDeepSeekProvider(apiKey string, opts ...DeepSeekOption) (*DeepSeekProvider, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	s := deepSeekSettings{
		model:   "deepseek-chat",
		baseURL: "https://api.deepseek.com",
		timeout: 180 * time.Second,
	}
	for _, opt := range opts {
		opt(&s)
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(s.baseURL, "/")).
		SetTimeout(s.timeout).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &DeepSeekProvider{client: client, model: s.model}, nil
}

func (p *DeepSeekProvider) Name() string { return "deepseek" }

type deepSeekMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type deepSeekRequest struct {
	Model       string            `json:"model"`
	Messages    []deepSeekMessage `json:"messages"`
	Temperature float64           `json:"temperature"`
	TopP        float64           `json:"top_p,omitempty"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Stream      bool              `json:"stream"`
}

type deepSeekResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      deepSeekMessage `json:"message"`
		FinishReason string          `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type deepSeekError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate sends a chat completion with a system and a user message.
func (p *DeepSeekProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	model := req.Model
	if model == "" {
		model = p.model
	}

	body := deepSeekRequest{
		Model:       model,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, deepSeekMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, deepSeekMessage{Role: "user", Content: req.Prompt})

	var result deepSeekResponse
	var apiErr deepSeekError
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("deepseek: %w: %v", ErrProviderDown, err)
	}

	if resp.IsError() {
		detail := apiErr.Error.Message
		if detail == "" {
			detail = strings.TrimSpace(resp.String())
		}
		switch resp.StatusCode() {
		case http.StatusTooManyRequests:
			return nil, fmt.Errorf("deepseek: %w: %s", ErrRateLimit, detail)
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("deepseek: %w: %s", ErrNoAPIKey, detail)
		default:
			return nil, fmt.Errorf("deepseek: status %d: %s", resp.StatusCode(), detail)
		}
	}

	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("deepseek: %w", ErrEmptyResponse)
	}

	if result.Model != "" {
		model = result.Model
	}
	return &Response{
		Content:      result.Choices[0].Message.Content,
		FinishReason: result.Choices[0].FinishReason,
		Usage: Usage{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
		},
		Model:    model,
		Provider: p.Name(),
		Latency:  time.Since(start),
	}, nil
}
