// Package llm provides the LLM provider interface and registry used to
// describe imported drawings.
package llm

import (
	"context"

	"github.com/roboco-io/koimport/internal/ir"
)

// Provider is the interface that all LLM providers must implement.
type Provider interface {
	// Name returns the provider identifier (e.g., "openai", "anthropic").
	Name() string

	// Describe returns a Markdown description of the drawing.
	Describe(ctx context.Context, doc *ir.Document, opts DescribeOptions) (*DescribeResult, error)

	// Validate checks if the provider is properly configured.
	Validate() error
}

// DescribeOptions contains options for a description request.
type DescribeOptions struct {
	Language    string  `json:"language,omitempty"`    // output language (e.g., "ko", "en")
	Model       string  `json:"model,omitempty"`       // overrides the provider's model
	MaxTokens   int     `json:"max_tokens,omitempty"`  // maximum tokens for response
	Temperature float64 `json:"temperature,omitempty"` // creativity level (0.0 - 1.0)
	Prompt      string  `json:"prompt,omitempty"`      // custom system prompt
}

// DescribeResult contains the generated description.
type DescribeResult struct {
	Markdown string     `json:"markdown"`
	Usage    TokenUsage `json:"usage"`
	Model    string     `json:"model"`
}

// TokenUsage contains token usage statistics.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// DefaultDescribeOptions returns the default description options.
func DefaultDescribeOptions() DescribeOptions {
	return DescribeOptions{
		Language:    "ko",
		MaxTokens:   1024,
		Temperature: 0.3,
	}
}

// ProviderConfig configures a provider instance.
type ProviderConfig struct {
	APIKey     string
	Model      string
	MaxTokens  int
	Endpoint   string // 비어 있으면 공식 엔드포인트
	MaxRetries int
}

// New creates the provider called name.
func New(name string, cfg ProviderConfig) (Provider, error) {
	switch name {
	case "anthropic":
		return NewAnthropic(cfg), nil
	case "openai":
		return NewOpenAI(cfg), nil
	case "gemini":
		return NewGemini(cfg), nil
	case "ollama":
		return NewOllama(cfg), nil
	default:
		return nil, &UnknownProviderError{Name: name}
	}
}

// UnknownProviderError is returned by New for unsupported names.
type UnknownProviderError struct {
	Name string
}

func (e *UnknownProviderError) Error() string {
	return "unknown provider: " + e.Name
}

// request is the provider independent form of a description call.
type request struct {
	system      string
	user        string
	model       string
	maxTokens   int
	temperature float64
}

func newRequest(doc *ir.Document, opts DescribeOptions, cfg ProviderConfig) request {
	req := request{
		system:      opts.Prompt,
		user:        BuildOutline(doc),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: opts.Temperature,
	}
	if req.system == "" {
		req.system = SystemPrompt(opts.Language)
	}
	if opts.Model != "" {
		req.model = opts.Model
	}
	if opts.MaxTokens > 0 {
		req.maxTokens = opts.MaxTokens
	}
	if req.maxTokens <= 0 {
		req.maxTokens = DefaultDescribeOptions().MaxTokens
	}
	return req
}
