package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/roboco-io/koimport/internal/ir"
)

// OpenAIProvider describes drawings with the OpenAI chat completion API or
// any compatible endpoint.
type OpenAIProvider struct {
	name   string
	cfg    ProviderConfig
	client *openai.Client
}

// NewOpenAI creates an OpenAI provider.
func NewOpenAI(cfg ProviderConfig) *OpenAIProvider {
	return newOpenAICompatible("openai", cfg.APIKey, cfg.Endpoint, cfg)
}

// NewOllama creates a provider for a local Ollama server through its
// OpenAI compatible endpoint.
func NewOllama(cfg ProviderConfig) *OpenAIProvider {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	endpoint = strings.TrimSuffix(endpoint, "/")
	if !strings.HasSuffix(endpoint, "/v1") {
		endpoint += "/v1"
	}
	cfg.Endpoint = endpoint
	// Ollama는 키를 검사하지 않지만 클라이언트는 값을 요구한다
	return newOpenAICompatible("ollama", "ollama", endpoint, cfg)
}

func newOpenAICompatible(name, apiKey, endpoint string, cfg ProviderConfig) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		clientCfg.BaseURL = endpoint
	}
	return &OpenAIProvider{
		name:   name,
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}
}

func (p *OpenAIProvider) Name() string { return p.name }

func (p *OpenAIProvider) Validate() error {
	if p.name == "openai" && p.cfg.APIKey == "" {
		return fmt.Errorf("openai: API 키가 설정되지 않았습니다 (OPENAI_API_KEY)")
	}
	if p.name == "ollama" && p.cfg.Endpoint == "" {
		return fmt.Errorf("ollama: 엔드포인트가 설정되지 않았습니다")
	}
	if p.cfg.Model == "" {
		return fmt.Errorf("%s: 모델이 설정되지 않았습니다", p.name)
	}
	return nil
}

func (p *OpenAIProvider) Describe(ctx context.Context, doc *ir.Document, opts DescribeOptions) (*DescribeResult, error) {
	req := newRequest(doc, opts, p.cfg)

	resp, err := retry(ctx, p.name, p.cfg.MaxRetries, classifyOpenAI, func(ctx context.Context) (openai.ChatCompletionResponse, error) {
		return p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       req.model,
			MaxTokens:   req.maxTokens,
			Temperature: float32(req.temperature),
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: req.system},
				{Role: openai.ChatMessageRoleUser, Content: req.user},
			},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%s: 요청 실패: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: 응답에 결과가 없습니다", p.name)
	}

	return &DescribeResult{
		Markdown: strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:    resp.Model,
		Usage: TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

func classifyOpenAI(err error) ErrorKind {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return ClassifyStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return ClassifyStatus(reqErr.HTTPStatusCode)
	}
	return Transient
}
