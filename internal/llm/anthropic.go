package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/roboco-io/koimport/internal/ir"
)

// AnthropicProvider describes drawings with the Anthropic Messages API.
type AnthropicProvider struct {
	cfg    ProviderConfig
	client anthropic.Client
}

// NewAnthropic creates an Anthropic provider.
func NewAnthropic(cfg ProviderConfig) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// 재시도는 retry()가 담당
		option.WithMaxRetries(0),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	return &AnthropicProvider{cfg: cfg, client: anthropic.NewClient(opts...)}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Validate() error {
	if p.cfg.APIKey == "" {
		return fmt.Errorf("anthropic: API 키가 설정되지 않았습니다 (ANTHROPIC_API_KEY)")
	}
	if p.cfg.Model == "" {
		return fmt.Errorf("anthropic: 모델이 설정되지 않았습니다")
	}
	return nil
}

func (p *AnthropicProvider) Describe(ctx context.Context, doc *ir.Document, opts DescribeOptions) (*DescribeResult, error) {
	req := newRequest(doc, opts, p.cfg)

	msg, err := retry(ctx, p.Name(), p.cfg.MaxRetries, classifyAnthropic, func(ctx context.Context) (*anthropic.Message, error) {
		return p.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:       anthropic.Model(req.model),
			MaxTokens:   int64(req.maxTokens),
			Temperature: anthropic.Float(req.temperature),
			System:      []anthropic.TextBlockParam{{Text: req.system}},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(req.user)),
			},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic: 요청 실패: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return &DescribeResult{
		Markdown: strings.TrimSpace(sb.String()),
		Model:    string(msg.Model),
		Usage: TokenUsage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
			TotalTokens:  int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}, nil
}

func classifyAnthropic(err error) ErrorKind {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return ClassifyStatus(apiErr.StatusCode)
	}
	return Transient
}
