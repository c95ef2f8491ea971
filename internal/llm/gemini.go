package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/roboco-io/koimport/internal/ir"
)

// GeminiProvider describes drawings with the Gemini API.
type GeminiProvider struct {
	cfg ProviderConfig

	once   sync.Once
	client *genai.Client
	err    error
}

// NewGemini creates a Gemini provider. The client is created on first use.
func NewGemini(cfg ProviderConfig) *GeminiProvider {
	return &GeminiProvider{cfg: cfg}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Validate() error {
	if p.cfg.APIKey == "" {
		return fmt.Errorf("gemini: API 키가 설정되지 않았습니다 (GOOGLE_API_KEY)")
	}
	if p.cfg.Model == "" {
		return fmt.Errorf("gemini: 모델이 설정되지 않았습니다")
	}
	return nil
}

func (p *GeminiProvider) getClient(ctx context.Context) (*genai.Client, error) {
	p.once.Do(func() {
		cc := &genai.ClientConfig{
			APIKey:  p.cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		}
		if p.cfg.Endpoint != "" {
			cc.HTTPOptions.BaseURL = p.cfg.Endpoint
		}
		p.client, p.err = genai.NewClient(ctx, cc)
	})
	return p.client, p.err
}

func (p *GeminiProvider) Describe(ctx context.Context, doc *ir.Document, opts DescribeOptions) (*DescribeResult, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gemini: 클라이언트 생성 실패: %w", err)
	}
	req := newRequest(doc, opts, p.cfg)

	resp, err := retry(ctx, p.Name(), p.cfg.MaxRetries, classifyGemini, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return client.Models.GenerateContent(ctx, req.model, genai.Text(req.user), &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.system, genai.RoleUser),
			Temperature:       genai.Ptr(float32(req.temperature)),
			MaxOutputTokens:   int32(req.maxTokens),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: 요청 실패: %w", err)
	}

	result := &DescribeResult{
		Markdown: strings.TrimSpace(resp.Text()),
		Model:    req.model,
	}
	if u := resp.UsageMetadata; u != nil {
		result.Usage = TokenUsage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}
	return result, nil
}

func classifyGemini(err error) ErrorKind {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return ClassifyStatus(apiErr.Code)
	}
	return Transient
}
