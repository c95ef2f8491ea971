package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roboco-io/koimport/internal/filter"
	"github.com/roboco-io/koimport/internal/llm"
	"github.com/roboco-io/koimport/internal/parser"
)

var (
	describeProvider string
	describeModel    string
	describeLanguage string
	describeOutput   string
)

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "LLM으로 메타파일 그림 설명 생성",
	Long: `WMF 메타파일을 가져와 도형 개요를 만들고, LLM으로 Markdown 대체 텍스트를 생성합니다.

프로바이더를 지정하지 않으면 --model 이름으로 추정하고,
모델도 없으면 설정의 default_provider를 사용합니다.

예시:
  koimport describe drawing.wmf
  koimport describe drawing.wmf --provider openai
  koimport describe drawing.wmf --model gemini-1.5-pro --lang en`,
	Args: cobra.ExactArgs(1),
	RunE: runDescribe,
}

func init() {
	describeCmd.Flags().StringVarP(&describeProvider, "provider", "p", "", "LLM 프로바이더 (anthropic, openai, gemini, ollama)")
	describeCmd.Flags().StringVarP(&describeModel, "model", "m", "", "LLM 모델 이름")
	describeCmd.Flags().StringVar(&describeLanguage, "lang", "", "출력 언어 (ko, en)")
	describeCmd.Flags().StringVarP(&describeOutput, "output", "o", "", "출력 파일 경로 (기본: stdout)")

	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	input := args[0]

	format, err := filter.Detect(input)
	if err != nil {
		return err
	}
	if format != parser.FormatWMF && format != parser.FormatOLE {
		return fmt.Errorf("메타파일만 설명할 수 있습니다: %s", format)
	}

	doc, err := filter.NewWMF(cfg).Import(input)
	if err != nil {
		return fmt.Errorf("문서 파싱 실패: %w", err)
	}

	name := describeProvider
	if name == "" {
		name = cfg.DefaultProvider
		if describeModel != "" {
			name = detectProviderFromModel(describeModel)
		}
	}
	p, err := resolveProvider(name)
	if err != nil {
		return err
	}

	opts := llm.DefaultDescribeOptions()
	opts.Model = describeModel
	opts.Language = cfg.Describe.Language
	opts.Temperature = cfg.Describe.Temperature
	if describeLanguage != "" {
		opts.Language = describeLanguage
	}

	slog.Info("[cli] describing drawing", "input", input, "provider", p.Name(), "shapes", len(doc.Shapes()))
	res, err := p.Describe(cmd.Context(), doc, opts)
	if err != nil {
		return fmt.Errorf("LLM 설명 생성 실패: %w", err)
	}
	slog.Info("[cli] description done",
		"model", res.Model,
		"input_tokens", res.Usage.InputTokens,
		"output_tokens", res.Usage.OutputTokens)

	if describeOutput == "" || describeOutput == filter.StdoutPath {
		fmt.Fprintln(cmd.OutOrStdout(), res.Markdown)
		return nil
	}
	if err := os.WriteFile(describeOutput, []byte(res.Markdown+"\n"), 0644); err != nil {
		return fmt.Errorf("파일 저장 실패: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "설명 저장됨: %s\n", describeOutput)
	return nil
}

// providerConfig merges the configuration file and the provider's
// environment variable. Keys written in the file take precedence.
func providerConfig(name string) llm.ProviderConfig {
	pc := llm.ProviderConfig{MaxRetries: llm.DefaultMaxRetries}
	if cfg != nil {
		if p, ok := cfg.GetProvider(name); ok {
			pc.APIKey = p.APIKey
			pc.Model = p.Model
			pc.MaxTokens = p.MaxTokens
			pc.Endpoint = p.Endpoint
		}
	}
	info, ok := lookupProvider(name)
	if !ok {
		return pc
	}
	if pc.Model == "" {
		pc.Model = info.DefaultModel
	}
	if v := os.Getenv(info.EnvKey); v != "" {
		switch {
		case name == "ollama":
			pc.Endpoint = v
		case pc.APIKey == "":
			pc.APIKey = v
		}
	}
	return pc
}

// newProviderRegistry configures every built-in provider.
func newProviderRegistry() *llm.Registry {
	reg := llm.NewRegistry()
	for _, info := range providers {
		// 내장 목록이므로 실패하지 않는다
		_ = reg.Configure(info.Name, providerConfig(info.Name))
	}
	return reg
}

// resolveProvider returns a usable provider for name.
func resolveProvider(name string) (llm.Provider, error) {
	if _, ok := lookupProvider(name); !ok {
		return nil, fmt.Errorf("지원하지 않는 프로바이더: %s (지원: %s)", name, strings.Join(providerNames(), ", "))
	}
	p, err := newProviderRegistry().Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("프로바이더 %s 사용 불가: %w", name, err)
	}
	return p, nil
}

// detectProviderFromModel guesses the provider from a model name.
func detectProviderFromModel(model string) string {
	m := strings.ToLower(model)
	switch {
	case m == "", strings.HasPrefix(m, "claude"):
		return "anthropic"
	case strings.HasPrefix(m, "gpt"), strings.HasPrefix(m, "o1"), strings.HasPrefix(m, "o3"):
		return "openai"
	case strings.HasPrefix(m, "gemini"):
		return "gemini"
	default:
		return "ollama"
	}
}
