package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// providerInfo describes a built-in describe backend.
type providerInfo struct {
	Name         string
	DefaultModel string
	EnvKey       string
	Description  string
}

var providers = []providerInfo{
	{"anthropic", "claude-sonnet-4-20250514", "ANTHROPIC_API_KEY", "Anthropic Claude API"},
	{"openai", "gpt-4o-mini", "OPENAI_API_KEY", "OpenAI GPT API"},
	{"gemini", "gemini-1.5-flash", "GOOGLE_API_KEY", "Google Gemini API"},
	{"ollama", "llama3.2", "OLLAMA_HOST", "Local Ollama server"},
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "도면 설명에 쓸 LLM 프로바이더 상태",
	Long: `describe 명령이 쓸 수 있는 LLM 프로바이더와 현재 사용할 모델,
API 키 설정 여부를 표시합니다. 기본 프로바이더에는 * 표시가 붙습니다.

API 키는 설정 파일(providers.<이름>.api_key) 또는 환경 변수에서 읽습니다.
ollama는 로컬 서버이므로 키 없이 사용합니다.

사용 예시:
  koimport describe drawing.wmf --provider anthropic
  koimport describe drawing.wmf --model gpt-4o`,
	Args: cobra.NoArgs,
	RunE: runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

func runProviders(cmd *cobra.Command, args []string) error {
	def := ""
	if cfg != nil {
		def = cfg.DefaultProvider
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\t프로바이더\t모델\t키\t상태\t설명")
	for _, p := range providers {
		mark := ""
		if p.Name == def {
			mark = "*"
		}
		status := checkProviderStatus(p)
		paint := color.New(color.FgGreen).SprintFunc()
		if strings.HasPrefix(status, "✗") {
			paint = color.New(color.FgRed).SprintFunc()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			mark, p.Name, providerConfig(p.Name).Model, p.EnvKey, paint(status), p.Description)
	}
	return w.Flush()
}

// checkProviderStatus reports where the provider's key comes from.
func checkProviderStatus(p providerInfo) string {
	if p.Name == "ollama" {
		// 로컬 서버
		return "✓ 사용가능"
	}
	if os.Getenv(p.EnvKey) != "" {
		return "✓ 설정됨"
	}
	if cfg != nil {
		// 펼쳐지지 않은 ${VAR}는 키가 아니다
		if c, ok := cfg.GetProvider(p.Name); ok && c.APIKey != "" && !strings.Contains(c.APIKey, "${") {
			return "✓ 설정 파일"
		}
	}
	return "✗ 미설정"
}

func lookupProvider(name string) (providerInfo, bool) {
	for _, p := range providers {
		if p.Name == name {
			return p, true
		}
	}
	return providerInfo{}, false
}

func providerNames() []string {
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name
	}
	return names
}
