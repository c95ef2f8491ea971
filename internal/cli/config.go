package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roboco-io/koimport/internal/config"
)

var (
	configForce    bool
	configExpanded bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "설정 파일 관리",
	Long: `~/.koimport/config.yaml 설정 파일을 만들고 확인하고 수정합니다.
KOIMPORT_CONFIG 환경 변수로 다른 파일을 지정할 수 있습니다.

설정 파일의 값에는 ${VAR} 형식으로 환경 변수를 쓸 수 있으며,
실행 시점에 펼쳐집니다. 파일을 수정할 때는 ${VAR}가 그대로 유지됩니다.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "설정 내용과 관련 환경 변수 표시",
	Long: `설정 파일 내용을 표시합니다. 파일이 없으면 기본값을 표시합니다.

기본적으로 ${VAR} 참조를 그대로 보여주며, --expanded를 주면
환경 변수를 펼친 값(실제로 적용되는 값)을 보여줍니다.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "기본 설정 파일 생성",
	Long: `기본값으로 설정 파일을 만듭니다.

파일이 이미 있으면 실패하며, --force를 주면 기본값으로 덮어씁니다.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "설정 값 변경",
	Long: `설정 파일의 값 하나를 바꿉니다. 바꾼 결과가 유효하지 않으면 저장하지 않습니다.

키 목록은 'koimport config keys'로 확인할 수 있습니다.

예시:
  koimport config set default_provider openai
  koimport config set crypt.max_attempts 5
  koimport config set crypt.max_plaintext "256 MiB"`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "변경 가능한 설정 키 목록",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, key := range config.SettableKeys {
			fmt.Fprintln(cmd.OutOrStdout(), key)
		}
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "설정 파일 검사",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "설정 파일 경로 표시",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := newConfigLoader()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), loader.ConfigPath())
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "기존 설정 파일 덮어쓰기")
	configShowCmd.Flags().BoolVar(&configExpanded, "expanded", false, "환경 변수를 펼친 값 표시")

	configCmd.AddCommand(configShowCmd, configInitCmd, configSetCmd, configKeysCmd, configValidateCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func newConfigLoader() (*config.Loader, error) {
	loader, err := config.NewLoader()
	if err != nil {
		return nil, fmt.Errorf("설정 파일 위치를 알 수 없습니다: %w", err)
	}
	return loader, nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	loader, err := newConfigLoader()
	if err != nil {
		return err
	}
	// 펼친 값은 검증까지 거친다
	load := loader.LoadRaw
	if configExpanded {
		load = loader.Load
	}
	c, err := load()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	out := cmd.OutOrStdout()
	source := loader.ConfigPath()
	if !loader.Exists() {
		source += " (없음, 기본값)"
	}
	fmt.Fprintf(out, "# %s\n", source)

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("설정 출력 실패: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("설정 출력 실패: %w", err)
	}

	fmt.Fprintln(out)
	writeEnvTable(out, c)
	return nil
}

// writeEnvTable lists the environment variables koimport reads. Secrets are
// masked.
func writeEnvTable(out io.Writer, c *config.Config) {
	type envVar struct {
		key, desc string
		secret    bool
	}
	vars := []envVar{
		{config.ConfigPathEnv, "설정 파일 경로", false},
		{LogLevelEnv, "로그 레벨", false},
		{c.Crypt.PasswordEnv, "암호화 문서 패스워드", true},
	}
	for _, p := range providers {
		vars = append(vars, envVar{p.EnvKey, p.Description, p.Name != "ollama"})
	}

	fmt.Fprintln(out, "환경 변수:")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, v := range vars {
		value := os.Getenv(v.key)
		switch {
		case value == "":
			value = "(미설정)"
		case v.secret:
			value = maskAPIKey(value)
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", v.key, v.desc, value)
	}
	w.Flush()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	loader, err := newConfigLoader()
	if err != nil {
		return err
	}

	if configForce {
		err = loader.Save(config.DefaultConfig())
	} else {
		err = loader.Init()
	}
	if err != nil {
		if loader.Exists() && !configForce {
			return fmt.Errorf("설정 파일이 이미 있습니다: %s (덮어쓰려면 --force)", loader.ConfigPath())
		}
		return fmt.Errorf("설정 파일 생성 실패: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "설정 파일 생성됨: %s\n", loader.ConfigPath())
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	loader, err := newConfigLoader()
	if err != nil {
		return err
	}
	// ${VAR} 참조를 보존하기 위해 펼치지 않고 읽는다
	c, err := loader.LoadRaw()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	old := c.Get(key)
	if err := c.Set(key, value); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("변경 후 설정이 유효하지 않습니다: %w", err)
	}
	if err := loader.Save(c); err != nil {
		return fmt.Errorf("설정 저장 실패: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s → %s\n", key, old, value)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	loader, err := newConfigLoader()
	if err != nil {
		return err
	}
	if _, err := loader.Load(); err != nil {
		color.New(color.FgRed).Fprintf(cmd.OutOrStdout(), "✗ %s\n", loader.ConfigPath())
		return err
	}
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ %s\n", loader.ConfigPath())
	return nil
}

func maskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
