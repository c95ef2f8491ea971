// Package cli implements the koimport command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roboco-io/koimport/internal/config"
	"github.com/roboco-io/koimport/internal/telemetry"
)

// LogLevelEnv overrides log.level from the configuration file.
const LogLevelEnv = "KOIMPORT_LOG_LEVEL"

var version = "dev"

var (
	rootVerbose bool
	rootStats   bool

	// cfg is loaded before every command runs.
	cfg   *config.Config
	stats *telemetry.Stats
)

var rootCmd = &cobra.Command{
	Use:   "koimport [file]",
	Short: "KOffice 레거시 가져오기 필터",
	Long: `koimport는 KOffice 시절의 입력 형식을 변환합니다.

  - WMF 메타파일 (표준, placeable, OLE2 컨테이너 내장) → JSON/YAML 도형 문서
  - KWord/KSpread 암호화 문서 → 복호화된 원본

파일만 지정하면 convert 명령과 같습니다.

예시:
  koimport drawing.wmf
  koimport convert *.wmf --format yaml
  koimport convert secret.kwc -o secret.kwd
  koimport inspect drawing.wmf --records`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if stats == nil {
			return nil
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "\n통계:")
		return stats.Dump(cmd.ErrOrStderr())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runConvert(cmd, args)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "버전 정보 표시",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "koimport %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "상세 로그 출력")
	rootCmd.PersistentFlags().BoolVar(&rootStats, "stats", false, "종료 시 처리 통계 출력")
	addConvertFlags(rootCmd)

	rootCmd.AddCommand(versionCmd)
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute runs the root command. An interrupt cancels running conversions.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, args []string) error {
	loader, err := config.NewLoader()
	if err != nil {
		return fmt.Errorf("설정 로더 초기화 실패: %w", err)
	}
	if cfg, err = loader.Load(); err != nil {
		// 깨진 설정 파일도 config 명령으로 고칠 수 있어야 한다
		if cmd.Parent() != configCmd {
			return fmt.Errorf("설정 로드 실패: %w", err)
		}
		cfg = config.DefaultConfig()
	}

	setupLogging(cmd)

	if rootStats {
		if stats, err = telemetry.Enable(); err != nil {
			return err
		}
	}
	return nil
}

func setupLogging(cmd *cobra.Command) {
	level := parseLevel(config.GetEnvOrDefault(LogLevelEnv, cfg.Log.Level))
	if rootVerbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
