package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roboco-io/koimport/internal/config"
	"github.com/roboco-io/koimport/internal/filter"
	"github.com/roboco-io/koimport/internal/parser"
	"github.com/roboco-io/koimport/internal/prompt"
)

var (
	convertOutput      string
	convertFormat      string
	convertPasswordEnv string
	convertJobs        int
	convertQuiet       bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>...",
	Short: "WMF 메타파일과 암호화 문서 변환",
	Long: `입력 파일의 형식을 감지하여 변환합니다.

  - WMF 메타파일, OLE2 내장 메타파일: 도형 문서를 JSON 또는 YAML로 출력
  - KWord/KSpread 암호화 문서: 패스워드를 물어 원본 문서로 복호화

출력 경로를 지정하지 않으면 입력 파일 옆에 생성합니다.
입력이 여러 개면 -o는 출력 디렉토리입니다. -o - 는 표준 출력입니다.

패스워드가 틀리면 crypt.max_attempts 회까지 다시 묻습니다.
빈 패스워드를 입력하면 해당 파일의 변환을 취소합니다.

환경 변수:
  KOIMPORT_PASSWORD     암호화 문서 패스워드 (--password-env로 변경)

예시:
  koimport convert drawing.wmf
  koimport convert drawing.wmf --format yaml -o -
  koimport convert *.wmf -o out/ --jobs 4
  koimport convert secret.kwc -o secret.kwd`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	addConvertFlags(convertCmd)
	rootCmd.AddCommand(convertCmd)
}

func addConvertFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&convertOutput, "output", "o", "", "출력 파일 또는 디렉토리 (- 는 stdout)")
	cmd.Flags().StringVarP(&convertFormat, "format", "f", "", "메타파일 출력 형식 (json, yaml)")
	cmd.Flags().StringVar(&convertPasswordEnv, "password-env", "", "패스워드를 읽을 환경 변수")
	cmd.Flags().IntVarP(&convertJobs, "jobs", "j", 1, "동시에 변환할 파일 수")
	cmd.Flags().BoolVarP(&convertQuiet, "quiet", "q", false, "조용한 모드")
}

func runConvert(cmd *cobra.Command, args []string) error {
	if convertFormat != "" && !contains(config.ValidOutputs, convertFormat) {
		return fmt.Errorf("지원하지 않는 출력 형식: %s (json, yaml)", convertFormat)
	}
	if len(args) > 1 && convertOutput == filter.StdoutPath {
		return fmt.Errorf("여러 파일을 표준 출력으로 변환할 수 없습니다")
	}

	registry := filter.NewDefaultRegistry(cfg)
	rep := &reporter{w: cmd.ErrOrStderr(), quiet: convertQuiet}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(convertJobs, 1))

	// 출력 경로 → 그 경로를 먼저 차지한 입력
	claimed := make(map[string]string, len(args))
	for _, input := range args {
		job, err := newJob(cmd, input, len(args) > 1)
		if err != nil {
			rep.fail(input, err)
			continue
		}
		if len(args) > 1 {
			target, err := targetPath(job)
			if err != nil {
				rep.fail(input, err)
				continue
			}
			if other, ok := claimed[target]; ok {
				rep.fail(input, fmt.Errorf("출력 경로 %s 를 %s 와 함께 쓸 수 없습니다", target, other))
				continue
			}
			claimed[target] = input
		}
		g.Go(func() error {
			res, err := registry.Convert(ctx, job)
			rep.report(input, res, err)
			return nil
		})
	}
	_ = g.Wait()

	return rep.err(len(args))
}

func newJob(cmd *cobra.Command, input string, multi bool) (*filter.Job, error) {
	if _, err := os.Stat(input); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("파일을 찾을 수 없습니다: %s", input)
		}
		return nil, err
	}

	job := &filter.Job{
		Input:    input,
		Output:   convertOutput,
		Stdout:   cmd.OutOrStdout(),
		Prompter: newPrompter(input),
		Options:  filter.Options{OutputFormat: convertFormat},
	}

	// 여러 입력이면 -o는 디렉토리
	if multi && convertOutput != "" {
		def, err := defaultOutput(input)
		if err != nil {
			return nil, err
		}
		job.Output = filepath.Join(convertOutput, filepath.Base(def))
	}
	return job, nil
}

func defaultOutput(input string) (string, error) {
	format, err := filter.Detect(input)
	if err != nil {
		return "", err
	}
	outFormat := convertFormat
	if outFormat == "" {
		outFormat = cfg.WMF.Output
	}
	return filter.DefaultOutput(input, format, outFormat), nil
}

// targetPath returns the cleaned absolute file a job writes.
func targetPath(job *filter.Job) (string, error) {
	out := job.Output
	if out == "" {
		def, err := defaultOutput(job.Input)
		if err != nil {
			return "", err
		}
		out = def
	}
	return filepath.Abs(out)
}

// newPrompter picks the passphrase source. An explicit --password-env or a
// set variable wins over the terminal.
func newPrompter(input string) prompt.Prompter {
	name := convertPasswordEnv
	if name == "" {
		name = cfg.Crypt.PasswordEnv
	}
	if convertPasswordEnv != "" || os.Getenv(name) != "" {
		return prompt.Env{Name: name}
	}

	t := prompt.NewTerminal(fmt.Sprintf("%s 패스워드: ", filepath.Base(input)))
	if t.IsTerminal() {
		return t
	}
	return prompt.Env{Name: name}
}

// reporter prints one status line per input.
type reporter struct {
	mu     sync.Mutex
	w      io.Writer
	quiet  bool
	failed []error
}

var (
	okColor     = color.New(color.FgGreen)
	failColor   = color.New(color.FgRed)
	cancelColor = color.New(color.FgYellow)
)

func (r *reporter) report(input string, res *filter.Result, err error) {
	switch {
	case err == nil:
		r.ok(res)
	case parser.KindOf(err) == parser.KindCancelled || errors.Is(err, context.Canceled):
		r.cancelled(input)
	default:
		r.fail(input, err)
	}
}

func (r *reporter) ok(res *filter.Result) {
	if r.quiet {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := res.Output
	if out == filter.StdoutPath {
		out = "stdout"
	}
	detail := humanize.Bytes(uint64(res.Bytes))
	if res.Format.Encrypted() {
		if res.Attempts > 1 {
			detail += fmt.Sprintf(", %d회 시도", res.Attempts)
		}
	} else {
		detail += fmt.Sprintf(", 도형 %d개", res.Shapes)
		if res.Images > 0 {
			detail += fmt.Sprintf(", 이미지 %d개", res.Images)
		}
	}
	okColor.Fprint(r.w, "✓ ")
	fmt.Fprintf(r.w, "%s → %s (%s, %s)\n", res.Input, out, detail, res.Duration.Round(time.Millisecond))
}

func (r *reporter) cancelled(input string) {
	if r.quiet {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cancelColor.Fprintf(r.w, "- %s: 취소됨\n", input)
}

func (r *reporter) fail(input string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, err)
	failColor.Fprint(r.w, "✗ ")
	fmt.Fprintf(r.w, "%s: %v\n", input, err)
}

// err returns nil when every input was converted or cancelled.
func (r *reporter) err(total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.failed) == 0 {
		return nil
	}
	return fmt.Errorf("%d개 중 %d개 파일 변환 실패", total, len(r.failed))
}
