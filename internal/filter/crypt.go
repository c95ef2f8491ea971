package filter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/hashicorp/go-metrics"

	"github.com/roboco-io/koimport/internal/config"
	"github.com/roboco-io/koimport/internal/parser"
	"github.com/roboco-io/koimport/internal/parser/kocrypt"
	"github.com/roboco-io/koimport/internal/prompt"
)

// OutcomeKind is the result class of a single decryption attempt.
type OutcomeKind int

const (
	Success OutcomeKind = iota
	Retry
	Cancelled
	Fatal
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case Retry:
		return "retry"
	case Cancelled:
		return "cancelled"
	default:
		return "fatal"
	}
}

// Outcome is returned by one decryption attempt.
type Outcome struct {
	Kind  OutcomeKind
	Err   error
	Bytes int64
	App   kocrypt.App
}

// Crypt decrypts KOffice encrypted documents, asking for the passphrase
// again after a wrong one.
type Crypt struct {
	maxAttempts  int
	maxPlaintext int64

	// newDecoder is replaced in tests.
	newDecoder func() *kocrypt.Decoder
}

// NewCrypt creates the encrypted document filter.
func NewCrypt(cfg *config.Config) *Crypt {
	limit, err := cfg.MaxPlaintextBytes()
	if err != nil {
		slog.Warn("[filter] ignoring crypt.max_plaintext", "error", err)
		limit = 0
	}
	return &Crypt{
		maxAttempts:  max(cfg.Crypt.MaxAttempts, 1),
		maxPlaintext: limit,
		newDecoder:   func() *kocrypt.Decoder { return kocrypt.NewDecoder(kocrypt.AppAny) },
	}
}

func (f *Crypt) Name() string { return "kocrypt" }

func (f *Crypt) Convert(ctx context.Context, job *Job) (res *Result, err error) {
	start := time.Now()
	labels := filterLabels(f.Name())
	metrics.IncrCounterWithLabels(mKeyConvertTotal, 1, labels)
	defer func() {
		metrics.MeasureSinceWithLabels(mKeyConvertDurations, start, labels)
		if err != nil {
			metrics.IncrCounterWithLabels(mKeyConvertErrorsTotal, 1, errorLabels(f.Name(), err))
		}
	}()

	if job.Prompter == nil {
		return nil, fmt.Errorf("패스워드 입력 방법이 없습니다: %s", job.Input)
	}

	// 마지막으로 거부된 시도의 오류
	var rejected error
	for attempt := 1; ; attempt++ {
		metrics.IncrCounterWithLabels(mKeyAttemptsTotal, 1, labels)
		out := f.Attempt(ctx, job, attempt)

		switch out.Kind {
		case Success:
			metrics.IncrCounterWithLabels(mKeyOutputBytes, float32(out.Bytes), labels)
			format := parser.FormatKWordCrypt
			if out.App == kocrypt.AppKSpread {
				format = parser.FormatKSpreadCrypt
			}
			return &Result{
				Input:    job.Input,
				Output:   job.Output,
				Format:   format,
				Bytes:    out.Bytes,
				Attempts: attempt,
				Duration: time.Since(start),
			}, nil

		case Cancelled:
			metrics.IncrCounterWithLabels(mKeyCancelledTotal, 1, labels)
			return nil, parser.NewError(parser.KindCancelled, "prompt passphrase", out.Err)

		case Retry:
			if attempt >= f.maxAttempts {
				return nil, wrongPassphrase(attempt, out.Err)
			}
			rejected = out.Err
			slog.Info("[filter] passphrase rejected, asking again",
				"input", job.Input,
				"attempt", attempt,
				"error", out.Err)

		default:
			// 비대화형 입력이 더 줄 패스워드가 없으면 거부된 시도가 원인이다
			if rejected != nil && errors.Is(out.Err, prompt.ErrExhausted) {
				return nil, wrongPassphrase(attempt-1, rejected)
			}
			return nil, out.Err
		}
	}
}

func wrongPassphrase(attempts int, err error) error {
	return fmt.Errorf("패스워드가 올바르지 않거나 파일이 손상되었습니다 (%d회 시도): %w", attempts, err)
}

// Attempt runs a single decryption with a freshly prompted passphrase. The
// output is removed unless the attempt succeeds, including after a digest
// mismatch.
func (f *Crypt) Attempt(ctx context.Context, job *Job, attempt int) Outcome {
	in, err := os.Open(job.Input)
	if err != nil {
		return Outcome{Kind: Fatal, Err: fmt.Errorf("파일을 열 수 없습니다: %w", err)}
	}
	defer in.Close()

	h, err := kocrypt.ReadHeader(in)
	if err != nil {
		return Outcome{Kind: Fatal, Err: err}
	}
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return Outcome{Kind: Fatal, Err: fmt.Errorf("failed to rewind input: %w", err)}
	}

	// 헤더가 올바른 파일에만 패스워드를 묻는다
	pass, err := job.Prompter.Passphrase(ctx, attempt)
	if err != nil {
		if errors.Is(err, prompt.ErrCancelled) || errors.Is(err, context.Canceled) {
			return Outcome{Kind: Cancelled, Err: err}
		}
		return Outcome{Kind: Fatal, Err: err}
	}

	out, err := openOutput(job)
	if err != nil {
		return Outcome{Kind: Fatal, Err: err}
	}

	d := f.newDecoder()
	if f.maxPlaintext > 0 {
		d.MaxPlaintext = f.maxPlaintext
	}
	n, err := d.Decode(in, out, pass)
	if err != nil {
		out.discard()
		return Outcome{Kind: classify(err), Err: err, App: h.App}
	}
	if err := out.commit(); err != nil {
		return Outcome{Kind: Fatal, Err: err, App: h.App}
	}
	return Outcome{Kind: Success, Bytes: n, App: h.App}
}

// classify decides whether a decode failure deserves another passphrase.
func classify(err error) OutcomeKind {
	switch parser.KindOf(err) {
	case parser.KindReadShortfall, parser.KindIntegrity:
		return Retry
	case parser.KindCancelled:
		return Cancelled
	default:
		return Fatal
	}
}
