// Package prompt obtains passphrases for encrypted documents.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// ErrCancelled is returned when the user declines to enter a passphrase.
var ErrCancelled = errors.New("passphrase entry cancelled")

// ErrExhausted is returned by a non-interactive source that has no further
// passphrase to offer after a rejected one.
var ErrExhausted = errors.New("no further passphrase")

// Prompter supplies passphrases. attempt starts at 1 and grows with each
// retry after a wrong passphrase.
type Prompter interface {
	Passphrase(ctx context.Context, attempt int) (string, error)
}

// ttyMu serializes terminal prompts of concurrent conversions.
var ttyMu sync.Mutex

// Terminal reads a passphrase from a terminal without echo. An empty line
// cancels.
type Terminal struct {
	In     *os.File
	Out    io.Writer
	Prompt string
}

// NewTerminal creates a prompter on stdin/stderr.
func NewTerminal(prompt string) *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stderr, Prompt: prompt}
}

// IsTerminal reports whether the prompter reads from an interactive terminal.
func (t *Terminal) IsTerminal() bool {
	return term.IsTerminal(int(t.In.Fd()))
}

func (t *Terminal) Passphrase(ctx context.Context, attempt int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ttyMu.Lock()
	defer ttyMu.Unlock()

	if attempt > 1 {
		fmt.Fprintln(t.Out, "패스워드가 올바르지 않거나 파일이 손상되었습니다.")
	}
	fmt.Fprint(t.Out, t.Prompt)

	var line string
	if t.IsTerminal() {
		b, err := term.ReadPassword(int(t.In.Fd()))
		fmt.Fprintln(t.Out)
		if err != nil {
			return "", fmt.Errorf("failed to read passphrase: %w", err)
		}
		line = string(b)
	} else {
		s, err := bufio.NewReader(t.In).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("failed to read passphrase: %w", err)
		}
		line = strings.TrimRight(s, "\r\n")
	}

	if line == "" {
		return "", ErrCancelled
	}
	return line, nil
}

// Static returns the given passphrases in order and cancels when they run
// out.
type Static struct {
	mu      sync.Mutex
	entries []string
}

// NewStatic creates a prompter over a fixed list.
func NewStatic(passphrases ...string) *Static {
	return &Static{entries: passphrases}
}

func (s *Static) Passphrase(ctx context.Context, attempt int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return "", ErrCancelled
	}
	p := s.entries[0]
	s.entries = s.entries[1:]
	return p, nil
}

// Env reads a passphrase from an environment variable. The variable is
// only offered once; a retry returns ErrExhausted.
type Env struct {
	Name string
}

func (e Env) Passphrase(ctx context.Context, attempt int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if attempt > 1 {
		return "", fmt.Errorf("%w: %s was rejected", ErrExhausted, e.Name)
	}
	v, ok := os.LookupEnv(e.Name)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s is not set", ErrCancelled, e.Name)
	}
	return v, nil
}
