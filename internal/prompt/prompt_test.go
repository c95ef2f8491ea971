package prompt

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStatic(t *testing.T) {
	ctx := context.Background()
	s := NewStatic("first", "second")

	for i, want := range []string{"first", "second"} {
		got, err := s.Passphrase(ctx, i+1)
		if err != nil {
			t.Fatalf("Passphrase failed: %v", err)
		}
		if got != want {
			t.Errorf("Expected %q, got %q", want, got)
		}
	}

	if _, err := s.Passphrase(ctx, 3); !errors.Is(err, ErrCancelled) {
		t.Errorf("Expected ErrCancelled, got %v", err)
	}
}

func TestStatic_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewStatic("x").Passphrase(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("KOIMPORT_TEST_PASSWORD", "from-env")
	e := Env{Name: "KOIMPORT_TEST_PASSWORD"}

	got, err := e.Passphrase(context.Background(), 1)
	if err != nil || got != "from-env" {
		t.Errorf("Expected from-env, got %q, %v", got, err)
	}
	_, err = e.Passphrase(context.Background(), 2)
	if !errors.Is(err, ErrExhausted) || errors.Is(err, ErrCancelled) {
		t.Errorf("Expected retry to be exhausted, not cancelled, got %v", err)
	}

	missing := Env{Name: "KOIMPORT_TEST_UNSET_VARIABLE"}
	if _, err := missing.Passphrase(context.Background(), 1); !errors.Is(err, ErrCancelled) {
		t.Errorf("Expected ErrCancelled for unset variable, got %v", err)
	}
}

func TestTerminal_NonInteractive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input")
	if err := os.WriteFile(path, []byte("piped secret\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var out bytes.Buffer
	p := &Terminal{In: f, Out: &out, Prompt: "Passphrase: "}
	if p.IsTerminal() {
		t.Skip("input is a terminal")
	}

	got, err := p.Passphrase(context.Background(), 1)
	if err != nil {
		t.Fatalf("Passphrase failed: %v", err)
	}
	if got != "piped secret" {
		t.Errorf("Expected %q, got %q", "piped secret", got)
	}
	if out.String() != "Passphrase: " {
		t.Errorf("Unexpected prompt output %q", out.String())
	}

	// 입력이 끝나면 취소
	if _, err := p.Passphrase(context.Background(), 2); !errors.Is(err, ErrCancelled) {
		t.Errorf("Expected ErrCancelled at end of input, got %v", err)
	}
}
