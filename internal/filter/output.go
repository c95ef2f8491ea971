package filter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roboco-io/koimport/internal/parser"
)

// output is a conversion destination that is either committed or
// discarded. Results for stdout are buffered until commit.
type output struct {
	path   string
	file   *os.File
	buf    *bytes.Buffer
	stdout io.Writer
}

func openOutput(job *Job) (*output, error) {
	if job.Output == StdoutPath {
		w := job.Stdout
		if w == nil {
			w = os.Stdout
		}
		return &output{path: StdoutPath, buf: new(bytes.Buffer), stdout: w}, nil
	}

	if dir := filepath.Dir(job.Output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, parser.NewError(parser.KindWrite, "create output", err)
		}
	}
	f, err := os.OpenFile(job.Output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, parser.NewError(parser.KindWrite, "create output", err)
	}
	return &output{path: job.Output, file: f}, nil
}

func (o *output) Write(p []byte) (int, error) {
	if o.buf != nil {
		return o.buf.Write(p)
	}
	return o.file.Write(p)
}

// commit closes the file or copies the buffered result to stdout.
func (o *output) commit() error {
	if o.buf != nil {
		if _, err := o.buf.WriteTo(o.stdout); err != nil {
			return parser.NewError(parser.KindWrite, "write output", err)
		}
		return nil
	}
	if err := o.file.Close(); err != nil {
		o.remove()
		return parser.NewError(parser.KindWrite, "close output", err)
	}
	return nil
}

// discard drops everything written so far.
func (o *output) discard() {
	if o.buf != nil {
		o.buf.Reset()
		return
	}
	_ = o.file.Close()
	o.remove()
}

func (o *output) remove() {
	if err := os.Remove(o.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("[filter] failed to remove partial output", "path", o.path, "error", err)
	}
}

// writeAll writes data to a fresh output, discarding it on failure.
func writeAll(job *Job, data []byte) (int64, error) {
	out, err := openOutput(job)
	if err != nil {
		return 0, err
	}
	n, err := out.Write(data)
	if err != nil {
		out.discard()
		return 0, parser.NewError(parser.KindWrite, "write output", fmt.Errorf("%s: %w", job.Output, err))
	}
	if err := out.commit(); err != nil {
		return 0, err
	}
	return int64(n), nil
}
