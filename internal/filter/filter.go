// Package filter runs the import filters on files. A Registry maps input
// formats to filters; callers build one with NewDefaultRegistry and pass it
// where it is needed.
package filter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/roboco-io/koimport/internal/config"
	"github.com/roboco-io/koimport/internal/parser"
	"github.com/roboco-io/koimport/internal/prompt"
)

// StdoutPath as Job.Output writes the result to Job.Stdout.
const StdoutPath = "-"

// Filter converts one input file.
type Filter interface {
	// Name identifies the filter in logs and listings.
	Name() string

	// Convert runs the filter for job.
	Convert(ctx context.Context, job *Job) (*Result, error)
}

// Job describes a single conversion.
type Job struct {
	Input    string
	Output   string // StdoutPath 또는 파일 경로
	Stdout   io.Writer
	Prompter prompt.Prompter
	Options  Options
}

// Options override filter settings for one job.
type Options struct {
	OutputFormat string // json 또는 yaml, 비어 있으면 설정값
}

// Result summarizes a finished conversion.
type Result struct {
	Input    string
	Output   string
	Format   parser.Format
	Bytes    int64
	Shapes   int
	Images   int
	Attempts int
	Duration time.Duration
}

// Factory creates a filter from the configuration.
type Factory func(cfg *config.Config) Filter

// Registry maps formats to filter factories.
type Registry struct {
	mu        sync.RWMutex
	cfg       *config.Config
	factories map[parser.Format]Factory
}

// NewRegistry creates an empty registry. A nil cfg uses the defaults.
func NewRegistry(cfg *config.Config) *Registry {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Registry{
		cfg:       cfg,
		factories: make(map[parser.Format]Factory),
	}
}

// NewDefaultRegistry creates a registry with the metafile and encrypted
// document filters.
func NewDefaultRegistry(cfg *config.Config) *Registry {
	r := NewRegistry(cfg)
	wmf := func(cfg *config.Config) Filter { return NewWMF(cfg) }
	r.Register(parser.FormatWMF, wmf)
	r.Register(parser.FormatOLE, wmf)
	r.Register(parser.FormatKWordCrypt, func(cfg *config.Config) Filter { return NewCrypt(cfg) })
	r.Register(parser.FormatKSpreadCrypt, func(cfg *config.Config) Filter { return NewCrypt(cfg) })
	return r
}

// Register sets the factory for format, replacing any previous one.
func (r *Registry) Register(format parser.Format, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[format] = f
}

// Get creates the filter for format.
func (r *Registry) Get(format parser.Format) (Filter, error) {
	r.mu.RLock()
	f, ok := r.factories[format]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("지원하지 않는 형식입니다: %s", format)
	}
	return f(r.cfg), nil
}

// Formats returns the registered formats in ascending order.
func (r *Registry) Formats() []parser.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]parser.Format, 0, len(r.factories))
	for f := range r.factories {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// Convert detects the format of job.Input and runs the matching filter.
func (r *Registry) Convert(ctx context.Context, job *Job) (*Result, error) {
	format, err := Detect(job.Input)
	if err != nil {
		return nil, err
	}
	f, err := r.Get(format)
	if err != nil {
		return nil, err
	}
	if job.Output == "" {
		job.Output = DefaultOutput(job.Input, format, r.outputFormat(job))
	}
	return f.Convert(ctx, job)
}

func (r *Registry) outputFormat(job *Job) string {
	if job.Options.OutputFormat != "" {
		return job.Options.OutputFormat
	}
	return r.cfg.WMF.Output
}

// Detect returns the format of the file at path. Magic bytes win over the
// file extension.
func Detect(path string) (parser.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return parser.FormatUnknown, fmt.Errorf("파일을 열 수 없습니다: %w", err)
	}
	defer f.Close()

	format, err := parser.DetectFormatFromReader(f)
	if err == nil && format != parser.FormatUnknown {
		return format, nil
	}
	if format = parser.DetectFormat(path); format != parser.FormatUnknown {
		return format, nil
	}
	return parser.FormatUnknown, fmt.Errorf("지원하지 않는 파일 형식입니다: %s", filepath.Base(path))
}

// DefaultOutput derives the output path for input. Metafiles get the
// serialization extension, encrypted documents their native one.
func DefaultOutput(input string, format parser.Format, outputFormat string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	switch format {
	case parser.FormatKWordCrypt:
		return base + ".kwd"
	case parser.FormatKSpreadCrypt:
		return base + ".ksp"
	default:
		if outputFormat == "yaml" {
			return base + ".yaml"
		}
		return base + ".json"
	}
}
