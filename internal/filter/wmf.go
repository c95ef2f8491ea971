package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/go-metrics"
	"gopkg.in/yaml.v3"

	"github.com/roboco-io/koimport/internal/config"
	"github.com/roboco-io/koimport/internal/ir"
	"github.com/roboco-io/koimport/internal/parser"
	"github.com/roboco-io/koimport/internal/parser/wmf"
)

// WMF imports metafiles, directly or from an OLE2 container, and writes
// the document as JSON or YAML.
type WMF struct {
	opts   parser.Options
	output string
}

// NewWMF creates the metafile filter.
func NewWMF(cfg *config.Config) *WMF {
	opts := parser.DefaultOptions()
	if cfg.WMF.DefaultDPI > 0 {
		opts.DefaultDPI = cfg.WMF.DefaultDPI
	}
	opts.StreamName = cfg.WMF.StreamName
	return &WMF{opts: opts, output: cfg.WMF.Output}
}

func (f *WMF) Name() string { return "wmf" }

// Import parses the metafile at path.
func (f *WMF) Import(path string) (*ir.Document, error) {
	p, err := wmf.New(path, f.opts)
	if err != nil {
		return nil, err
	}
	defer p.Close()
	return p.Parse()
}

func (f *WMF) Convert(ctx context.Context, job *Job) (res *Result, err error) {
	start := time.Now()
	labels := filterLabels(f.Name())
	metrics.IncrCounterWithLabels(mKeyConvertTotal, 1, labels)
	defer func() {
		metrics.MeasureSinceWithLabels(mKeyConvertDurations, start, labels)
		if err != nil {
			metrics.IncrCounterWithLabels(mKeyConvertErrorsTotal, 1, errorLabels(f.Name(), err))
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := f.Import(job.Input)
	if err != nil {
		return nil, fmt.Errorf("문서 파싱 실패: %w", err)
	}

	format := job.Options.OutputFormat
	if format == "" {
		format = f.output
	}
	data, err := Marshal(doc, format)
	if err != nil {
		return nil, err
	}

	n, err := writeAll(job, data)
	if err != nil {
		return nil, err
	}
	metrics.IncrCounterWithLabels(mKeyOutputBytes, float32(n), labels)

	slog.Debug("[filter] metafile converted",
		"input", job.Input,
		"output", job.Output,
		"shapes", len(doc.Shapes()),
		"images", doc.Images().Len())

	return &Result{
		Input:    job.Input,
		Output:   job.Output,
		Format:   parser.FormatWMF,
		Bytes:    n,
		Shapes:   len(doc.Shapes()),
		Images:   doc.Images().Len(),
		Attempts: 1,
		Duration: time.Since(start),
	}, nil
}

// Marshal serializes doc as "json" (the default) or "yaml".
func Marshal(doc *ir.Document, format string) ([]byte, error) {
	switch format {
	case "", "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("JSON 변환 실패: %w", err)
		}
		return append(data, '\n'), nil
	case "yaml":
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("YAML 변환 실패: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("지원하지 않는 출력 형식입니다: %s", format)
	}
}
