package wmf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roboco-io/koimport/internal/ir"
	"github.com/roboco-io/koimport/internal/parser"
	"github.com/roboco-io/koimport/internal/parser/ole"
)

// Parser imports a metafile into an IR document.
type Parser struct {
	path   string
	reader *Reader
}

// New creates a parser for the metafile at path. OLE2 containers are
// searched for an embedded metafile stream.
func New(path string, opts parser.Options) (*Parser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("WMF 파일을 열 수 없습니다: %w", err)
	}

	format, err := parser.DetectFormatFromReader(bytes.NewReader(data))
	if err == nil && format == parser.FormatOLE {
		c, err := ole.New(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		if data, err = c.ReadStream(opts.StreamName); err != nil {
			return nil, fmt.Errorf("메타파일 스트림을 찾을 수 없습니다: %w", err)
		}
	}

	p, err := NewFromBytes(data, opts)
	if err != nil {
		return nil, err
	}
	p.path = path
	return p, nil
}

// NewFromBytes creates a parser for an in-memory metafile.
func NewFromBytes(data []byte, opts parser.Options) (*Parser, error) {
	r, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("WMF 헤더 파싱 실패: %w", err)
	}
	r.SetDefaultDPI(opts.DefaultDPI)
	return &Parser{reader: r}, nil
}

// Parse implements the Parser interface.
func (p *Parser) Parse() (*ir.Document, error) {
	doc := ir.NewDocument()
	doc.Metadata = p.buildMetadata()

	if err := NewImporter(p.reader).Play(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Close implements the Parser interface.
func (p *Parser) Close() error {
	return nil
}

// Reader returns the underlying record reader.
func (p *Parser) Reader() *Reader {
	return p.reader
}

func (p *Parser) buildMetadata() ir.Metadata {
	m := ir.Metadata{Creator: "koimport"}
	if p.path != "" {
		m.Source = filepath.Base(p.path)
		m.Title = strings.TrimSuffix(m.Source, filepath.Ext(m.Source))
	}
	kind := "standard"
	if p.reader.IsPlaceable() {
		kind = "placeable"
	}
	bbox := p.reader.BoundingBox()
	m.Description = fmt.Sprintf("%s metafile, %dx%d units, %d dpi", kind, bbox.Dx(), bbox.Dy(), p.reader.DPI())
	return m
}

var _ parser.Parser = (*Parser)(nil)
