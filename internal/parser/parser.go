// Package parser provides interfaces and shared types for the KOffice import
// filters.
package parser

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/roboco-io/koimport/internal/ir"
)

// Parser is the interface for drawing parsers.
type Parser interface {
	// Parse reads the input and returns an IR representation.
	Parse() (*ir.Document, error)

	// Close releases any resources held by the parser.
	Close() error
}

// Format represents an input format.
type Format int

const (
	FormatUnknown Format = iota
	FormatWMF
	FormatKWordCrypt   // encrypted KWord document
	FormatKSpreadCrypt // encrypted KSpread document
	FormatOLE          // OLE2 compound file carrying an embedded metafile
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatWMF:
		return "wmf"
	case FormatKWordCrypt:
		return "kword-crypt"
	case FormatKSpreadCrypt:
		return "kspread-crypt"
	case FormatOLE:
		return "ole"
	default:
		return "unknown"
	}
}

// Encrypted reports whether the format is a KOffice encrypted container.
func (f Format) Encrypted() bool {
	return f == FormatKWordCrypt || f == FormatKSpreadCrypt
}

// DetectFormat detects the input format from the file path.
func DetectFormat(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wmf", ".apm":
		return FormatWMF
	case ".kwc":
		return FormatKWordCrypt
	case ".ksc":
		return FormatKSpreadCrypt
	case ".ole", ".doc", ".xls", ".ppt":
		return FormatOLE
	default:
		return FormatUnknown
	}
}

var (
	placeableMagic = []byte{0xD7, 0xCD, 0xC6, 0x9A}
	cryptMagic     = []byte{0x1A, 'K', 'C'}
	oleMagic       = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

// DetectFormatFromReader detects the format by reading magic bytes.
func DetectFormatFromReader(r io.ReaderAt) (Format, error) {
	// Read first 8 bytes for magic number detection
	buf := make([]byte, 8)
	n, err := r.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return FormatUnknown, fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if n < 4 {
		return FormatUnknown, fmt.Errorf("file too small to detect format")
	}

	if bytes.Equal(buf[:4], placeableMagic) {
		return FormatWMF, nil
	}

	// KOffice encrypted container: magic + application id
	if bytes.Equal(buf[:3], cryptMagic) {
		switch buf[3] {
		case 0x01:
			return FormatKWordCrypt, nil
		case 0x02:
			return FormatKSpreadCrypt, nil
		}
		return FormatUnknown, nil
	}

	if bytes.Equal(buf[:4], oleMagic) {
		return FormatOLE, nil
	}

	// Standard metafile header: type (1 = memory, 2 = disk), header size 9 words
	if (buf[0] == 1 || buf[0] == 2) && buf[1] == 0 && buf[2] == 9 && buf[3] == 0 {
		return FormatWMF, nil
	}

	return FormatUnknown, nil
}

// Options contains parser configuration options.
type Options struct {
	DefaultDPI int    // resolution used when a metafile carries none
	StreamName string // OLE2 stream to import; empty selects the first metafile
}

// DefaultOptions returns default parser options.
func DefaultOptions() Options {
	return Options{
		DefaultDPI: 1440,
		StreamName: "",
	}
}
