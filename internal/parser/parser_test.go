package parser

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected Format
	}{
		{
			name:     "wmf extension",
			path:     "clipart.wmf",
			expected: FormatWMF,
		},
		{
			name:     "WMF uppercase",
			path:     "CLIPART.WMF",
			expected: FormatWMF,
		},
		{
			name:     "kword crypt extension",
			path:     "letter.kwc",
			expected: FormatKWordCrypt,
		},
		{
			name:     "kspread crypt extension",
			path:     "budget.ksc",
			expected: FormatKSpreadCrypt,
		},
		{
			name:     "ole container",
			path:     "report.doc",
			expected: FormatOLE,
		},
		{
			name:     "unknown extension",
			path:     "document.docx",
			expected: FormatUnknown,
		},
		{
			name:     "no extension",
			path:     "document",
			expected: FormatUnknown,
		},
		{
			name:     "path with directory",
			path:     "/path/to/drawing.wmf",
			expected: FormatWMF,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectFormat(tc.path)
			if got != tc.expected {
				t.Errorf("DetectFormat(%q) = %v, want %v", tc.path, got, tc.expected)
			}
		})
	}
}

func TestFormat_String(t *testing.T) {
	tests := []struct {
		format   Format
		expected string
	}{
		{FormatWMF, "wmf"},
		{FormatKWordCrypt, "kword-crypt"},
		{FormatKSpreadCrypt, "kspread-crypt"},
		{FormatOLE, "ole"},
		{FormatUnknown, "unknown"},
		{Format(999), "unknown"},
	}

	for _, tc := range tests {
		got := tc.format.String()
		if got != tc.expected {
			t.Errorf("Format(%d).String() = %q, want %q", int(tc.format), got, tc.expected)
		}
	}
}

func TestFormat_Encrypted(t *testing.T) {
	if !FormatKWordCrypt.Encrypted() || !FormatKSpreadCrypt.Encrypted() {
		t.Error("expected crypt formats to be encrypted")
	}
	if FormatWMF.Encrypted() {
		t.Error("wmf is not encrypted")
	}
}

func TestDetectFormatFromReader(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected Format
	}{
		{
			name:     "placeable metafile",
			data:     []byte{0xD7, 0xCD, 0xC6, 0x9A, 0x00, 0x00, 0x00, 0x00},
			expected: FormatWMF,
		},
		{
			name:     "standard metafile",
			data:     []byte{0x01, 0x00, 0x09, 0x00, 0x00, 0x03, 0x00, 0x00},
			expected: FormatWMF,
		},
		{
			name:     "kword crypt",
			data:     []byte{0x1A, 'K', 'C', 0x01, 0x01, 0x00, 0x00, 0x00},
			expected: FormatKWordCrypt,
		},
		{
			name:     "kspread crypt",
			data:     []byte{0x1A, 'K', 'C', 0x02, 0x01, 0x00, 0x00, 0x00},
			expected: FormatKSpreadCrypt,
		},
		{
			name:     "crypt with unknown application",
			data:     []byte{0x1A, 'K', 'C', 0x07, 0x01, 0x00, 0x00, 0x00},
			expected: FormatUnknown,
		},
		{
			name:     "ole compound file",
			data:     []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1},
			expected: FormatOLE,
		},
		{
			name:     "unknown format",
			data:     []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07},
			expected: FormatUnknown,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reader := bytes.NewReader(tc.data)
			got, err := DetectFormatFromReader(reader)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("DetectFormatFromReader() = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestDetectFormatFromReader_ShortData(t *testing.T) {
	// Data shorter than header size
	shortData := []byte{0xD7, 0xCD}
	reader := bytes.NewReader(shortData)

	_, err := DetectFormatFromReader(reader)
	if err == nil {
		t.Error("expected error for short data")
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.DefaultDPI != 1440 {
		t.Errorf("expected DefaultDPI 1440, got %d", opts.DefaultDPI)
	}
	if opts.StreamName != "" {
		t.Error("expected StreamName to be empty by default")
	}
}

func TestError_Is(t *testing.T) {
	cause := errors.New("short read")
	err := fmt.Errorf("decode: %w", NewError(KindReadShortfall, "read length", cause))

	if !errors.Is(err, KindReadShortfall) {
		t.Error("expected errors.Is to match KindReadShortfall")
	}
	if errors.Is(err, KindIntegrity) {
		t.Error("did not expect errors.Is to match KindIntegrity")
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
	if KindOf(err) != KindReadShortfall {
		t.Errorf("KindOf() = %v, want %v", KindOf(err), KindReadShortfall)
	}
	if KindOf(cause) != KindUnknown {
		t.Errorf("KindOf(plain) = %v, want unknown", KindOf(cause))
	}
}

func TestError_Message(t *testing.T) {
	e := NewError(KindIntegrity, "verify digest", nil)
	if e.Error() != "verify digest: integrity" {
		t.Errorf("unexpected message %q", e.Error())
	}
	e = Errorf(KindWrite, "write", "disk %s", "full")
	if e.Error() != "write: write: disk full" {
		t.Errorf("unexpected message %q", e.Error())
	}
}
