package ole

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestIsMetafile(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"standard", []byte{0x01, 0x00, 0x09, 0x00, 0x00, 0x03}, true},
		{"disk", []byte{0x02, 0x00, 0x09, 0x00, 0x00, 0x03}, true},
		{"placeable", []byte{0xD7, 0xCD, 0xC6, 0x9A, 0x00, 0x00}, true},
		{"encrypted", []byte{0x1A, 'K', 'C', 0x01, 0x01}, false},
		{"text", []byte("Root Entry"), false},
		{"short", []byte{0x01}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isMetafile(tt.data); got != tt.want {
				t.Errorf("isMetafile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew_NotCompound(t *testing.T) {
	if _, err := New(bytes.NewReader(bytes.Repeat([]byte{0x42}, 1024))); err == nil {
		t.Error("expected error for non-compound data")
	}
}

func TestOpen_Missing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.ole")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := ReadStream(filepath.Join(t.TempDir(), "missing.ole"), ""); err == nil {
		t.Error("expected error for missing file")
	}
}
