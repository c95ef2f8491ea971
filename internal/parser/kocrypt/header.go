package kocrypt

import (
	"bytes"
	"fmt"
	"io"

	"github.com/roboco-io/koimport/internal/parser"
)

// Header is the plaintext header of an encrypted document.
type Header struct {
	App       App
	Version   byte
	Algorithm [4]byte // 현재 모두 0 (Blowfish-CBC)
}

// Bytes returns the encoded header.
func (h *Header) Bytes() []byte {
	b := make([]byte, 0, HeaderSize)
	b = append(b, Magic[:]...)
	b = append(b, byte(h.App), h.Version)
	return append(b, h.Algorithm[:]...)
}

// ReadHeader reads and validates the header. It does not check the
// application id against an expected value.
func ReadHeader(r io.Reader) (*Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, parser.NewError(parser.KindReadShortfall, "read header", err)
	}
	return parseHeader(buf[:])
}

func parseHeader(b []byte) (*Header, error) {
	if !bytes.Equal(b[:3], Magic[:]) {
		return nil, parser.Errorf(parser.KindFormatMismatch, "read header", "bad magic % X", b[:3])
	}
	h := &Header{App: App(b[3]), Version: b[4]}
	copy(h.Algorithm[:], b[5:9])

	if h.App != AppKWord && h.App != AppKSpread {
		return nil, parser.Errorf(parser.KindFormatMismatch, "read header", "unknown application %s", h.App)
	}
	if h.Version != Version {
		return nil, parser.Errorf(parser.KindFormatMismatch, "read header", "file format version %d", h.Version)
	}
	if h.Algorithm != [4]byte{} {
		return nil, parser.Errorf(parser.KindUnsupportedVersion, "read header", "algorithm % X", h.Algorithm[:])
	}
	return h, nil
}

// String describes the header.
func (h *Header) String() string {
	return fmt.Sprintf("%s v%d (blowfish-cbc)", h.App, h.Version)
}
