package kocrypt

import (
	"crypto/cipher"
	"errors"
	"hash"
	"io"

	"github.com/roboco-io/koimport/internal/parser"
)

// blockReader decrypts the body one cipher block at a time.
type blockReader struct {
	r    io.Reader
	mode cipher.BlockMode
	buf  []byte
	off  int // buf[off:] is unread plaintext
}

func newBlockReader(r io.Reader, mode cipher.BlockMode) *blockReader {
	bs := mode.BlockSize()
	return &blockReader{r: r, mode: mode, buf: make([]byte, bs), off: bs}
}

// buffered returns the number of decrypted bytes not yet consumed.
func (b *blockReader) buffered() int {
	return len(b.buf) - b.off
}

func (b *blockReader) fill() error {
	if _, err := io.ReadFull(b.r, b.buf); err != nil {
		// 본문이 짧은 것은 잘못된 패스워드로 읽은 길이와 구별되지 않는다
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return parser.NewError(parser.KindIntegrity, "read block", err)
		}
		return parser.NewError(parser.KindReadShortfall, "read block", err)
	}
	b.mode.CryptBlocks(b.buf, b.buf)
	b.off = 0
	return nil
}

// next returns up to n decrypted bytes, reading a block when the current
// one is used up. The slice is only valid until the next call.
func (b *blockReader) next(n int) ([]byte, error) {
	if b.buffered() == 0 {
		if err := b.fill(); err != nil {
			return nil, err
		}
	}
	n = min(n, b.buffered())
	p := b.buf[b.off : b.off+n]
	b.off += n
	return p, nil
}

// readFull fills p.
func (b *blockReader) readFull(p []byte) error {
	for len(p) > 0 {
		chunk, err := b.next(len(p))
		if err != nil {
			return err
		}
		p = p[copy(p, chunk):]
	}
	return nil
}

// skip discards n bytes.
func (b *blockReader) skip(n int) error {
	for n > 0 {
		chunk, err := b.next(n)
		if err != nil {
			return err
		}
		n -= len(chunk)
	}
	return nil
}

// copyN streams n bytes to w, feeding each chunk to h first.
func (b *blockReader) copyN(w io.Writer, h hash.Hash, n int64) (int64, error) {
	var written int64
	for written < n {
		chunk, err := b.next(int(min(n-written, int64(len(b.buf)))))
		if err != nil {
			return written, err
		}
		h.Write(chunk)
		m, err := w.Write(chunk)
		written += int64(m)
		if err == nil && m < len(chunk) {
			err = io.ErrShortWrite
		}
		if err != nil {
			return written, parser.NewError(parser.KindWrite, "write", err)
		}
	}
	return written, nil
}
