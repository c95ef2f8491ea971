package kocrypt

import (
	"bufio"
	"crypto/cipher"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"time"

	"github.com/hashicorp/go-metrics"
	"golang.org/x/crypto/blowfish"

	"github.com/roboco-io/koimport/internal/parser"
)

// CipherFunc constructs a block cipher from key bytes.
type CipherFunc func(key []byte) (cipher.Block, error)

// HashFunc constructs the digest used for the integrity check. A nil
// result means no hash is available.
type HashFunc func() hash.Hash

// NewBlowfish is the default CipherFunc.
func NewBlowfish(key []byte) (cipher.Block, error) {
	return blowfish.NewCipher(key)
}

// Decoder decrypts encrypted documents. The zero value is not usable; use
// NewDecoder.
type Decoder struct {
	// App is the expected application. AppAny accepts both.
	App App

	NewCipher CipherFunc
	NewHash   HashFunc

	// MaxPlaintext is the largest content length accepted from the stream.
	MaxPlaintext int64
}

// NewDecoder returns a Decoder using Blowfish and SHA1.
func NewDecoder(app App) *Decoder {
	return &Decoder{
		App:          app,
		NewCipher:    NewBlowfish,
		NewHash:      sha1.New,
		MaxPlaintext: DefaultMaxPlaintext,
	}
}

// Decode reads an encrypted document from r and writes the verified
// plaintext to w. It returns the number of content bytes written. Errors
// are *parser.Error values; on error, w may hold a partial plaintext.
//
// Once the header is accepted, every inconsistency in the decrypted body
// is reported as parser.KindIntegrity: a wrong passphrase yields a random
// padding and length that cannot be told apart from a damaged file.
func (d *Decoder) Decode(r io.Reader, w io.Writer, passphrase string) (n int64, err error) {
	start := time.Now()
	labels := appLabels(d.App)
	metrics.IncrCounterWithLabels(mKeyDecodeTotal, 1, labels)
	defer func() {
		metrics.MeasureSinceWithLabels(mKeyDecodeDurations, start, labels)
		metrics.IncrCounterWithLabels(mKeyBytesDecrypted, float32(n), labels)
		if err != nil {
			metrics.IncrCounterWithLabels(mKeyDecodeErrorsTotal, 1,
				append(labels, metrics.Label{Name: "kind", Value: parser.KindOf(err).String()}))
		}
	}()

	// 1. 헤더: 키 유도나 암호 초기화 전에 검사
	h, err := ReadHeader(r)
	if err != nil {
		return 0, err
	}
	if d.App != AppAny && h.App != d.App {
		return 0, parser.Errorf(parser.KindFormatMismatch, "read header",
			"document is %s, expected %s", h.App, d.App)
	}

	// 2. 키와 암호
	block, err := d.newCipher(DeriveKey(passphrase))
	if err != nil {
		return 0, err
	}
	digest, err := d.newHash()
	if err != nil {
		return 0, err
	}
	bs := block.BlockSize()

	// 3. CBC, 제로 IV
	iv := make([]byte, bs)
	br := newBlockReader(r, cipher.NewCBCDecrypter(block, iv))

	var seedBuf [2]byte
	if err := br.readFull(seedBuf[:]); err != nil {
		return 0, err
	}
	seed := int(binary.LittleEndian.Uint16(seedBuf[:])) % seedModulus
	if seed < bs-2 {
		return 0, parser.Errorf(parser.KindIntegrity, "read padding",
			"padding %d shorter than the first block", seed)
	}

	// 4. 패딩 건너뛰기 (해시에 포함하지 않음)
	if err := br.skip(seed); err != nil {
		return 0, err
	}

	// 5. 내용 길이
	var lenBuf [lengthSize]byte
	if err := br.readFull(lenBuf[:]); err != nil {
		return 0, err
	}
	size := int64(binary.LittleEndian.Uint32(lenBuf[:]))
	if err := d.checkSize(r, br, size, digest.Size()); err != nil {
		return 0, err
	}

	slog.Debug("[kocrypt] decoding",
		"app", h.App,
		"block_size", bs,
		"padding", seed,
		"length", size)

	// 6. 내용 스트리밍
	bw := bufio.NewWriter(w)
	n, err = br.copyN(bw, digest, size)
	if err != nil {
		return n, err
	}
	if err := bw.Flush(); err != nil {
		return n, parser.NewError(parser.KindWrite, "write", err)
	}

	// 7. 다이제스트 검증
	stored := make([]byte, digest.Size())
	if err := br.readFull(stored); err != nil {
		return n, err
	}
	if subtle.ConstantTimeCompare(stored, digest.Sum(nil)) != 1 {
		return n, parser.Errorf(parser.KindIntegrity, "verify digest",
			"document is corrupt or has been tampered with")
	}
	return n, nil
}

func (d *Decoder) newCipher(key []byte) (cipher.Block, error) {
	newCipher := d.NewCipher
	if newCipher == nil {
		newCipher = NewBlowfish
	}
	block, err := newCipher(key)
	if err != nil {
		return nil, parser.NewError(parser.KindCipherSetup, "prepare passphrase", err)
	}
	if bs := block.BlockSize(); bs <= 0 || bs > maxBlockSize {
		return nil, parser.Errorf(parser.KindCipherInternal, "prepare cipher", "block size %d", bs)
	}
	return block, nil
}

func (d *Decoder) newHash() (hash.Hash, error) {
	newHash := d.NewHash
	if newHash == nil {
		newHash = sha1.New
	}
	h := newHash()
	if h == nil {
		return nil, parser.NewError(parser.KindHashUnavailable, "prepare digest", nil)
	}
	return h, nil
}

// checkSize rejects content lengths that cannot be satisfied by the input
// or exceed the plaintext limit.
func (d *Decoder) checkSize(r io.Reader, br *blockReader, size int64, digestSize int) error {
	if s, ok := r.(io.Seeker); ok {
		left, err := remaining(s)
		if err != nil {
			slog.Debug("[kocrypt] input size unknown", "error", err)
		} else if avail := left + int64(br.buffered()); size+int64(digestSize) > avail {
			return parser.Errorf(parser.KindIntegrity, "read length",
				"content length %d exceeds the %d bytes left", size, avail)
		}
	}

	limit := d.MaxPlaintext
	if limit <= 0 {
		limit = DefaultMaxPlaintext
	}
	if size > limit {
		return parser.Errorf(parser.KindIntegrity, "read length",
			"content length %d exceeds limit %d", size, limit)
	}
	return nil
}

// remaining returns the bytes between the current position and the end.
func remaining(s io.Seeker) (int64, error) {
	cur, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := s.Seek(cur, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to restore position: %w", err)
	}
	if end < cur {
		return 0, errors.New("position past end")
	}
	return end - cur, nil
}
