package kocrypt

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/hashicorp/go-metrics"

	"github.com/roboco-io/koimport/internal/parser"
)

// Encoder writes encrypted documents.
type Encoder struct {
	App       App
	NewCipher CipherFunc
	Rand      io.Reader // 패딩 난수 소스, nil이면 crypto/rand
}

// Encode encrypts plaintext for app with the default cipher.
func Encode(w io.Writer, plaintext []byte, app App, passphrase string, random io.Reader) error {
	e := &Encoder{App: app, NewCipher: NewBlowfish, Rand: random}
	return e.Encode(w, plaintext, passphrase)
}

// Encode writes the header and the encrypted body for plaintext.
func (e *Encoder) Encode(w io.Writer, plaintext []byte, passphrase string) error {
	if e.App != AppKWord && e.App != AppKSpread {
		return parser.Errorf(parser.KindFormatMismatch, "write header", "unsupported application %s", e.App)
	}
	if int64(len(plaintext)) > math.MaxUint32 {
		return fmt.Errorf("plaintext too large: %d bytes", len(plaintext))
	}
	random := e.Rand
	if random == nil {
		random = rand.Reader
	}

	newCipher := e.NewCipher
	if newCipher == nil {
		newCipher = NewBlowfish
	}
	block, err := newCipher(DeriveKey(passphrase))
	if err != nil {
		return parser.NewError(parser.KindCipherSetup, "prepare passphrase", err)
	}
	bs := block.BlockSize()
	if bs <= 0 || bs > maxBlockSize {
		return parser.Errorf(parser.KindCipherInternal, "prepare cipher", "block size %d", bs)
	}

	// 패딩 길이는 첫 블록보다 길어야 한다
	var seedBuf [2]byte
	if _, err := io.ReadFull(random, seedBuf[:]); err != nil {
		return fmt.Errorf("failed to read random seed: %w", err)
	}
	low := bs - 2
	seed := low + int(binary.LittleEndian.Uint16(seedBuf[:]))%(seedModulus-low)

	body := make([]byte, 0, 2+seed+lengthSize+len(plaintext)+sha1.Size+bs)
	body = binary.LittleEndian.AppendUint16(body, uint16(seed))
	padding := make([]byte, seed)
	if _, err := io.ReadFull(random, padding); err != nil {
		return fmt.Errorf("failed to read random padding: %w", err)
	}
	body = append(body, padding...)
	body = binary.LittleEndian.AppendUint32(body, uint32(len(plaintext)))
	body = append(body, plaintext...)
	sum := sha1.Sum(plaintext)
	body = append(body, sum[:]...)

	if tail := (bs - len(body)%bs) % bs; tail > 0 {
		pad := make([]byte, tail)
		if _, err := io.ReadFull(random, pad); err != nil {
			return fmt.Errorf("failed to read random tail: %w", err)
		}
		body = append(body, pad...)
	}

	cipher.NewCBCEncrypter(block, make([]byte, bs)).CryptBlocks(body, body)

	h := &Header{App: e.App, Version: Version}
	if _, err := w.Write(h.Bytes()); err != nil {
		return parser.NewError(parser.KindWrite, "write header", err)
	}
	if _, err := w.Write(body); err != nil {
		return parser.NewError(parser.KindWrite, "write body", err)
	}
	metrics.IncrCounterWithLabels(mKeyEncodeTotal, 1, appLabels(e.App))
	return nil
}
