package kocrypt

import (
	"bytes"
	"crypto/cipher"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io"
	mrand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roboco-io/koimport/internal/parser"
)

const testPass = "correct horse"

func testRand(seed byte) io.Reader {
	var s [32]byte
	s[0] = seed
	return mrand.NewChaCha8(s)
}

// seal encrypts a hand-built plaintext body behind a valid header.
func seal(t *testing.T, app App, body []byte, passphrase string) []byte {
	t.Helper()
	block, err := NewBlowfish(DeriveKey(passphrase))
	require.NoError(t, err)

	bs := block.BlockSize()
	if r := len(body) % bs; r != 0 {
		body = append(body, make([]byte, bs-r)...)
	}
	out := make([]byte, len(body))
	cipher.NewCBCEncrypter(block, make([]byte, bs)).CryptBlocks(out, body)

	h := &Header{App: app, Version: Version}
	return append(h.Bytes(), out...)
}

// plainBody builds [seed][padding][length][content][digest].
func plainBody(seed int, content, digest []byte) []byte {
	b := binary.LittleEndian.AppendUint16(nil, uint16(seed))
	b = append(b, bytes.Repeat([]byte{0xAA}, seed%seedModulus)...)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(content)))
	b = append(b, content...)
	return append(b, digest...)
}

func sha(b []byte) []byte {
	s := sha1.Sum(b)
	return s[:]
}

// spyCipher records whether a cipher was constructed.
type spyCipher struct {
	called    bool
	blockSize int
}

func (s *spyCipher) newCipher(key []byte) (cipher.Block, error) {
	s.called = true
	return &nopBlock{size: s.blockSize}, nil
}

type nopBlock struct{ size int }

func (b *nopBlock) BlockSize() int          { return b.size }
func (b *nopBlock) Encrypt(dst, src []byte) { copy(dst, src[:b.size]) }
func (b *nopBlock) Decrypt(dst, src []byte) { copy(dst, src[:b.size]) }

func TestRoundTrip(t *testing.T) {
	sizes := []int{0, 1, 7, 8, 9, 100, 5000}
	for i, size := range sizes {
		for _, app := range []App{AppKWord, AppKSpread} {
			content := make([]byte, size)
			_, _ = io.ReadFull(testRand(byte(i)), content)

			var enc bytes.Buffer
			require.NoError(t, Encode(&enc, content, app, testPass, testRand(byte(100+i))))

			var out bytes.Buffer
			n, err := NewDecoder(app).Decode(bytes.NewReader(enc.Bytes()), &out, testPass)
			require.NoError(t, err, "size %d app %s", size, app)
			assert.Equal(t, int64(size), n)
			assert.True(t, bytes.Equal(content, out.Bytes()), "size %d app %s: plaintext differs", size, app)
		}
	}
}

func TestDecode_AnyApp(t *testing.T) {
	var enc bytes.Buffer
	require.NoError(t, Encode(&enc, []byte("hello"), AppKSpread, testPass, testRand(1)))

	var out bytes.Buffer
	_, err := NewDecoder(AppAny).Decode(&enc, &out, testPass)
	require.NoError(t, err)
	assert.Equal(t, "hello", out.String())
}

func TestDecode_WrongPassphrase(t *testing.T) {
	content := bytes.Repeat([]byte("secret document "), 64)
	var enc bytes.Buffer
	require.NoError(t, Encode(&enc, content, AppKWord, testPass, testRand(2)))

	for _, pass := range []string{"wrong", "correct hors", "Correct horse"} {
		var out bytes.Buffer
		_, err := NewDecoder(AppKWord).Decode(bytes.NewReader(enc.Bytes()), &out, pass)
		require.Error(t, err, pass)
		assert.Equal(t, parser.KindIntegrity, parser.KindOf(err), "passphrase %q: %v", pass, err)
	}
}

func TestDecode_WrongPassphraseIsIntegrityFailure(t *testing.T) {
	content := make([]byte, 4096)
	_, _ = io.ReadFull(testRand(7), content)
	var enc bytes.Buffer
	require.NoError(t, Encode(&enc, content, AppKWord, testPass, testRand(8)))

	kinds := make(map[parser.Kind]int)
	for i := 0; i < 200; i++ {
		pass := fmt.Sprintf("wrong-%d", i)
		// 탐색 가능한 입력과 스트림 입력 모두
		for _, r := range []io.Reader{bytes.NewReader(enc.Bytes()), io.MultiReader(bytes.NewReader(enc.Bytes()))} {
			_, err := NewDecoder(AppKWord).Decode(r, io.Discard, pass)
			require.Error(t, err, pass)
			kinds[parser.KindOf(err)]++
		}
	}
	assert.Equal(t, map[parser.Kind]int{parser.KindIntegrity: 400}, kinds)
}

func TestDecode_HeaderRejection(t *testing.T) {
	valid := (&Header{App: AppKWord, Version: Version}).Bytes()

	tests := []struct {
		name   string
		mutate func(b []byte)
		app    App
		want   parser.Kind
	}{
		{"magic", func(b []byte) { b[1] = 'X' }, AppKWord, parser.KindFormatMismatch},
		{"unknown app", func(b []byte) { b[3] = 0x07 }, AppAny, parser.KindFormatMismatch},
		{"other app", func(b []byte) {}, AppKSpread, parser.KindFormatMismatch},
		{"version", func(b []byte) { b[4] = 0x02 }, AppKWord, parser.KindFormatMismatch},
		{"algorithm", func(b []byte) { b[8] = 0x01 }, AppKWord, parser.KindUnsupportedVersion},
		{"truncated", nil, AppKWord, parser.KindReadShortfall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := append([]byte{}, valid...)
			if tt.mutate != nil {
				tt.mutate(data)
				data = append(data, make([]byte, 64)...)
			} else {
				data = data[:5]
			}

			spy := &spyCipher{blockSize: 8}
			d := NewDecoder(tt.app)
			d.NewCipher = spy.newCipher

			_, err := d.Decode(bytes.NewReader(data), io.Discard, testPass)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "expected %s, got %v", tt.want, err)
			assert.False(t, spy.called, "cipher must not be constructed for a rejected header")
		})
	}
}

func TestDecode_DigestCoversContentOnly(t *testing.T) {
	content := []byte("digest covers content only")

	// 패딩이 달라도 같은 내용은 복호화된다
	for _, seed := range []int{6, 7, 13, 200} {
		data := seal(t, AppKWord, plainBody(seed, content, sha(content)), testPass)
		var out bytes.Buffer
		_, err := NewDecoder(AppKWord).Decode(bytes.NewReader(data), &out, testPass)
		require.NoError(t, err, "seed %d", seed)
		assert.Equal(t, content, out.Bytes())
	}

	// 패딩이나 길이를 포함한 해시는 거부된다
	withLength := binary.LittleEndian.AppendUint32(nil, uint32(len(content)))
	withLength = append(withLength, content...)
	data := seal(t, AppKWord, plainBody(6, content, sha(withLength)), testPass)
	_, err := NewDecoder(AppKWord).Decode(bytes.NewReader(data), io.Discard, testPass)
	assert.True(t, errors.Is(err, parser.KindIntegrity), "expected integrity failure, got %v", err)
}

func TestDecode_InconsistentBody(t *testing.T) {
	content := []byte("0123456789")
	body := plainBody(6, content, sha(content))

	tests := []struct {
		name string
		data func() io.Reader
	}{
		{
			name: "seed shorter than first block",
			data: func() io.Reader {
				return bytes.NewReader(seal(t, AppKWord, plainBody(3, content, sha(content)), testPass))
			},
		},
		{
			name: "length past end of seekable input",
			data: func() io.Reader {
				b := append([]byte{}, body...)
				binary.LittleEndian.PutUint32(b[8:], 1<<20)
				return bytes.NewReader(seal(t, AppKWord, b, testPass))
			},
		},
		{
			name: "length past end of stream",
			data: func() io.Reader {
				b := append([]byte{}, body...)
				binary.LittleEndian.PutUint32(b[8:], 1<<20)
				return io.MultiReader(bytes.NewReader(seal(t, AppKWord, b, testPass)))
			},
		},
		{
			name: "truncated body",
			data: func() io.Reader {
				data := seal(t, AppKWord, body, testPass)
				return bytes.NewReader(data[:len(data)-8])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder(AppKWord).Decode(tt.data(), io.Discard, testPass)
			assert.True(t, errors.Is(err, parser.KindIntegrity), "expected integrity failure, got %v", err)
		})
	}
}

func TestDecode_MaxPlaintext(t *testing.T) {
	content := bytes.Repeat([]byte{1}, 100)
	data := seal(t, AppKWord, plainBody(6, content, sha(content)), testPass)

	d := NewDecoder(AppKWord)
	d.MaxPlaintext = 50
	_, err := d.Decode(io.MultiReader(bytes.NewReader(data)), io.Discard, testPass)
	assert.True(t, errors.Is(err, parser.KindIntegrity), "expected integrity failure, got %v", err)
	assert.Contains(t, err.Error(), "exceeds limit 50")
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestDecode_WriteFailure(t *testing.T) {
	var enc bytes.Buffer
	require.NoError(t, Encode(&enc, bytes.Repeat([]byte{7}, 10000), AppKWord, testPass, testRand(3)))

	_, err := NewDecoder(AppKWord).Decode(&enc, failingWriter{}, testPass)
	assert.True(t, errors.Is(err, parser.KindWrite), "expected write failure, got %v", err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestDecode_CipherErrors(t *testing.T) {
	var enc bytes.Buffer
	require.NoError(t, Encode(&enc, []byte("x"), AppKWord, testPass, testRand(4)))
	data := enc.Bytes()

	t.Run("empty passphrase", func(t *testing.T) {
		_, err := NewDecoder(AppKWord).Decode(bytes.NewReader(data), io.Discard, "")
		assert.True(t, errors.Is(err, parser.KindCipherSetup), "got %v", err)
	})

	t.Run("block size", func(t *testing.T) {
		spy := &spyCipher{blockSize: 4096}
		d := NewDecoder(AppKWord)
		d.NewCipher = spy.newCipher
		_, err := d.Decode(bytes.NewReader(data), io.Discard, testPass)
		assert.True(t, spy.called)
		assert.True(t, errors.Is(err, parser.KindCipherInternal), "got %v", err)
	})

	t.Run("hash unavailable", func(t *testing.T) {
		d := NewDecoder(AppKWord)
		d.NewHash = func() hash.Hash { return nil }
		_, err := d.Decode(bytes.NewReader(data), io.Discard, testPass)
		assert.True(t, errors.Is(err, parser.KindHashUnavailable), "got %v", err)
	})
}

func TestDeriveKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []byte
	}{
		{"ascii", "abc", []byte("abc")},
		{"latin1", "é", []byte{0xE9}},
		{"unencodable", "a€b", []byte("a?b")},
		{"nul", "ab\x00cd", []byte("ab")},
		{"empty", "", []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveKey(tt.in))
		})
	}

	long := DeriveKey(string(bytes.Repeat([]byte{'k'}, 80)))
	assert.Len(t, long, MaxKeyLen)
}

func TestReadHeader(t *testing.T) {
	h := &Header{App: AppKSpread, Version: Version}
	got, err := ReadHeader(bytes.NewReader(h.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, h, got)
	assert.Equal(t, "kspread v1 (blowfish-cbc)", got.String())
	assert.Equal(t, "application/x-kspread-crypt", got.App.MimeType())

	app, err := ParseApp("kword")
	require.NoError(t, err)
	assert.Equal(t, AppKWord, app)
	_, err = ParseApp("kpresenter")
	assert.Error(t, err)
}

func TestEncode_UnsupportedApp(t *testing.T) {
	err := Encode(io.Discard, []byte("x"), AppAny, testPass, testRand(5))
	assert.True(t, errors.Is(err, parser.KindFormatMismatch), "got %v", err)
}
