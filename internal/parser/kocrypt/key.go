package kocrypt

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// DeriveKey converts a passphrase into cipher key bytes: ISO-8859-1, with
// unencodable runes replaced by '?', cut at the first NUL and truncated to
// MaxKeyLen bytes.
func DeriveKey(passphrase string) []byte {
	if i := strings.IndexByte(passphrase, 0); i >= 0 {
		passphrase = passphrase[:i]
	}
	key := make([]byte, 0, MaxKeyLen)
	for _, r := range passphrase {
		if len(key) == MaxKeyLen {
			break
		}
		b, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			b = '?'
		}
		key = append(key, b)
	}
	return key
}
