package wmf

import (
	"bytes"

	"golang.org/x/text/encoding/charmap"
)

// decodeANSI converts NUL-terminated Windows-1252 text to UTF-8.
func decodeANSI(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
