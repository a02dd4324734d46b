package prettymidi

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

// textDecoder returns a function turning meta event text into a string.
// Invalid input never fails, it is replaced with U+FFFD.
func textDecoder(charset string) (func([]byte) string, error) {
	var dec *encoding.Decoder

	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
		dec = unicode.UTF8.NewDecoder()
	case "shift-jis", "shift_jis", "sjis":
		dec = japanese.ShiftJIS.NewDecoder()
	default:
		return nil, errors.Wrapf(ErrCharset, "%q", charset)
	}

	return func(b []byte) string {
		s, err := dec.Bytes(b)
		if err != nil {
			return strings.ToValidUTF8(string(b), "\uFFFD")
		}
		return string(s)
	}, nil
}
