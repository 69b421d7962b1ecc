package mailheader

import (
	"io"
	"mime"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

var wordDecoder = NewWordDecoder()

// NewWordDecoder returns a mime.WordDecoder that understands every charset
// CharsetReader does.
func NewWordDecoder() *mime.WordDecoder {
	return &mime.WordDecoder{CharsetReader: CharsetReader}
}

// CharsetReader converts input from charset to UTF-8, looking the name up in
// the MIME and then the IANA index. Unknown charsets are passed through
// untouched.
func CharsetReader(charset string, input io.Reader) (io.Reader, error) {
	if charset == "" {
		return input, nil
	}
	name := strings.ToLower(charset)
	enc, err := ianaindex.MIME.Encoding(name)
	if err != nil || enc == nil {
		enc, err = ianaindex.IANA.Encoding(name)
	}
	if err != nil || enc == nil {
		return input, nil
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}

// DecodeWords decodes RFC 2047 encoded-words in s. Words that cannot be
// decoded are left as they are; on any other failure s is returned as is.
func DecodeWords(s string) string {
	if !strings.Contains(s, "=?") {
		return s
	}
	decoded, err := wordDecoder.DecodeHeader(s)
	if err != nil {
		return s
	}
	return decoded
}
