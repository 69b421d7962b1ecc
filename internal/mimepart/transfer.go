package mimepart

import (
	"encoding/base64"
	"io"
	"mime/quotedprintable"
	"regexp"
	"strings"
)

var cteLine = regexp.MustCompile(`(?i)^Content-Transfer-Encoding:\s*(\S+)`)

// DecodeTransferEncoding decodes a part line by line. A
// Content-Transfer-Encoding line is kept as is and selects the codec for the
// lines after it. Lines that fail to decode never fail the part.
func DecodeTransferEncoding(part string) string {
	encoding := "7bit"
	var b strings.Builder

	for _, line := range strings.Split(part, CRLF) {
		if m := cteLine.FindStringSubmatch(line); m != nil {
			encoding = strings.ToLower(m[1])
			b.WriteString(line)
			b.WriteString(CRLF)
			continue
		}

		switch encoding {
		case "quoted-printable":
			b.WriteString(decodeQuotedPrintableLine(line))
		case "base64":
			b.WriteString(decodeBase64Line(line))
		default:
			b.WriteString(line)
			b.WriteString(CRLF)
		}
	}

	return b.String()
}

// decodeQuotedPrintableLine treats a trailing "=" as a soft line break.
func decodeQuotedPrintableLine(line string) string {
	if strings.HasSuffix(line, "=") {
		return decodeQuotedPrintable(line[:len(line)-1])
	}
	return decodeQuotedPrintable(line + CRLF)
}

func decodeQuotedPrintable(s string) string {
	out, err := io.ReadAll(quotedprintable.NewReader(strings.NewReader(s)))
	if err != nil {
		return s
	}
	return string(out)
}

// decodeBase64Line yields "" for a line that is not valid base64.
func decodeBase64Line(line string) string {
	line = strings.TrimSpace(line)
	out, err := base64.StdEncoding.DecodeString(line)
	if err != nil {
		out, err = base64.RawStdEncoding.DecodeString(line)
		if err != nil {
			return ""
		}
	}
	return string(out)
}
