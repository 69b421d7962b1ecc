package mimepart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLineEndings(t *testing.T) {
	inputs := []string{
		"a\nb\r\nc",
		"a\r\n\r\nb\n\n",
		"",
		"no breaks",
	}
	for _, in := range inputs {
		once := NormalizeLineEndings(in)
		assert.Equal(t, once, NormalizeLineEndings(once), "idempotent for %q", in)
		assert.NotContains(t, strings.ReplaceAll(once, "\r\n", ""), "\n")
	}
	assert.Equal(t, "a\r\nb\r\nc", NormalizeLineEndings("a\nb\r\nc"))
}

func TestSplitHeadAndBody(t *testing.T) {
	head, body := SplitHeadAndBody("Subject: x\r\nFrom: y\r\n\r\nbody\r\n\r\nmore")
	assert.Equal(t, "Subject: x\r\nFrom: y", head)
	assert.Equal(t, "body\r\n\r\nmore", body)

	head, body = SplitHeadAndBody("Subject: only head")
	assert.Equal(t, "Subject: only head", head)
	assert.Equal(t, "", body)
}

func TestParseSections(t *testing.T) {
	body := strings.Join([]string{
		"preamble",
		"--XYZ",
		"Content-Type: text/plain",
		"",
		"explanation",
		"--XYZ",
		"Content-Type: message/delivery-status",
		"",
		"Status: 5.1.1",
		"--XYZ",
		"Content-Type: message/rfc822",
		"",
		"Subject: original",
		"--XYZ--",
	}, CRLF)

	s := ParseSections(body, "XYZ")
	assert.Contains(t, s.FirstBodyPart, "explanation")
	assert.Contains(t, s.MachineParsableBodyPart, "Status: 5.1.1")
	assert.Contains(t, s.ReturnedMessageBodyPart, "Subject: original")
	assert.Len(t, s.All(), 3)
	assert.False(t, s.IsZero())
}

func TestParseSectionsMissingParts(t *testing.T) {
	assert.True(t, ParseSections("anything", "").IsZero())

	s := ParseSections("--B\r\nonly one part\r\n", "B")
	assert.Contains(t, s.FirstBodyPart, "only one part")
	assert.Equal(t, "", s.MachineParsableBodyPart)
	assert.Equal(t, "", s.ReturnedMessageBodyPart)
}

func TestDecodeTransferEncoding(t *testing.T) {
	t.Run("7bit", func(t *testing.T) {
		assert.Equal(t, "a\r\nb\r\n", DecodeTransferEncoding("a\r\nb"))
	})

	t.Run("quoted-printable", func(t *testing.T) {
		part := strings.Join([]string{
			"Content-Transfer-Encoding: quoted-printable",
			"caf=C3=A9 soft=",
			"continued",
		}, CRLF)
		assert.Equal(t,
			"Content-Transfer-Encoding: quoted-printable\r\ncafé softcontinued\r\n",
			DecodeTransferEncoding(part))
	})

	t.Run("quoted-printable bad escape", func(t *testing.T) {
		part := "content-transfer-encoding: Quoted-Printable\r\nbad =ZZ escape"
		assert.Contains(t, DecodeTransferEncoding(part), "=ZZ")
	})

	t.Run("base64", func(t *testing.T) {
		part := strings.Join([]string{
			"Content-Transfer-Encoding: base64",
			"",
			"aGVsbG8g",
			"d29ybGQ=",
			"!!not base64!!",
		}, CRLF)
		assert.Equal(t,
			"Content-Transfer-Encoding: base64\r\nhello world",
			DecodeTransferEncoding(part))
	})

	t.Run("base64 without padding", func(t *testing.T) {
		assert.Equal(t, "Content-Transfer-Encoding: base64\r\nhi",
			DecodeTransferEncoding("Content-Transfer-Encoding: base64\r\naGk"))
	})
}
