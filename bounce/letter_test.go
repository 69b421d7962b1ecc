package bounce

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emurenMRz/bounceview/internal/mailheader"
	"github.com/emurenMRz/bounceview/internal/mimepart"
)

func TestRecoverOriginalLetter(t *testing.T) {
	tests := []struct {
		name     string
		sections mimepart.Sections
		body     string
		email    string
		letter   string
		source   string
	}{
		{
			name:     "returned part",
			sections: mimepart.Sections{ReturnedMessageBodyPart: "Content-Type: message/rfc822\r\n\r\nSubject: a\r\n"},
			letter:   "Subject: a\r\n",
			source:   LetterReturnedPart,
		},
		{
			name: "rfc822 second part",
			sections: mimepart.Sections{
				MachineParsableBodyPart: "Content-Type: Message/RFC822\r\n\r\nSubject: b\r\n",
				ReturnedMessageBodyPart: "--\r\n",
			},
			letter: "Subject: b\r\n",
			source: LetterRFC822Part,
		},
		{
			name:     "delivery status second part is not a letter",
			sections: mimepart.Sections{MachineParsableBodyPart: "Content-Type: message/delivery-status\r\n\r\nStatus: 5.1.1\r\n"},
		},
		{
			name:   "your copy marker",
			body:   "failed\r\n\r\n------ This is a copy of your message, including all the headers. ------\r\n\r\nSubject: c\r\n",
			letter: "Subject: c\r\n",
			source: LetterYourCopy,
		},
		{
			name:   "the copy marker",
			body:   "failed\r\n\r\n------ This is a copy of the message, including all the headers. ------\r\n\r\nSubject: d\r\n",
			letter: "Subject: d\r\n",
			source: LetterTheCopy,
		},
		{
			name:   "return path split",
			email:  "Return-Path: <>\r\nSubject: x\r\n\r\nbody\r\nReturn-Path: <a@b.test>\r\nmiddle\r\nReturn-Path: <c@d.test>\r\nSubject: e\r\n",
			letter: "Subject: e\r\n",
			source: LetterReturnPath,
		},
		{
			name:  "nothing",
			body:  "just text",
			email: "Subject: x\r\n\r\njust text",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			letter, source := recoverOriginalLetter(tt.sections, tt.body, tt.email)
			assert.Equal(t, tt.letter, letter)
			assert.Equal(t, tt.source, source)
		})
	}
}

func TestThirdReturnPathSegmentSkipsEmptySegments(t *testing.T) {
	email := "x\nReturn-Path: <a>\n\nReturn-Path: <b>\nsecond\nReturn-Path: <c>\nthird\nReturn-Path: <d>\nfourth"
	assert.Equal(t, "third\nReturn-Path: <d>\nfourth", thirdReturnPathSegment(email))
	assert.Equal(t, "", thirdReturnPathSegment("only\nReturn-Path: <a>\nonce"))
}

func TestUnwrapFeedbackLetterNeedsFeedbackPart(t *testing.T) {
	original := mailheader.Parse("Content-Type: multipart/mixed; boundary=zz")
	body := "--zz\r\n\r\none\r\n--zz\r\nContent-Type: text/plain\r\n\r\ntwo\r\n--zz\r\nContent-Type: message/rfc822\r\n\r\nSubject: three\r\n--zz--"

	got, ok := unwrapFeedbackLetter(original, body)
	assert.False(t, ok)
	assert.Equal(t, original, got)

	_, ok = unwrapFeedbackLetter(mailheader.Parse("Subject: flat"), body)
	assert.False(t, ok)
}
