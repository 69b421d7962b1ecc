package bounce

import (
	"regexp"
	"strings"

	"github.com/emurenMRz/bounceview/internal/detect"
	"github.com/emurenMRz/bounceview/internal/mailheader"
	"github.com/emurenMRz/bounceview/internal/mimepart"
)

// Where the original letter was found.
const (
	LetterReturnedPart = "returned-part"
	LetterRFC822Part   = "rfc822-part"
	LetterYourCopy     = "your-copy-marker"
	LetterTheCopy      = "the-copy-marker"
	LetterReturnPath   = "return-path-split"
)

const (
	yourCopyMarker = "------ This is a copy of your message, including all the headers. ------"
	theCopyMarker  = "------ This is a copy of the message, including all the headers. ------"
)

var (
	yourCopySplit  = regexp.MustCompile(`\s{4}------ This is a copy of your message, including all the headers\. ------[\s\S]*?\s{4}`)
	theCopySplit   = regexp.MustCompile(`\s{4}------ This is a copy of the message, including all the headers\. ------[\s\S]*?\s{4}`)
	returnPathLine = regexp.MustCompile(`(?i)\nReturn-path:[^\n]*\n`)
)

// recoverOriginalLetter finds the message that bounced. It tries the
// returned message part, then a message/rfc822 second part, then the copy
// markers Exim and friends write, and finally the third segment of the
// email split on Return-Path lines.
func recoverOriginalLetter(s mimepart.Sections, body, email string) (letter, source string) {
	if s.ReturnedMessageBodyPart != "" {
		if _, l := mimepart.SplitHeadAndBody(s.ReturnedMessageBodyPart); l != "" {
			return l, LetterReturnedPart
		}
	}

	if s.MachineParsableBodyPart != "" {
		head, l := mimepart.SplitHeadAndBody(s.MachineParsableBodyPart)
		if strings.Contains(strings.ToLower(head), "message/rfc822") && l != "" {
			return l, LetterRFC822Part
		}
	}

	if strings.Contains(body, yourCopyMarker) {
		if l := afterMatch(yourCopySplit, body); l != "" {
			return l, LetterYourCopy
		}
	}

	if strings.Contains(body, theCopyMarker) {
		if l := afterMatch(theCopySplit, body); l != "" {
			return l, LetterTheCopy
		}
	}

	if l := thirdReturnPathSegment(email); l != "" {
		return l, LetterReturnPath
	}

	return "", ""
}

func afterMatch(re *regexp.Regexp, s string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return ""
	}
	return s[loc[1]:]
}

// thirdReturnPathSegment splits email on Return-Path lines, ignoring empty
// segments, and returns everything after the second non-empty segment.
func thirdReturnPathSegment(email string) string {
	pieces, last := 0, 0
	for _, loc := range returnPathLine.FindAllStringIndex(email, -1) {
		if loc[0] > last {
			pieces++
		}
		last = loc[1]
		if pieces == 2 {
			return email[last:]
		}
	}
	return ""
}

// unwrapFeedbackLetter handles feedback reports that wrap the complaint one
// level deeper: when the original letter is itself a report whose second
// part is message/feedback-report, the header of its returned message is
// the one that matters.
func unwrapFeedbackLetter(original mailheader.Header, letterBody string) (mailheader.Header, bool) {
	boundary := original.Boundary()
	if boundary == "" {
		return original, false
	}

	nested := mimepart.ParseSections(letterBody, boundary)
	if nested.MachineParsableBodyPart == "" || nested.ReturnedMessageBodyPart == "" {
		return original, false
	}
	ct, ok := mailheader.Parse(nested.MachineParsableBodyPart).ContentType()
	if !ok || ct.Type != detect.FeedbackReportType {
		return original, false
	}

	_, letter := mimepart.SplitHeadAndBody(nested.ReturnedMessageBodyPart)
	head, _ := mimepart.SplitHeadAndBody(letter)
	return mailheader.Parse(head), true
}
