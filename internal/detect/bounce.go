// Package detect holds the heuristics that recognise bounces, feedback loop
// reports and automatic replies from their headers and body text.
package detect

import (
	"regexp"
	"strings"

	"github.com/emurenMRz/bounceview/internal/address"
	"github.com/emurenMRz/bounceview/internal/mailheader"
)

// DefaultStatus is returned when no line of a bounce explains the failure.
const DefaultStatus = "5.5.0"

var (
	daemonSender = regexp.MustCompile(`(?i)^(postmaster|mailer-daemon)@?`)
	dottedStatus = regexp.MustCompile(`\W([245]\.[01234567]\.\d{1,2})\W`)
	smtpReply    = regexp.MustCompile(`\]?: ([45][01257][012345]) `)
	smtpRefusal  = regexp.MustCompile(`(?i)^([45][01257][012345]) (?:.*?)(?:denied|inactive|deactivated|rejected|disabled|unknown|no such|not (?:our|activated|a valid))+`)
)

// copyMarkers end the explanation part of a bounce body.
var copyMarkers = []string{
	"------ This is a copy of the message",
	"Mensaje original adjunto",
}

// IsBounce reports whether the Subject or From of h looks like a bounce.
func IsBounce(h mailheader.Header) bool {
	if subject, ok := h.TextOK("Subject"); ok {
		for _, re := range bounceSubjects {
			if re.MatchString(subject) {
				return true
			}
		}
	}
	if from, ok := h.TextOK("From"); ok && daemonSender.MatchString(from) {
		return true
	}
	return false
}

// StatusFromText scans lines from start for the first line that explains a
// failure for recipient, and returns the status code it implies. Lines that
// mention some other address are skipped, and scanning stops where the copy
// of the original message begins.
func StatusFromText(recipient string, start int, lines []string) string {
	lowerRcpt := strings.ToLower(recipient)

	for i := max(start, 0); i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "message-id") {
			continue
		}
		if endsExplanation(lower) {
			break
		}
		if len(address.FindAll(line)) > 0 &&
			!strings.Contains(lower, lowerRcpt) &&
			!strings.Contains(line, "FROM:<") {
			continue
		}

		if code, ok := matchBounceText(line); ok {
			return code
		}
		if m := dottedStatus.FindStringSubmatch(line); m != nil {
			return m[1]
		}
		if m := smtpReply.FindStringSubmatch(line); m != nil {
			return replyToStatus(m[1])
		}
		if m := smtpRefusal.FindStringSubmatch(line); m != nil {
			return replyToStatus(m[1])
		}
	}
	return DefaultStatus
}

func endsExplanation(lower string) bool {
	for _, marker := range copyMarkers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

func matchBounceText(line string) (string, bool) {
	for _, rule := range bounceTexts {
		m := rule.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if rule.code == useCapture {
			if len(m) > 1 {
				return m[1], true
			}
			continue
		}
		return rule.code, true
	}
	return "", false
}

// replyToStatus maps a three digit SMTP reply code to an enhanced status.
func replyToStatus(reply string) string {
	switch reply {
	case "550", "551", "553", "554":
		return "5.1.1"
	case "452", "552":
		return "4.2.2"
	case "450", "421":
		return "4.3.2"
	}
	return DefaultStatus
}
