package detect

import (
	"regexp"

	"github.com/emurenMRz/bounceview/internal/mailheader"
)

// autoReplyHeaders mark a message as automatic by their mere presence.
var autoReplyHeaders = []string{
	"Auto-submitted",
	"X-autorespond",
	"X-autoreply",
	"X-autoresponse",
	"X-auto-reply-from",
	"X-ms-exchange-inbox-rules-loop",
	"X-ms-exchange-generated-message-source",
}

var (
	suppressAutoReply = regexp.MustCompile(`(?i)(?:^|,\s*)(OOF|AutoReply|All)(?:\s*,|$)`)
	bulkPrecedence    = regexp.MustCompile(`(?i)^(auto|junk)`)
)

// DetectAutoResponse reports whether head belongs to an automatic reply.
// The returned text is the "Name: value" of the deciding header, or the
// Subject when the subject gave it away.
func DetectAutoResponse(head mailheader.Header) (string, bool) {
	for _, name := range autoReplyHeaders {
		if v, ok := head.TextOK(name); ok {
			return name + ": " + v, true
		}
	}

	if v, ok := head.TextOK("X-auto-response-suppress"); ok && suppressAutoReply.MatchString(v) {
		return "X-auto-response-suppress: " + v, true
	}

	for _, name := range []string{"Precedence", "X-precedence"} {
		if v, ok := head.TextOK(name); ok && bulkPrecedence.MatchString(v) {
			return name + ": " + v, true
		}
	}

	subject := head.Text("Subject")
	for _, re := range autoReplySubjects {
		if re.MatchString(subject) {
			return subject, true
		}
	}
	return "", false
}
