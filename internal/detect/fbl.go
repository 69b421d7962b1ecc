package detect

import (
	"regexp"
	"strings"

	"github.com/emurenMRz/bounceview/internal/address"
	"github.com/emurenMRz/bounceview/internal/mailheader"
	"github.com/emurenMRz/bounceview/internal/mimepart"
)

// FeedbackReportType is the media type of an ARF machine readable part.
const FeedbackReportType = "message/feedback-report"

var (
	fblLoop          = regexp.MustCompile(`(?i)(scomp|fbl|feedback|abuse)`)
	hotmailComplaint = regexp.MustCompile(`complaint about message from ([0-9.]+)`)
	redactedRcpt     = regexp.MustCompile(`(?i)Undisclosed|redacted`)
	addressType      = regexp.MustCompile(`(?i)^[a-z0-9_-]+;\s*`)
)

// FblVerdict is the outcome of DetectFbl. Recipient is only known up front
// for Hotmail reports.
type FblVerdict struct {
	IsFbl     bool
	IsHotmail bool
	Recipient string
}

// FeedbackReport holds the fields of a feedback loop complaint.
type FeedbackReport struct {
	SourceIP         string `json:"sourceIp"`
	OriginalMailFrom string `json:"originalMailFrom"`
	OriginalRcptTo   string `json:"originalRcptTo"`
	FeedbackType     string `json:"feedbackType"`
	UserAgent        string `json:"userAgent"`
	ReceivedDate     string `json:"receivedDate"`
}

// DetectFbl checks, in order: a feedback-report report-type, an abuse
// X-Loop, a Feedback-ID, a message/feedback-report section and finally the
// Hotmail X-HmXmrOriginalRecipient header.
func DetectFbl(head, firstBody mailheader.Header, sections mimepart.Sections) FblVerdict {
	if ct, ok := head.ContentType(); ok && strings.Contains(ct.Param("report-type"), "feedback-report") {
		return FblVerdict{IsFbl: true}
	}

	if loop, ok := head.TextOK("X-loop"); ok && fblLoop.MatchString(loop) {
		return FblVerdict{IsFbl: true}
	}

	for _, h := range []mailheader.Header{head, firstBody} {
		for _, name := range []string{"Feedback-id", "X-feedback-id"} {
			if h.Text(name) != "" {
				return FblVerdict{IsFbl: true}
			}
		}
	}

	if hasFeedbackReportPart(sections) {
		return FblVerdict{IsFbl: true}
	}

	for _, h := range []mailheader.Header{head, firstBody} {
		if rcpt, ok := h.TextOK("X-hmxmroriginalrecipient"); ok {
			return FblVerdict{IsFbl: true, IsHotmail: true, Recipient: rcpt}
		}
	}

	return FblVerdict{}
}

func hasFeedbackReportPart(sections mimepart.Sections) bool {
	if sections.IsZero() {
		return false
	}
	for _, part := range sections.All() {
		if part == "" {
			continue
		}
		if ct, ok := mailheader.Parse(part).ContentType(); ok && ct.Type == FeedbackReportType {
			return true
		}
	}
	return false
}

// ParseFeedbackReport extracts the complaint fields for a message that
// DetectFbl accepted.
func ParseFeedbackReport(v FblVerdict, head, firstBody mailheader.Header, sections mimepart.Sections) FeedbackReport {
	if v.IsHotmail {
		var sourceIP string
		if m := hotmailComplaint.FindStringSubmatch(head.Text("Subject")); m != nil {
			sourceIP = m[1]
		}
		return FeedbackReport{
			SourceIP:         sourceIP,
			OriginalMailFrom: normalizeAddressField(firstBody.Text("X-sid-pra")),
			OriginalRcptTo:   normalizeAddressField(v.Recipient),
			FeedbackType:     "abuse",
			UserAgent:        "Hotmail FBL",
			ReceivedDate:     firstBody.Text("Date"),
		}
	}

	fbl := mailheader.ParseKeyValue(sections.MachineParsableBodyPart)
	returned := mailheader.ParseKeyValue(sections.ReturnedMessageBodyPart)

	return FeedbackReport{
		SourceIP:         sourceIP(fbl, returned),
		OriginalMailFrom: normalizeAddressField(originalMailFrom(fbl, returned)),
		OriginalRcptTo:   normalizeAddressField(originalRcptTo(fbl, returned)),
		FeedbackType:     fbl.Text("Feedback-type"),
		UserAgent:        fbl.Text("User-agent"),
		ReceivedDate:     firstNonEmpty(fbl, "Received-date", "Arrival-date"),
	}
}

// originalMailFrom prefers the Return-Path of the returned message. Its From
// is used only when the report carries no Original-Mail-From.
func originalMailFrom(fbl, returned mailheader.Header) string {
	if rp := returned.Text("Return-path"); rp != "" {
		return rp
	}
	if fbl.Text("Original-mail-from") == "" {
		if from, ok := returned.TextOK("From"); ok {
			return from
		}
	}
	return fbl.Text("Original-mail-from")
}

func originalRcptTo(fbl, returned mailheader.Header) string {
	var rcpt string
	if v := fbl.Text("Original-rcpt-to"); v != "" {
		rcpt = v
	} else if v, ok := fbl.TextOK("Removal-recipient"); ok {
		rcpt = v
	} else {
		rcpt = returned.Text("To")
	}

	if redactedRcpt.MatchString(rcpt) {
		if v, ok := fbl.TextOK("Removal-recipient"); ok {
			rcpt = v
		}
	}
	return rcpt
}

func sourceIP(fbl, returned mailheader.Header) string {
	if ip := fbl.Text("Source-ip"); ip != "" {
		return ip
	}
	if ip, ok := returned.TextOK("X-originating-ip"); ok {
		return address.StripAngleBrackets(ip)
	}
	return ""
}

// firstNonEmpty returns the first non-empty field of h, else the last one.
func firstNonEmpty(h mailheader.Header, names ...string) string {
	var v string
	for _, name := range names {
		if v = h.Text(name); v != "" {
			return v
		}
	}
	return v
}

// normalizeAddressField drops an "rfc822;" style type prefix and any
// surrounding brackets.
func normalizeAddressField(v string) string {
	v = addressType.ReplaceAllString(strings.TrimSpace(v), "")
	return address.StripAngleBrackets(v)
}
