// Package status resolves RFC 3463 enhanced status codes found in delivery
// reports into coarse delivery actions and bounce reasons.
package status

import (
	"regexp"
	"strings"
)

// Action is the coarse outcome of a delivery attempt.
type Action string

const (
	Failed       Action = "failed"
	Transient    Action = "transient"
	Success      Action = "success"
	AutoResponse Action = "autoresponse"
)

// Reason is the coarse cause of a non-delivery.
type Reason string

const (
	UserUnknown Reason = "userunknown"
	NotAccept   Reason = "notaccept"
	Filtered    Reason = "filtered"
)

// Code is a normalized status code together with the text that followed it.
type Code struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

// IsZero reports whether no status code was recognized.
func (c Code) IsZero() bool {
	return c.Code == ""
}

var (
	dottedCode   = regexp.MustCompile(`([245]\.[01234567]\.\d{1,2})\s*(.*)`)
	compactCode  = regexp.MustCompile(`([245])([01234567])(\d{1,2})\s*(.*)`)
	diagEnhanced = regexp.MustCompile(`(\d\.\d\.\d)\s`)
	diagReply    = regexp.MustCompile(`(\d\d\d)\s`)
)

// Format extracts a status code in either dotted ("5.1.1 text") or compact
// ("511 text") form. The compact form is rewritten as class.subject.detail.
func Format(code string) Code {
	if m := dottedCode.FindStringSubmatch(code); m != nil {
		return Code{Code: m[1], Text: m[2]}
	}
	if m := compactCode.FindStringSubmatch(code); m != nil {
		return Code{Code: m[1] + "." + m[2] + "." + m[3], Text: m[4]}
	}
	return Code{}
}

// ActionFor maps the class digit of code to an Action.
func ActionFor(code string) (Action, bool) {
	if code == "" {
		return "", false
	}
	c := Format(code)
	if c.IsZero() {
		return "", false
	}
	switch c.Code[0] {
	case '2':
		return Success, true
	case '4':
		return Transient, true
	case '5':
		return Failed, true
	}
	return "", false
}

// ActionString is ActionFor flattened to a string, empty when unknown.
func ActionString(code string) string {
	a, ok := ActionFor(code)
	if !ok {
		return ""
	}
	return string(a)
}

// ReasonFor maps an exact dotted code to a Reason. Anything not known to be a
// policy block or a temporary refusal is reported as UserUnknown.
func ReasonFor(code string) Reason {
	switch code {
	case "5.7.1":
		return Filtered
	case "4.2.0", "4.2.2", "4.3.2":
		return NotAccept
	}
	return UserUnknown
}

// DecodeDiagnostic pulls a status code out of a Diagnostic-Code value,
// preferring an enhanced code over a bare SMTP reply code.
func DecodeDiagnostic(text string) string {
	if m := diagEnhanced.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := diagReply.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// ParseAction parses an action token naming one of the four Actions. Other
// RFC 3464 values such as "delayed" or "delivered" are not Actions; callers
// derive those from the status class with ActionFor.
func ParseAction(token string) (Action, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "failed":
		return Failed, true
	case "transient":
		return Transient, true
	case "success":
		return Success, true
	case "autoresponse":
		return AutoResponse, true
	}
	return "", false
}
