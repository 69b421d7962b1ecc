// Package dsn parses the machine readable part of an RFC 3464 delivery
// status notification.
package dsn

import (
	"regexp"
	"strings"

	"github.com/emurenMRz/bounceview/internal/address"
	"github.com/emurenMRz/bounceview/internal/mailheader"
	"github.com/emurenMRz/bounceview/internal/mimepart"
	"github.com/emurenMRz/bounceview/status"
)

// TypedField is a "type; value" DSN field such as "rfc822; user@example.com".
type TypedField struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Recipient is one per-recipient block.
type Recipient struct {
	Fields            mailheader.Header `json:"-"`
	FinalRecipient    *TypedField       `json:"finalRecipient,omitempty"`
	OriginalRecipient *TypedField       `json:"originalRecipient,omitempty"`
	DiagnosticCode    *TypedField       `json:"diagnosticCode,omitempty"`
	RemoteMTA         *TypedField       `json:"remoteMta,omitempty"`
	Action            string            `json:"action"`
	Status            string            `json:"status"`
}

// Address returns the recipient address, preferring Original-Recipient.
func (r Recipient) Address() string {
	var original, final string
	if r.OriginalRecipient != nil {
		original = r.OriginalRecipient.Value
	}
	if r.FinalRecipient != nil {
		final = r.FinalRecipient.Value
	}
	return address.FindRecipient(original, final)
}

// Report is a parsed delivery-status part.
type Report struct {
	MIMEHeader       mailheader.Header
	PerMessage       mailheader.Header
	PerMessageFields map[string]TypedField
	Recipients       []Recipient
}

// perMessageTyped are the per-message fields split into type and value.
var perMessageTyped = []string{"X-postfix-sender", "Reporting-mta", "Received-from-mta"}

var recipientBlock = regexp.MustCompile(`(Final|Original)-Recipient`)

// Parse parses the machine parsable part of a report. The first block is the
// part's own MIME header, the second the per-message fields unless it
// already names a recipient, and every following block except "--" is a
// recipient block.
func Parse(part string) Report {
	blocks := strings.Split(part, mimepart.CRLF+mimepart.CRLF)

	var r Report
	r.PerMessageFields = map[string]TypedField{}

	for i, block := range blocks {
		block = strings.TrimSpace(block)
		switch {
		case i == 0:
			r.MIMEHeader = mailheader.ParseKeyValue(block)
		case i == 1 && !recipientBlock.MatchString(block):
			r.PerMessage = mailheader.ParseKeyValue(block)
		case block == "--":
		default:
			r.Recipients = append(r.Recipients, parseRecipient(block))
		}
	}

	for _, name := range perMessageTyped {
		if v, ok := r.PerMessage.TextOK(name); ok {
			r.PerMessageFields[name] = splitTyped(v)
		}
	}

	return r
}

func parseRecipient(block string) Recipient {
	h := mailheader.ParseKeyValue(block)
	rcpt := Recipient{
		Fields: h,
		Action: h.Text("Action"),
		Status: h.Text("Status"),
	}

	if v, ok := h.TextOK("Final-recipient"); ok {
		rcpt.FinalRecipient = finalRecipient(v)
	}
	if v, ok := h.TextOK("Original-recipient"); ok {
		f := splitTyped(v)
		rcpt.OriginalRecipient = &f
	}
	if v, ok := h.TextOK("Diagnostic-code"); ok {
		f := splitTyped(v)
		rcpt.DiagnosticCode = &f
	}
	if v, ok := h.TextOK("Remote-mta"); ok {
		f := splitTyped(v)
		rcpt.RemoteMTA = &f
	}

	// A temporary diagnostic outranks a stale "failed" action.
	if rcpt.DiagnosticCode != nil {
		code := status.DecodeDiagnostic(rcpt.DiagnosticCode.Value)
		if a, ok := status.ActionFor(code); ok && a == status.Transient &&
			strings.Contains(strings.ToLower(rcpt.Action), "failed") {
			rcpt.Action = string(status.Transient)
			rcpt.Status = "4.3.0"
		}
	}

	return rcpt
}

// splitTyped splits "type; value" on ';'. Text after a second ';' is dropped.
func splitTyped(v string) TypedField {
	parts := strings.Split(v, ";")
	f := TypedField{Type: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		f.Value = strings.TrimSpace(parts[1])
	}
	return f
}

// finalRecipient is splitTyped with bracket stripping. A bare address has
// type "unknown".
func finalRecipient(v string) *TypedField {
	parts := strings.Split(v, ";")
	if len(parts) > 1 {
		return &TypedField{
			Type:  strings.TrimSpace(parts[0]),
			Value: address.StripAngleBrackets(parts[1]),
		}
	}
	return &TypedField{
		Type:  "unknown",
		Value: address.StripAngleBrackets(parts[0]),
	}
}
