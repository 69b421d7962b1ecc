// Package mimepart recovers the fixed three-part layout of delivery and
// feedback reports: a human readable explanation, a machine parsable report
// and the returned message.
package mimepart

import "strings"

// CRLF is the line ending every message is normalized to.
const CRLF = "\r\n"

// Sections are the transfer-decoded parts of a report. Missing parts are "".
type Sections struct {
	FirstBodyPart           string
	MachineParsableBodyPart string
	ReturnedMessageBodyPart string
}

// All returns the three parts in message order.
func (s Sections) All() []string {
	return []string{s.FirstBodyPart, s.MachineParsableBodyPart, s.ReturnedMessageBodyPart}
}

// IsZero reports whether no part was found.
func (s Sections) IsZero() bool {
	return s == Sections{}
}

// NormalizeLineEndings converts every line break to CRLF.
func NormalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}

// SplitHeadAndBody splits a message at the first empty line. Without one the
// whole input is the head.
func SplitHeadAndBody(s string) (head, body string) {
	head, body, found := strings.Cut(s, CRLF+CRLF)
	if !found {
		return s, ""
	}
	return head, body
}

// ParseSections splits body on the literal boundary and transfer-decodes the
// first three parts after the preamble. Nested multiparts are not followed.
func ParseSections(body, boundary string) Sections {
	if boundary == "" {
		return Sections{}
	}

	parts := strings.Split(body, boundary)
	part := func(i int) string {
		if i < len(parts) {
			return DecodeTransferEncoding(parts[i])
		}
		return ""
	}

	return Sections{
		FirstBodyPart:           part(1),
		MachineParsableBodyPart: part(2),
		ReturnedMessageBodyPart: part(3),
	}
}
