// Package address finds and normalizes mail addresses in free text.
package address

import (
	"regexp"
	"strings"
)

var (
	mailbox   = regexp.MustCompile(`(?i)\b([A-Z0-9._%-]+@[A-Z0-9.-]+\.[A-Z]{2,4})\b`)
	bracketed = regexp.MustCompile(`[<\[](.*)[>\]]`)
	separator = regexp.MustCompile(`[ "'<>:()\[\]]`)
)

// FindAll returns the first address found in text, or nil. Callers rely on
// getting at most one address per scan.
func FindAll(text string) []string {
	m := mailbox.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return []string{m[1]}
}

// StripAngleBrackets returns the text enclosed by <...> or [...], trimmed.
func StripAngleBrackets(s string) string {
	if m := bracketed.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

// Extract returns the last token of s that looks like an address.
func Extract(s string) string {
	var found string
	for _, part := range separator.Split(s, -1) {
		if strings.Contains(part, "@") {
			found = part
		}
	}
	return found
}

// FindRecipient picks the recipient of a DSN recipient block, preferring the
// Original-Recipient address over the Final-Recipient one.
func FindRecipient(original, final string) string {
	if original != "" {
		return StripAngleBrackets(original)
	}
	return StripAngleBrackets(final)
}
