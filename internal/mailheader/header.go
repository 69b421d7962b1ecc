// Package mailheader parses RFC 822 style header blocks as they appear in
// bounce messages, delivery-status parts and feedback reports.
package mailheader

import "strings"

// Kind tags the shape of a header Value.
type Kind uint8

const (
	KindText Kind = iota
	KindMulti
	KindContentType
)

// ContentType is a parsed Content-Type field.
type ContentType struct {
	Type   string            // lowercased media type
	Params map[string]string // lowercased parameter name to unquoted value
}

// Param returns the named parameter, or "".
func (ct ContentType) Param(name string) string {
	return ct.Params[strings.ToLower(name)]
}

// Value holds one header field. Only Received is ever KindMulti and only
// Content-type is ever KindContentType.
type Value struct {
	Kind        Kind
	Text        string
	Multi       []string
	ContentType ContentType
}

// Header is a deduplicated header map that remembers the order in which
// field names were first seen.
type Header struct {
	fields map[string]Value
	order  []string
}

// Received is the only field name that keeps every distinct value.
const Received = "Received"

// CanonicalName lowercases name and upper-cases its first letter, so that
// "CONTENT-TYPE" becomes "Content-type".
func CanonicalName(name string) string {
	name = strings.ToLower(name)
	if name == "" {
		return name
	}
	if c := name[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + name[1:]
	}
	return name
}

// Len returns the number of distinct field names.
func (h Header) Len() int {
	return len(h.fields)
}

// Names returns field names in first-seen order.
func (h Header) Names() []string {
	return append([]string(nil), h.order...)
}

// Get returns the value stored for name.
func (h Header) Get(name string) (Value, bool) {
	v, ok := h.fields[CanonicalName(name)]
	return v, ok
}

// Has reports whether name is present, whatever its kind.
func (h Header) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// TextOK returns a plain text field. It reports false when the field is
// missing or is not plain text.
func (h Header) TextOK(name string) (string, bool) {
	v, ok := h.Get(name)
	if !ok || v.Kind != KindText {
		return "", false
	}
	return v.Text, true
}

// Text returns a plain text field or "".
func (h Header) Text(name string) string {
	s, _ := h.TextOK(name)
	return s
}

// Received returns every distinct Received value.
func (h Header) Received() []string {
	v, ok := h.fields[Received]
	if !ok {
		return nil
	}
	return append([]string(nil), v.Multi...)
}

// ContentType returns the parsed Content-type field.
func (h Header) ContentType() (ContentType, bool) {
	v, ok := h.fields["Content-type"]
	if !ok || v.Kind != KindContentType {
		return ContentType{}, false
	}
	return v.ContentType, true
}

// Boundary returns the multipart boundary parameter, or "".
func (h Header) Boundary() string {
	ct, ok := h.ContentType()
	if !ok {
		return ""
	}
	return ct.Param("boundary")
}

// String flattens a value to text, joining Received values with ", ".
func (v Value) String() string {
	switch v.Kind {
	case KindMulti:
		return strings.Join(v.Multi, ", ")
	case KindContentType:
		return v.ContentType.Type
	}
	return v.Text
}
