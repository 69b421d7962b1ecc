package mailheader

import (
	"regexp"
	"slices"
	"strings"
)

var (
	fieldLine  = regexp.MustCompile(`^([^\s.]*):\s*(.*)`)
	foldedLine = regexp.MustCompile(`^\s+(.+)`)
	ctParam    = regexp.MustCompile(`([^=.]*?)=(.*)`)
)

// Parse parses a CRLF separated header block and expands Content-type into
// its media type and parameters.
func Parse(text string) Header {
	return ParseLines(strings.Split(text, "\r\n"))
}

// ParseLines is Parse over lines that are already split.
func ParseLines(lines []string) Header {
	h := ParseKeyValueLines(lines)
	if v, ok := h.fields["Content-type"]; ok && v.Kind == KindText {
		h.fields["Content-type"] = Value{Kind: KindContentType, ContentType: parseContentType(v.Text)}
	}
	return h
}

// ParseKeyValue parses a CRLF separated block of "Name: value" lines without
// any field specific post-processing.
func ParseKeyValue(text string) Header {
	return ParseKeyValueLines(strings.Split(text, "\r\n"))
}

// ParseKeyValueLines is ParseKeyValue over lines that are already split.
//
// A "name: value" line starts a field and a line starting with whitespace
// folds into the field before it. Any other line ends the field, so later
// indented lines are ignored until the next field starts. The first
// non-empty value of a name wins.
func ParseKeyValueLines(lines []string) Header {
	h := Header{fields: map[string]Value{}}

	var active string // field that folded lines extend
	folding := false

	for _, line := range lines {
		if line == "" {
			continue
		}

		if m := fieldLine.FindStringSubmatch(line); m != nil {
			active = CanonicalName(m[1])
			folding = h.add(active, strings.TrimSpace(DecodeWords(m[2])))
			continue
		}

		if m := foldedLine.FindStringSubmatch(line); m != nil && folding {
			h.fold(active, DecodeWords(m[1]))
			continue
		}

		folding = false
	}

	return h
}

// add stores value under name and reports whether later folded lines belong
// to it.
func (h *Header) add(name, value string) bool {
	cur, exists := h.fields[name]
	if !exists {
		h.order = append(h.order, name)
	}

	if name == Received {
		switch {
		case !exists:
			h.fields[name] = Value{Kind: KindMulti, Multi: []string{value}}
			return true
		case len(cur.Multi) == 1 && cur.Multi[0] == "":
			cur.Multi[0] = value
			return true
		case value != "" && !slices.Contains(cur.Multi, value):
			cur.Multi = append(cur.Multi, value)
			h.fields[name] = cur
			return true
		}
		return false
	}

	if exists && cur.Text != "" {
		return false
	}
	h.fields[name] = Value{Kind: KindText, Text: value}
	return true
}

func (h *Header) fold(name, continuation string) {
	cur := h.fields[name]
	switch cur.Kind {
	case KindMulti:
		last := len(cur.Multi) - 1
		cur.Multi[last] = join(cur.Multi[last], continuation)
	default:
		cur.Text = join(cur.Text, continuation)
	}
	h.fields[name] = cur
}

func join(value, continuation string) string {
	if value == "" {
		return continuation
	}
	return value + " " + continuation
}

func parseContentType(value string) ContentType {
	segments := strings.Split(value, ";")
	ct := ContentType{
		Type:   strings.ToLower(segments[0]),
		Params: map[string]string{},
	}
	for _, seg := range segments {
		if m := ctParam.FindStringSubmatch(seg); m != nil {
			ct.Params[strings.ToLower(strings.TrimSpace(m[1]))] = strings.ReplaceAll(m[2], `"`, "")
		}
	}
	return ct
}
