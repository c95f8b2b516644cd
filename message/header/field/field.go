package field

import (
	"bytes"
	"fmt"
)

// Field represents an individual header field. It preserves the original raw
// bytes of the field when it was parsed from an existing header, which allows
// a message to round-trip without modification. As soon as the name or body
// is changed, the original bytes are discarded and the field is rendered
// fresh on output.
type Field struct {
	name string
	body string
	raw  []byte
}

// New creates a new header field with the given name and body.
func New(name, body string) *Field {
	return &Field{name: name, body: body}
}

// Name returns the name of the header field.
func (f *Field) Name() string {
	return f.name
}

// Body returns the body of the header field.
func (f *Field) Body() string {
	return f.body
}

// SetName updates the name of the header field. This invalidates any raw
// bytes stored from parsing.
func (f *Field) SetName(name string) {
	f.name = name
	f.raw = nil
}

// SetBody updates the body of the header field. This invalidates any raw
// bytes stored from parsing.
func (f *Field) SetBody(body string) {
	f.body = body
	f.raw = nil
}

// SetRaw replaces the bytes rendered for this field without touching the
// parsed name and body. Use with care: the given bytes are output verbatim.
func (f *Field) SetRaw(raw []byte) {
	f.raw = raw
}

// Bytes returns the rendered bytes of the field. If the field still carries
// its original parsed bytes, those are returned unchanged.
func (f *Field) Bytes() []byte {
	if f.raw != nil {
		return f.raw
	}
	return []byte(fmt.Sprintf("%s: %s", f.name, f.body))
}

// String returns the rendered field as a string.
func (f *Field) String() string {
	return string(f.Bytes())
}

// BadStartError is returned by ParseLines when the given header does not
// start with a valid header field line.
type BadStartError struct {
	// BadStart contains the bytes at the start of the header that could not
	// be interpreted as the start of a field.
	BadStart []byte
}

// Error returns the error message.
func (e *BadStartError) Error() string {
	return "header starts with text that does not appear to be a header field"
}

// ParseLines splits the bytes of a header into individual field lines.
// Folded lines are gathered into a single field line, with the interior line
// breaks left in place so that the original bytes are preserved.
//
// If the header begins with bytes that cannot start a field (such as leading
// whitespace), those bytes are skipped and a *BadStartError describing them
// is returned along with the lines that could be parsed.
func ParseLines(m, lb []byte) ([][]byte, error) {
	lines := make([][]byte, 0, bytes.Count(m, lb))
	var badStart []byte
	for _, line := range bytes.SplitAfter(m, lb) {
		if len(bytes.TrimRight(line, string(lb))) == 0 {
			continue
		}

		if line[0] == ' ' || line[0] == '\t' {
			if len(lines) == 0 {
				badStart = append(badStart, line...)
				continue
			}

			// continuation of a folded field
			lines[len(lines)-1] = append(lines[len(lines)-1], line...)
			continue
		}

		lines = append(lines, line)
	}

	if badStart != nil {
		return lines, &BadStartError{badStart}
	}
	return lines, nil
}

// Parse builds a Field from a single (possibly folded) field line. The
// original bytes are retained for round-tripping. The parsed body is
// unfolded and has the leading space after the colon removed.
func Parse(line, lb []byte) *Field {
	raw := bytes.TrimRight(line, string(lb))

	colon := bytes.IndexByte(raw, ':')
	if colon < 0 {
		return &Field{
			name: string(raw),
			raw:  raw,
		}
	}

	name := string(raw[:colon])
	body := UnfoldValue(raw[colon+1:], lb)

	return &Field{
		name: name,
		body: string(body),
		raw:  raw,
	}
}

// UnfoldValue removes folding from a field body and trims the conventional
// leading whitespace so the semantic value remains.
func UnfoldValue(v, lb []byte) []byte {
	uf := make([]byte, 0, len(v))
	for _, b := range v {
		if b != '\r' && b != '\n' {
			uf = append(uf, b)
		}
	}
	return bytes.TrimLeft(uf, " \t")
}
