package convert

import (
	"strings"

	"github.com/zostay/go-mdmail/message/header"
)

// hasFoldPrefix reports whether name starts with prefix, compared
// case-insensitively.
func hasFoldPrefix(name, prefix string) bool {
	return len(name) >= len(prefix) && strings.EqualFold(name[:len(prefix)], prefix)
}

// RelocateHeaders moves the headers of a part being replaced onto the
// container replacing it. Field order is preserved on the destination.
//
// Three rules apply, per field:
//
// * A Bcc field is deleted outright, never copied. Some mail clients stick
// in a fake Bcc header and it must not survive conversion.
//
// * Fields named with a "Content-" or "MIME" prefix describe the source
// part itself, so they stay where they are.
//
// * Every other field is added to the destination and removed from the
// source, so that no field ends up on both parts.
func RelocateHeaders(src, dst *header.Header) {
	i := 0
	for i < src.Len() {
		f := src.GetField(i)
		name := f.Name()
		switch {
		case strings.EqualFold(name, header.Bcc):
			_ = src.DeleteField(i)
		case hasFoldPrefix(name, "Content-") || hasFoldPrefix(name, "MIME"):
			i++
		default:
			dst.Add(name, f.Body())
			_ = src.DeleteField(i)
		}
	}
}
