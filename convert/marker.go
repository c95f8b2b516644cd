package convert

import (
	"regexp"
	"strings"
)

// marker matches the directive line that flags a leaf as markdown source:
// one of "m", "md", or "markdown" on a line of its own at the very start of
// the text, optionally surrounded by spaces or tabs.
var marker = regexp.MustCompile(`^[ \t]*(?:markdown|md?)[ \t]*\r?\n`)

// signatureDelimiter is the conventional separator between a message body
// and the sender's signature.
const signatureDelimiter = "\n-- \n"

// stripMarker tests whether the given leaf text begins with the markdown
// directive line. If it does, it returns the text with exactly that one
// line removed and true. Otherwise it returns the text unchanged and false.
func stripMarker(text string) (string, bool) {
	loc := marker.FindStringIndex(text)
	if loc == nil {
		return text, false
	}
	return text[loc[1]:], true
}

// splitSignature splits leaf text on the first signature delimiter. It
// returns the text before the delimiter, the signature after it (with the
// delimiter itself discarded from both), and whether the delimiter was
// found. A delimiter at the very end of the text counts as found with an
// empty signature.
func splitSignature(text string) (string, string, bool) {
	return strings.Cut(text, signatureDelimiter)
}
