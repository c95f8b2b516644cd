package field

import (
	"bytes"
)

const (
	// DefaultFoldIndent is the indent placed before folded lines.
	DefaultFoldIndent = " "

	// DefaultPreferredFoldLength is the line length we try to stay under.
	DefaultPreferredFoldLength = 78

	// DefaultForcedFoldLength is the line length at which we give up and
	// break mid-word.
	DefaultForcedFoldLength = 998

	// DoNotFold disables folding when used for both fold lengths.
	DoNotFold = -1
)

var (
	// DefaultFoldEncoding folds fields using the usual RFC 5322 limits.
	DefaultFoldEncoding = &FoldEncoding{
		DefaultFoldIndent,
		DefaultPreferredFoldLength,
		DefaultForcedFoldLength,
	}

	// DoNotFoldEncoding performs no folding at all. Parsed headers use this
	// so that output preserves the original bytes.
	DoNotFoldEncoding = &FoldEncoding{
		DefaultFoldIndent,
		DoNotFold,
		DoNotFold,
	}
)

// FoldEncoding describes how to fold header fields during rendering.
type FoldEncoding struct {
	foldIndent          string
	preferredFoldLength int
	forcedFoldLength    int
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' }

// Fold renders the given field bytes with folding applied, using the given
// line break between fold lines. The returned bytes do not include a
// trailing line break.
func (vf *FoldEncoding) Fold(f, lb []byte) []byte {
	if vf.preferredFoldLength == DoNotFold || len(f) <= vf.preferredFoldLength {
		return f
	}

	var out bytes.Buffer
	line := f
	first := true
	writeFold := func(end int) {
		if !first {
			out.Write(lb)
			if !isSpace(line[0]) {
				out.WriteString(vf.foldIndent)
			}
		}
		out.Write(line[:end])
		line = bytes.TrimLeft(line[end:], " \t")
		first = false
	}

	for len(line) > 0 {
		if len(line) <= vf.preferredFoldLength {
			writeFold(len(line))
			continue
		}

		// skip over the field name so it never gets folded
		firstChar := 0
		if first {
			if colon := bytes.IndexByte(line, ':'); colon >= 0 {
				firstChar = colon + 1
				for firstChar < len(line) && isSpace(line[firstChar]) {
					firstChar++
				}
			}
		}

		// best case, break on a space before the preferred length
		if ix := bytes.LastIndexFunc(
			line[firstChar:vf.preferredFoldLength],
			func(c rune) bool { return c == ' ' || c == '\t' },
		); ix > 0 {
			writeFold(firstChar + ix)
			continue
		}

		// otherwise, take the first space after the preferred length
		if ix := bytes.IndexFunc(
			line[firstChar:],
			func(c rune) bool { return c == ' ' || c == '\t' },
		); ix > 0 && firstChar+ix < vf.forcedFoldLength {
			writeFold(firstChar + ix)
			continue
		}

		// no space anywhere useful, force a break if we must
		if len(line) > vf.forcedFoldLength {
			writeFold(vf.forcedFoldLength)
			continue
		}

		writeFold(len(line))
	}

	return out.Bytes()
}
