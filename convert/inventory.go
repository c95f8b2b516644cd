package convert

import (
	"github.com/zostay/go-mdmail/message"
	"github.com/zostay/go-mdmail/message/walk"
)

// AttachmentNames walks the given message and collects the filename of
// every leaf part that has a Content-disposition header and a filename set
// on it. The names are collected in depth-first order and duplicates are
// kept. Parts without a disposition or a filename are silently skipped.
//
// The returned inventory is built once per message, before any conversion,
// and is consumed read-only by the attachment link rewriter.
func AttachmentNames(msg message.Part) []string {
	names := make([]string, 0, 10)
	_ = walk.AndProcess(func(part message.Part, _ []message.Part) error {
		if part.IsMultipart() {
			return nil
		}

		h := part.GetHeader()
		if _, err := h.GetPresentation(); err != nil {
			return nil
		}

		if name, err := h.GetFilename(); err == nil {
			names = append(names, name)
		}

		return nil
	}, msg)
	return names
}

// knownAttachment reports whether name exactly matches one of the
// inventoried attachment filenames.
func knownAttachment(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
