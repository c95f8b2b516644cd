// Package message provides tools for reading, constructing, and writing
// MIME email messages. A message is either a message.Opaque leaf, whose body
// is just an io.Reader, or a message.Multipart branch, whose body is an
// ordered list of sub-parts. Messages parsed from input are kept
// round-trippable: parts that are not modified write back out
// byte-for-byte.
package message

import (
	"io"

	"github.com/zostay/go-mdmail/message/header"
)

// Part is the interface shared by the parts of a message. Each Part is
// either a branch or a leaf.
//
// A branch Part is one that has sub-parts. In this case, the IsMultipart()
// method returns true, GetParts() returns the sub-parts, and GetReader()
// must not be used.
//
// A leaf Part is one that contains content. In this case, the IsMultipart()
// method returns false, GetReader() returns a reader for the content, and
// GetParts() returns nil.
type Part interface {
	io.WriterTo

	// IsMultipart returns true if this Part is a branch with nested parts.
	IsMultipart() bool

	// IsEncoded returns true if the bytes returned from GetReader() still
	// have the Content-transfer-encoding applied. This is always false for
	// a branch Part.
	IsEncoded() bool

	// GetHeader is available on all Part objects.
	GetHeader() *header.Header

	// GetReader provides the content of the message, but only if
	// IsMultipart() returns false. This must return nil for a branch.
	GetReader() io.Reader

	// GetParts provides the sub-parts of a branch. This must return nil for
	// a leaf.
	GetParts() []Part
}

// Generic is just an alias for Part, which is intended to convey additional
// semantics: the message returned is not necessarily a sub-part of another
// message and is guaranteed to either be a *Opaque or a *Multipart, so it
// is safe to type-switch over those two types.
type Generic = Part
