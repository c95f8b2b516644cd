package message

import (
	"fmt"
	"io"

	"github.com/zostay/go-mdmail/message/header"
)

// Multipart is a multipart MIME message part. The MIME type set in the
// Content-type header should always be a multipart/* type.
type Multipart struct {
	// Header is the header for the message part.
	header.Header

	// prefix and suffix are the bytes before the first boundary and after
	// the final boundary, kept so a message can round-trip byte-for-byte.
	//
	// Some special semantics:
	//
	// * If prefix is nil, the part had no initial boundary at all and none
	// will be output. A non-empty prefix MUST end in a newline or the
	// message produced will not be correct.
	//
	// * If suffix is nil, the part lacks a final boundary and none will be
	// output. A non-empty suffix MUST start with a newline.
	prefix, suffix []byte

	// parts holds this layer's parts
	parts []Part
}

// WriteTo writes the Multipart header and parts to the destination
// io.Writer. This method will fail with an error if the given message does
// not have a boundary parameter set on its Content-type header.
//
// This may only be safely called one time because it will consume all the
// bytes from the io.Reader objects of all the Opaque parts within.
func (mm *Multipart) WriteTo(w io.Writer) (int64, error) {
	boundary, err := mm.GetBoundary()
	if err != nil {
		return 0, err
	}

	br := mm.Break()

	n, err := mm.Header.WriteTo(w)
	if err != nil {
		return n, err
	}

	pn, err := w.Write(mm.prefix)
	n += int64(pn)
	if err != nil {
		return n, err
	}

	if len(mm.parts) > 0 {
		hadContent := false
		for _, part := range mm.parts {
			if hadContent {
				bn, err := fmt.Fprint(w, br)
				n += int64(bn)
				if err != nil {
					return n, err
				}
			}

			bn, err := fmt.Fprintf(w, "--%s%s", boundary, br)
			n += int64(bn)
			if err != nil {
				return n, err
			}

			// only insert a newline if there are some bytes in here...
			hadContent = part.IsMultipart() || part.GetReader() != nil

			pn, err := part.WriteTo(w)
			n += pn
			if err != nil {
				return n, err
			}
		}

		if mm.suffix != nil {
			bn, err := fmt.Fprintf(w, "%s--%s--", br, boundary)
			n += int64(bn)
			if err != nil {
				return n, err
			}
		}
	}

	sn, err := w.Write(mm.suffix)
	n += int64(sn)
	if err != nil {
		return n, err
	}

	return n, nil
}

// IsMultipart always returns true.
func (mm *Multipart) IsMultipart() bool {
	return true
}

// IsEncoded always returns false.
func (mm *Multipart) IsEncoded() bool {
	return false
}

// GetHeader returns the header for the message part.
func (mm *Multipart) GetHeader() *header.Header {
	return &mm.Header
}

// GetReader always returns nil.
func (mm *Multipart) GetReader() io.Reader {
	return nil
}

// GetParts returns the sub-parts of this message or nil if there aren't
// any.
func (mm *Multipart) GetParts() []Part {
	return mm.parts
}

// Preamble returns the bytes found before the first boundary of the part,
// or nil if the part has no initial boundary at all.
func (mm *Multipart) Preamble() []byte {
	return mm.prefix
}

// SetPreamble replaces the bytes output before the first boundary of the
// part. A non-empty preamble must end in a newline.
func (mm *Multipart) SetPreamble(p []byte) {
	mm.prefix = p
}

// MultipartAlternative returns a Multipart with a Content-type header set
// to multipart/alternative and the given parts attached.
func MultipartAlternative(parts ...Part) *Multipart {
	m := &Multipart{
		prefix: []byte{},
		suffix: []byte{},
		parts:  parts,
	}
	m.SetMediaType("multipart/alternative")
	return m
}

// MultipartMixed returns a Multipart with a Content-type header set to
// multipart/mixed and the given parts attached.
func MultipartMixed(parts ...Part) *Multipart {
	m := &Multipart{
		prefix: []byte{},
		suffix: []byte{},
		parts:  parts,
	}
	m.SetMediaType("multipart/mixed")
	return m
}
