package message

import (
	"io"

	"github.com/zostay/go-mdmail/message/header"
	"github.com/zostay/go-mdmail/message/transfer"
)

// Opaque is the base-level email message part. It is simply a header and a
// message body, very similar to the net/mail message implementation.
type Opaque struct {
	// Header contains the header of the message part.
	header.Header

	// Reader contains the body content of the message part. If the content
	// is zero bytes long, Reader should be set to nil.
	io.Reader

	// encoded tracks whether the body still has the
	// Content-transfer-encoding applied. Parsing leaves encoding in place
	// by default unless the DecodeTransferEncoding() option is given.
	encoded bool
}

// WriteTo writes the Opaque header and body to the destination io.Writer.
//
// If the body bytes have had their Content-transfer-encoding decoded, this
// will re-encode the data as it is being written.
//
// This can only be safely called once as it will consume the io.Reader.
func (m *Opaque) WriteTo(w io.Writer) (int64, error) {
	var tw io.WriteCloser
	if !m.encoded {
		tw = transfer.ApplyTransferEncoding(&m.Header, w)
		defer func() { _ = tw.Close() }()
	}

	total, err := m.Header.WriteTo(w)
	if err != nil {
		return total, err
	}

	if tw != nil {
		w = tw
	}

	if m.Reader != nil {
		bn, err := io.Copy(w, m.Reader)
		total += bn
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// WithHeader returns a copy of this message part that uses the given header
// in place of the original. The body io.Reader is shared between the copy
// and the original, so only one of the two may be consumed.
func (m *Opaque) WithHeader(h *header.Header) *Opaque {
	return &Opaque{
		Header:  *h,
		Reader:  m.Reader,
		encoded: m.encoded,
	}
}

// IsMultipart always returns false.
func (m *Opaque) IsMultipart() bool {
	return false
}

// IsEncoded returns true if the Content-transfer-encoding has not been
// decoded for the bytes returned by the associated io.Reader.
//
// If this returns true, then reading the data from the io.Reader will
// return exactly the same bytes as would be written via WriteTo().
func (m *Opaque) IsEncoded() bool {
	return m.encoded
}

// GetHeader returns the header for the message part.
func (m *Opaque) GetHeader() *header.Header {
	return &m.Header
}

// GetReader returns the reader containing the body of the message part.
func (m *Opaque) GetReader() io.Reader {
	return m.Reader
}

// GetParts always returns nil.
func (m *Opaque) GetParts() []Part {
	return nil
}
