// Package transfer handles the Content-transfer-encoding of message bodies.
// Bodies are decoded when a message is parsed with decoding enabled and are
// re-encoded when the message is written back out.
package transfer

import (
	"io"

	"github.com/zostay/go-mdmail/message/header"
)

// The transfer encodings we know how to handle.
const (
	None            = ""                 // bytes will be left as-is
	Bit7            = "7bit"             // bytes will be left as-is
	Bit8            = "8bit"             // bytes will be left as-is
	Binary          = "binary"           // bytes will be left as-is
	QuotedPrintable = "quoted-printable" // transformed between quoted-printable and binary
	Base64          = "base64"           // transformed between base64 and binary
)

// Transcoding is a pair of functions that can be used to transform to and
// from a transfer encoding.
type Transcoding struct {
	// Encoder returns an io.WriteCloser, which will encode binary data and
	// write the encoded form to the given io.Writer. You must call Close()
	// on the returned io.WriteCloser when you are finished.
	Encoder func(io.Writer) io.WriteCloser

	// Decoder returns an io.Reader, which will decode the encoded data back
	// into binary form as it reads from the given io.Reader.
	Decoder func(io.Reader) io.Reader
}

// AsIsTranscoder is just a shortcut to a no-op encoder/decoder.
var AsIsTranscoder = Transcoding{NewAsIsEncoder, NewAsIsDecoder}

// Transcodings defines the supported Content-transfer-encodings and how to
// handle them.
var Transcodings = map[string]Transcoding{
	None:            AsIsTranscoder,
	Bit7:            AsIsTranscoder,
	Bit8:            AsIsTranscoder,
	Binary:          AsIsTranscoder,
	QuotedPrintable: {NewQuotedPrintableEncoder, NewQuotedPrintableDecoder},
	Base64:          {NewBase64Encoder, NewBase64Decoder},
}

// writer is an internal helper that makes optional wrapping of an io.Writer
// into an io.WriteCloser easier.
type writer struct {
	io.Writer
	io.Closer
}

// Close closes the nested writer, if it needs closing.
func (w *writer) Close() error {
	if w.Closer != nil {
		return w.Closer.Close()
	}
	return nil
}

// ApplyTransferEncoding checks the given header to see if transfer encoding
// ought to be performed. It returns an io.WriteCloser that will write the
// encoding (or just pass data through if no encoding is necessary).
//
// You must call Close() on the returned io.WriteCloser when you are
// finished writing.
func ApplyTransferEncoding(h *header.Header, w io.Writer) io.WriteCloser {
	cte, err := h.GetTransferEncoding()
	if err != nil {
		return &writer{w, nil}
	}

	if tc, hasCode := Transcodings[cte]; hasCode {
		return tc.Encoder(w)
	}

	return &writer{w, nil}
}

// ApplyTransferDecoding returns an io.Reader that will modify incoming
// bytes according to the transfer encoding detected from the given header.
// The bytes are left as-is when there is no transfer encoding, when the
// encoding is one that is interpreted as-is, or when the part is a
// multipart branch (which cannot carry a transfer encoding).
func ApplyTransferDecoding(h *header.Header, r io.Reader) io.Reader {
	ct, err := h.GetContentType()
	if err == nil && ct != nil && ct.Type() == "multipart" {
		return r
	}

	cte, err := h.GetTransferEncoding()
	if err != nil {
		return r
	}

	if tc, hasCode := Transcodings[cte]; hasCode {
		return tc.Decoder(r)
	}

	return r
}
