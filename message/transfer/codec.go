package transfer

import (
	"encoding/base64"
	"io"
	"mime/quotedprintable"
)

const defaultBase64LineLength = 76

var defaultBase64LineBreak = []byte{'\n'}

// NewAsIsEncoder returns an io.WriteCloser that writes bytes as-is.
func NewAsIsEncoder(w io.Writer) io.WriteCloser {
	return &writer{w, nil}
}

// NewAsIsDecoder returns an io.Reader that reads bytes as-is.
func NewAsIsDecoder(r io.Reader) io.Reader {
	return r
}

// NewQuotedPrintableEncoder will transform all bytes written to the
// returned io.WriteCloser into quoted-printable form and write them to the
// given io.Writer.
func NewQuotedPrintableEncoder(w io.Writer) io.WriteCloser {
	qpw := quotedprintable.NewWriter(w)
	return &writer{qpw, qpw}
}

// NewQuotedPrintableDecoder will read bytes from the given io.Reader and
// return them in the returned io.Reader after decoding them from
// quoted-printable format.
func NewQuotedPrintableDecoder(r io.Reader) io.Reader {
	return quotedprintable.NewReader(r)
}

// newlineWriter inserts a line break every so many bytes of output. Base64
// requires this to keep its lines within the limit set by RFC 2045.
type newlineWriter struct {
	every int
	acc   int
	lbr   []byte
	w     io.Writer
}

func (nw *newlineWriter) Write(b []byte) (int, error) {
	n := 0
	for len(b)+nw.acc > nw.every {
		take := nw.every - nw.acc
		ln, err := nw.w.Write(b[:take])
		n += ln
		if err != nil {
			return n, err
		}

		if _, err := nw.w.Write(nw.lbr); err != nil {
			return n, err
		}

		b = b[take:]
		nw.acc = 0
	}

	ln, err := nw.w.Write(b)
	n += ln
	if err != nil {
		return n, err
	}

	nw.acc += len(b)

	return n, nil
}

func (nw *newlineWriter) Close() error {
	_, err := nw.w.Write(nw.lbr)
	if wc, isCloser := nw.w.(io.Closer); isCloser {
		if cerr := wc.Close(); cerr != nil {
			return cerr
		}
	}
	return err
}

// NewBase64Encoder will translate all bytes written to the returned
// io.WriteCloser into base64 encoding, broken into lines, and write those
// to the given io.Writer.
func NewBase64Encoder(w io.Writer) io.WriteCloser {
	nw := &newlineWriter{
		every: defaultBase64LineLength,
		lbr:   defaultBase64LineBreak,
		w:     w,
	}
	enc := base64.NewEncoder(base64.StdEncoding, nw)
	return &writer{enc, &base64Closer{enc, nw}}
}

// base64Closer closes the base64 encoder before the line writer so the
// final partial group and line break are flushed in order.
type base64Closer struct {
	enc io.Closer
	nw  io.Closer
}

func (c *base64Closer) Close() error {
	if err := c.enc.Close(); err != nil {
		return err
	}
	return c.nw.Close()
}

// NewBase64Decoder will translate all bytes read from the given io.Reader
// as base64 and return the binary data from the returned io.Reader.
func NewBase64Decoder(r io.Reader) io.Reader {
	return base64.NewDecoder(base64.StdEncoding, newlineFilter{r})
}

// newlineFilter strips line breaks from base64 input before decoding.
type newlineFilter struct {
	r io.Reader
}

func (f newlineFilter) Read(p []byte) (int, error) {
	n, err := f.r.Read(p)
	out := 0
	for i := 0; i < n; i++ {
		if p[i] == '\r' || p[i] == '\n' {
			continue
		}
		p[out] = p[i]
		out++
	}
	return out, err
}
