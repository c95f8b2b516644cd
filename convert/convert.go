package convert

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/zostay/go-mdmail/message"
	"github.com/zostay/go-mdmail/message/header"
	"github.com/zostay/go-mdmail/message/header/field"
	"github.com/zostay/go-mdmail/message/transfer"
)

// Media types with special meaning to the converter.
const (
	textPlainType    = "text/plain"
	textMarkdownType = "text/markdown"
	textHTMLType     = "text/html"

	signedType       = "multipart/signed"
	pgpSignatureType = "application/pgp-signature"
)

// Converter rewrites the part tree of a parsed email message, replacing
// each leaf marked as markdown source with a multipart/alternative
// container holding the marker-stripped text next to a rendered HTML part.
// Attachment references in the HTML become cid: links and every attachment
// leaf gains a Content-id header, whether or not anything was converted.
type Converter struct {
	// Renderer renders markdown source into HTML.
	Renderer Renderer

	// Inliner inlines the stylesheet onto the rendered HTML. It is only
	// invoked when Style is non-empty.
	Inliner Inliner

	// Style is the contents of the optional stylesheet. When empty, style
	// injection is skipped.
	Style []byte
}

// New constructs a Converter with the standard goldmark renderer, the
// premailer inliner, and the stylesheet found next to the executable (if
// any).
func New() (*Converter, error) {
	style, err := LoadStylesheet()
	if err != nil {
		return nil, err
	}

	return &Converter{
		Renderer: NewGoldmarkRenderer(),
		Inliner:  NewPremailerInliner(),
		Style:    style,
	}, nil
}

// Convert transforms the given message into its converted counterpart. The
// attachment inventory is gathered once, up front, and shared by every
// recursive step. The input tree should be discarded afterward: unconverted
// leaves share their body readers with the output tree.
//
// Conversion is all-or-nothing. If any step fails, no partial tree is
// returned.
func (c *Converter) Convert(msg message.Part) (message.Part, error) {
	names := AttachmentNames(msg)
	out, _, err := c.convertTree(msg, true, names)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// convertTree recursively converts a potentially-multipart tree. It returns
// the replacement part and whether any markdown was found in the subtree.
func (c *Converter) convertTree(
	part message.Part,
	wrap bool,
	names []string,
) (message.Part, bool, error) {
	if !part.IsMultipart() {
		return c.convertLeaf(part, wrap, names)
	}

	if mt, err := part.GetHeader().GetMediaType(); err == nil && mt == signedType {
		return c.convertSigned(part, names)
	}

	return c.convertMultipart(part, names)
}

// convertLeaf handles a leaf part. Inline text leaves are examined for the
// markdown marker and converted when it is present. Attachment leaves gain
// a Content-id header derived from their filename. Everything else passes
// through untouched.
func (c *Converter) convertLeaf(
	part message.Part,
	wrap bool,
	names []string,
) (message.Part, bool, error) {
	h := part.GetHeader()

	disposition := "inline"
	if d, err := h.GetPresentation(); err == nil {
		disposition = d
	}

	if strings.HasPrefix(disposition, "attachment") {
		name, err := h.GetFilename()
		if err != nil {
			return part, false, nil
		}

		nh := h.Clone()
		nh.SetContentID(ContentID(name))
		if op, isOpaque := part.(*message.Opaque); isOpaque {
			return op.WithHeader(nh), false, nil
		}
		return part, false, nil
	}

	if disposition != "inline" {
		return part, false, nil
	}

	mt, err := h.GetMediaType()
	if err != nil {
		mt = textPlainType
	}
	if mt != textPlainType && mt != textMarkdownType {
		return part, false, nil
	}

	r := part.GetReader()
	if r == nil {
		return part, false, nil
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, false, fmt.Errorf("unable to read part body: %w", err)
	}

	text, err := decodeText(h, raw, part.IsEncoded())
	if err != nil {
		return nil, false, err
	}

	stripped, found := stripMarker(text)
	if !found {
		// the reader is spent, so rebuild the leaf from the same bytes
		buf := &message.Buffer{Header: *h}
		_, _ = buf.Write(raw)
		if part.IsEncoded() {
			return buf.OpaqueAlreadyEncoded(), false, nil
		}
		return buf.Opaque(), false, nil
	}

	// the retained text branch is the original leaf minus the marker line,
	// re-stored as UTF-8 with a content-appropriate transfer encoding
	plainBuf := &message.Buffer{Header: *h.Clone()}
	plainBuf.SetMediaType(mt)
	_ = plainBuf.SetCharset("utf-8")
	plainBuf.SetTransferEncoding(pickBitEncoding(stripped))
	_, _ = plainBuf.Write([]byte(stripped))
	plain := plainBuf.Opaque()

	htmlPart, err := c.renderLeaf(stripped, names)
	if err != nil {
		return nil, false, err
	}

	if !wrap {
		return htmlPart, true, nil
	}

	alt := message.MultipartAlternative(plain, htmlPart)
	RelocateHeaders(plain.GetHeader(), alt.GetHeader())
	_ = alt.SetBoundary(message.GenerateBoundary())
	return alt, true, nil
}

// renderLeaf turns marker-stripped leaf text into the rendered HTML leaf:
// signature split, markdown rendering, optional style inlining, and
// attachment reference rewriting.
func (c *Converter) renderLeaf(text string, names []string) (*message.Opaque, error) {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	preSignature, signature, hasSignature := splitSignature(normalized)

	html, err := composeHTML(c.Renderer, preSignature, signature, hasSignature)
	if err != nil {
		return nil, err
	}

	if len(c.Style) > 0 {
		html = "<style>" + string(c.Style) + "</style>" + html
		html, err = c.Inliner.Inline(html)
		if err != nil {
			return nil, err
		}
	}

	html, err = RewriteAttachmentURLs(html, names)
	if err != nil {
		return nil, err
	}

	buf := &message.Buffer{}
	buf.SetMediaType(textHTMLType)
	_ = buf.SetCharset("utf-8")
	buf.SetTransferEncoding(pickBitEncoding(html))
	_, _ = buf.Write([]byte(html))
	return buf.Opaque(), nil
}

// convertSigned handles a multipart/signed part. The signature covers the
// original bytes, so the signed part itself must not be modified. Instead,
// a new alternative container is built around it: each non-signature child
// is converted with wrapping disabled and attached only when it actually
// converted, and the original signed part is attached, untouched, as the
// final child. The detached signature part is never examined for markdown.
//
// The conversion flag reflects the last non-signature child processed, or
// false when there are none.
func (c *Converter) convertSigned(
	part message.Part,
	names []string,
) (message.Part, bool, error) {
	h := part.GetHeader()

	sigType := pgpSignatureType
	if ct, err := h.GetContentType(); err == nil {
		if p := ct.Parameter("protocol"); p != "" {
			sigType = p
		}
	}

	parts := make([]message.Part, 0, len(part.GetParts())+1)
	converted := false
	for _, sub := range part.GetParts() {
		if smt, err := sub.GetHeader().GetMediaType(); err == nil && smt == sigType {
			continue
		}

		// the signed part is serialized verbatim at the end, so conversion
		// works on a copy whose body readers are independent of it
		dup, err := duplicatePart(sub)
		if err != nil {
			return nil, false, err
		}

		rep, didConvert, err := c.convertTree(dup, false, names)
		if err != nil {
			return nil, false, err
		}

		converted = didConvert
		if didConvert {
			parts = append(parts, rep)
		}
	}
	parts = append(parts, part)

	alt := message.MultipartAlternative(parts...)
	RelocateHeaders(h, alt.GetHeader())
	if mp, isMultipart := part.(*message.Multipart); isMultipart {
		if p := mp.Preamble(); len(p) > 0 {
			alt.SetPreamble(p)
		}
	}
	_ = alt.SetBoundary(message.GenerateBoundary())
	return alt, converted, nil
}

// convertMultipart handles every other multipart subtype. A replacement
// container carrying the replaced node's headers and preamble is built, and
// every child is converted in order and attached whether it converted or
// not. The conversion flags of the children are ORed together.
func (c *Converter) convertMultipart(
	part message.Part,
	names []string,
) (message.Part, bool, error) {
	h := part.GetHeader()

	// The node being replaced is discarded, so its Content-* and MIME
	// fields (Content-type with its boundary, MIME-Version) carry over to
	// the replacement verbatim. Relocation then moves the rest and drops
	// Bcc. A missing Content-type or boundary is filled in on output.
	buf := &message.Buffer{}
	hc := h.Clone()
	for _, f := range hc.ListFields() {
		if hasFoldPrefix(f.Name(), "Content-") || hasFoldPrefix(f.Name(), "MIME") {
			buf.Header.Add(f.Name(), f.Body())
		}
	}
	RelocateHeaders(hc, &buf.Header)

	buf.SetMultipart(len(part.GetParts()))
	if mp, isMultipart := part.(*message.Multipart); isMultipart {
		if p := mp.Preamble(); len(p) > 0 {
			buf.SetPreamble(p)
		}
	}

	converted := false
	for _, sub := range part.GetParts() {
		rep, didConvert, err := c.convertTree(sub, true, names)
		if err != nil {
			return nil, false, err
		}

		converted = converted || didConvert
		buf.Add(rep)
	}

	out, err := buf.Multipart()
	if err != nil {
		return nil, false, err
	}
	return out, converted, nil
}

// duplicatePart deep-copies a part tree. Leaf bodies are materialized into
// memory and the original leaves are given fresh readers over the same
// bytes, so the original and the copy can each be consumed once.
func duplicatePart(part message.Part) (message.Part, error) {
	if op, isOpaque := part.(*message.Opaque); isOpaque {
		cp := op.WithHeader(op.GetHeader().Clone())
		if op.Reader != nil {
			raw, err := io.ReadAll(op.Reader)
			if err != nil {
				return nil, fmt.Errorf("unable to read part body: %w", err)
			}
			op.Reader = bytes.NewReader(raw)
			cp.Reader = bytes.NewReader(raw)
		}
		return cp, nil
	}

	buf := &message.Buffer{Header: *part.GetHeader().Clone()}
	if mp, isMultipart := part.(*message.Multipart); isMultipart {
		if p := mp.Preamble(); len(p) > 0 {
			buf.SetPreamble(p)
		}
	}
	buf.SetMultipart(len(part.GetParts()))
	for _, sub := range part.GetParts() {
		dup, err := duplicatePart(sub)
		if err != nil {
			return nil, err
		}
		buf.Add(dup)
	}
	return buf.Multipart()
}

// decodeText returns the body of a text leaf as a native string: the
// transfer encoding is undone if it is still applied and the declared
// charset, if any, is transcoded to UTF-8.
func decodeText(h *header.Header, raw []byte, encoded bool) (string, error) {
	b := raw
	if encoded {
		var err error
		b, err = io.ReadAll(transfer.ApplyTransferDecoding(h, bytes.NewReader(raw)))
		if err != nil {
			return "", fmt.Errorf("unable to decode part body: %w", err)
		}
	}

	cs, err := h.GetCharset()
	if err != nil {
		return string(b), nil
	}

	switch strings.ToLower(cs) {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return string(b), nil
	}

	s, err := field.CharsetDecoder(cs, b)
	if err != nil {
		return "", fmt.Errorf("unable to decode charset %q: %w", cs, err)
	}
	return s, nil
}

// pickBitEncoding selects the transfer encoding for re-stored text: 7bit
// when the text is pure ASCII and 8bit otherwise.
func pickBitEncoding(text string) string {
	for i := 0; i < len(text); i++ {
		if text[i] > 0x7f {
			return transfer.Bit8
		}
	}
	return transfer.Bit7
}
