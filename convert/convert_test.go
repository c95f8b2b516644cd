package convert_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mdmail/convert"
	"github.com/zostay/go-mdmail/message"
	"github.com/zostay/go-mdmail/message/header"
)

func parseMessage(t *testing.T, raw string) message.Part {
	t.Helper()
	msg, err := message.Parse(strings.NewReader(raw))
	require.NoError(t, err)
	return msg
}

func newConverter() *convert.Converter {
	return &convert.Converter{
		Renderer: convert.NewGoldmarkRenderer(),
		Inliner:  convert.NewPremailerInliner(),
	}
}

// recordingRenderer remembers everything it is asked to render.
type recordingRenderer struct {
	inputs []string
}

func (r *recordingRenderer) Render(text string) (string, error) {
	r.inputs = append(r.inputs, text)
	return "<p>" + text + "</p>", nil
}

func serialize(t *testing.T, part message.Part) string {
	t.Helper()
	buf := &bytes.Buffer{}
	_, err := part.WriteTo(buf)
	require.NoError(t, err)
	return buf.String()
}

func TestConvert_MarkedLeaf(t *testing.T) {
	t.Parallel()

	msg := parseMessage(t,
		"From: sender@example.com\n"+
			"Subject: test\n"+
			"Content-Type: text/plain\n"+
			"\n"+
			"md\n# Hello\n\nWorld\n-- \nCheers,\nMe")

	out, err := newConverter().Convert(msg)
	require.NoError(t, err)

	require.True(t, out.IsMultipart())
	mt, err := out.GetHeader().GetMediaType()
	assert.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mt)

	// the From and Subject headers move onto the new container
	from, err := out.GetHeader().GetFrom()
	assert.NoError(t, err)
	assert.Len(t, from, 1)

	ps := out.GetParts()
	require.Len(t, ps, 2)

	// the retained text branch has the marker stripped and nothing else
	plain := ps[0]
	mt, err = plain.GetHeader().GetMediaType()
	assert.NoError(t, err)
	assert.Equal(t, "text/plain", mt)

	_, err = plain.GetHeader().GetSubject()
	assert.ErrorIs(t, err, header.ErrNoSuchField)

	cte, err := plain.GetHeader().GetTransferEncoding()
	assert.NoError(t, err)
	assert.Equal(t, "7bit", cte)

	assert.Equal(t, "# Hello\n\nWorld\n-- \nCheers,\nMe", serializeBody(t, plain))

	// the HTML branch is rendered with the signature block kept verbatim
	html := ps[1]
	mt, err = html.GetHeader().GetMediaType()
	assert.NoError(t, err)
	assert.Equal(t, "text/html", mt)

	body := serializeBody(t, html)
	assert.Contains(t, body, "<h1>Hello</h1>")
	assert.Contains(t, body,
		"<pre class=\"signature\" style=\"font-size: small\">-- \nCheers,\nMe</pre>")
}

// serializeBody returns just the body text of a leaf part.
func serializeBody(t *testing.T, part message.Part) string {
	t.Helper()
	b, err := readAll(part)
	require.NoError(t, err)
	return b
}

func readAll(part message.Part) (string, error) {
	buf := &bytes.Buffer{}
	if _, err := buf.ReadFrom(part.GetReader()); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func TestConvert_UnmarkedLeafUntouched(t *testing.T) {
	t.Parallel()

	msg := parseMessage(t, `From: sender@example.com
Content-Type: multipart/mixed; boundary=abc

--abc
Content-Type: text/plain

Just text, no marker.
--abc--
`)

	out, err := newConverter().Convert(msg)
	require.NoError(t, err)

	require.True(t, out.IsMultipart())
	ps := out.GetParts()
	require.Len(t, ps, 1)

	// the unmarked leaf round-trips byte for byte
	assert.Equal(t,
		"Content-Type: text/plain\n\nJust text, no marker.",
		serialize(t, ps[0]))
}

func TestConvert_ContainerHeadersCarried(t *testing.T) {
	t.Parallel()

	msg := parseMessage(t, `From: sender@example.com
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary=abc

--abc
Content-Type: text/plain

md
Hello
--abc--
`)

	out, err := newConverter().Convert(msg)
	require.NoError(t, err)

	// the rebuilt container keeps the message-level MIME fields
	v, err := out.GetHeader().Get("MIME-Version")
	assert.NoError(t, err)
	assert.Equal(t, "1.0", v)

	bnd, err := out.GetHeader().GetBoundary()
	assert.NoError(t, err)
	assert.Equal(t, "abc", bnd)

	s := serialize(t, out)
	assert.Equal(t, 1, strings.Count(s, "MIME-Version: 1.0"))
}

func TestConvert_EmptySignature(t *testing.T) {
	t.Parallel()

	msg := parseMessage(t,
		"From: sender@example.com\n"+
			"Content-Type: text/plain\n"+
			"\n"+
			"md\nBye for now\n-- \n")

	out, err := newConverter().Convert(msg)
	require.NoError(t, err)

	ps := out.GetParts()
	require.Len(t, ps, 2)

	// the delimiter alone still produces the signature block
	body := serializeBody(t, ps[1])
	assert.Contains(t, body,
		"<pre class=\"signature\" style=\"font-size: small\">-- \n</pre>")
}

func TestConvert_AttachmentReferences(t *testing.T) {
	t.Parallel()

	msg := parseMessage(t, `From: sender@example.com
Content-Type: multipart/mixed; boundary=abc

--abc
Content-Type: text/plain

md
Look: ![pic](photo.jpg)
--abc
Content-Type: image/jpeg
Content-Disposition: attachment; filename=photo.jpg
Content-Transfer-Encoding: base64

/9j/4AAQSkZJRg==
--abc--
`)

	out, err := newConverter().Convert(msg)
	require.NoError(t, err)

	ps := out.GetParts()
	require.Len(t, ps, 2)

	// the image reference becomes a cid: link
	require.True(t, ps[0].IsMultipart())
	alt := ps[0].GetParts()
	require.Len(t, alt, 2)
	assert.Contains(t, serializeBody(t, alt[1]), `src="cid:photo.jpg@attached"`)

	// the attachment gains the matching Content-id header
	id, err := ps[1].GetHeader().GetContentID()
	assert.NoError(t, err)
	assert.Equal(t, "photo.jpg@attached", id)

	// and its content is otherwise untouched
	s := serialize(t, ps[1])
	assert.Contains(t, s, "Content-Transfer-Encoding: base64")
	assert.Contains(t, s, "/9j/4AAQSkZJRg==")
}

func TestConvert_DanglingReference(t *testing.T) {
	t.Parallel()

	msg := parseMessage(t, `From: sender@example.com
Content-Type: text/plain

md
See [the file](missing.jpg).`)

	out, err := newConverter().Convert(msg)
	assert.Nil(t, out)

	var dangling *convert.DanglingReferenceError
	require.ErrorAs(t, err, &dangling)
	assert.Equal(t, "missing.jpg", dangling.URL)
}

func TestConvert_Signed(t *testing.T) {
	t.Parallel()

	msg := parseMessage(t, `From: sender@example.com
Content-Type: multipart/signed; boundary=sig; protocol="application/pgp-signature"

--sig
Content-Type: text/plain

md
Hello
--sig
Content-Type: application/pgp-signature

FAKESIG
--sig--
`)

	rec := &recordingRenderer{}
	c := &convert.Converter{Renderer: rec}

	out, err := c.Convert(msg)
	require.NoError(t, err)

	require.True(t, out.IsMultipart())
	mt, err := out.GetHeader().GetMediaType()
	assert.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mt)

	// the signature part never reaches the renderer
	require.Len(t, rec.inputs, 1)
	assert.Equal(t, "Hello", rec.inputs[0])

	ps := out.GetParts()
	require.Len(t, ps, 2)

	// the HTML rendering is attached unwrapped
	mt, err = ps[0].GetHeader().GetMediaType()
	assert.NoError(t, err)
	assert.Equal(t, "text/html", mt)

	// the original signed part comes last, byte for byte, signature intact
	assert.Equal(t, `Content-Type: multipart/signed; boundary=sig; protocol="application/pgp-signature"

--sig
Content-Type: text/plain

md
Hello
--sig
Content-Type: application/pgp-signature

FAKESIG
--sig--
`, serialize(t, ps[1]))
}

func TestConvert_BccNeverSurvives(t *testing.T) {
	t.Parallel()

	msg := parseMessage(t, `From: sender@example.com
Subject: test
Bcc: secret@example.com
Content-Type: text/plain

md
Hello`)

	out, err := newConverter().Convert(msg)
	require.NoError(t, err)

	s := serialize(t, out)
	assert.NotContains(t, s, "Bcc")
	assert.NotContains(t, s, "secret@example.com")

	// relocated headers appear exactly once in the whole output
	assert.Equal(t, 1, strings.Count(s, "Subject: test"))
	assert.Equal(t, 1, strings.Count(s, "From: sender@example.com"))
}

func TestConvert_NestedMultipart(t *testing.T) {
	t.Parallel()

	msg := parseMessage(t, `From: sender@example.com
Content-Type: multipart/mixed; boundary=outer

--outer
Content-Type: multipart/alternative; boundary=inner

--inner
Content-Type: text/plain

md
Deep hello
--inner--
--outer--
`)

	out, err := newConverter().Convert(msg)
	require.NoError(t, err)

	// mixed > alternative > alternative > [plain, html]
	require.True(t, out.IsMultipart())
	ps := out.GetParts()
	require.Len(t, ps, 1)

	require.True(t, ps[0].IsMultipart())
	inner := ps[0].GetParts()
	require.Len(t, inner, 1)

	require.True(t, inner[0].IsMultipart())
	leafs := inner[0].GetParts()
	require.Len(t, leafs, 2)
	assert.Equal(t, "Deep hello", serializeBody(t, leafs[0]))
	assert.Contains(t, serializeBody(t, leafs[1]), "Deep hello")
}

func TestConvert_StyleInjection(t *testing.T) {
	t.Parallel()

	msg := parseMessage(t, `From: sender@example.com
Content-Type: text/plain

md
Hello`)

	c := newConverter()
	c.Style = []byte("p { color: #222222 }")

	out, err := c.Convert(msg)
	require.NoError(t, err)

	ps := out.GetParts()
	require.Len(t, ps, 2)

	// the stylesheet rule ends up inlined on the rendered element
	body := serializeBody(t, ps[1])
	assert.Contains(t, body, "style=")
	assert.Contains(t, body, "#222222")
	assert.NotContains(t, body, "<style>")
}
