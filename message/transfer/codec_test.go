package transfer_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mdmail/message/header"
	"github.com/zostay/go-mdmail/message/transfer"
)

func TestApplyTransferEncoding_Base64(t *testing.T) {
	t.Parallel()

	h := &header.Header{}
	h.SetTransferEncoding(transfer.Base64)

	buf := &bytes.Buffer{}
	w := transfer.ApplyTransferEncoding(h, buf)
	_, err := io.WriteString(w, "Hello, World!")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, "SGVsbG8sIFdvcmxkIQ==\n", buf.String())
}

func TestApplyTransferEncoding_Base64LineLength(t *testing.T) {
	t.Parallel()

	h := &header.Header{}
	h.SetTransferEncoding(transfer.Base64)

	buf := &bytes.Buffer{}
	w := transfer.ApplyTransferEncoding(h, buf)
	_, err := io.WriteString(w, strings.Repeat("x", 300))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		assert.LessOrEqual(t, len(line), 76)
		assert.NotEmpty(t, line)
	}
}

func TestApplyTransferEncoding_QuotedPrintable(t *testing.T) {
	t.Parallel()

	h := &header.Header{}
	h.SetTransferEncoding(transfer.QuotedPrintable)

	buf := &bytes.Buffer{}
	w := transfer.ApplyTransferEncoding(h, buf)
	_, err := io.WriteString(w, "café")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, "caf=C3=A9", buf.String())
}

func TestApplyTransferEncoding_AsIs(t *testing.T) {
	t.Parallel()

	for _, cte := range []string{transfer.Bit7, transfer.Bit8, transfer.Binary} {
		h := &header.Header{}
		h.SetTransferEncoding(cte)

		buf := &bytes.Buffer{}
		w := transfer.ApplyTransferEncoding(h, buf)
		_, err := io.WriteString(w, "as-is content\n")
		require.NoError(t, err)
		require.NoError(t, w.Close())

		assert.Equal(t, "as-is content\n", buf.String())
	}
}

func TestApplyTransferDecoding(t *testing.T) {
	t.Parallel()

	h := &header.Header{}
	h.SetTransferEncoding(transfer.Base64)

	r := transfer.ApplyTransferDecoding(h, strings.NewReader("SGVsbG8s\nIFdvcmxk\nIQ==\n"))
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", string(b))

	h = &header.Header{}
	h.SetTransferEncoding(transfer.QuotedPrintable)

	r = transfer.ApplyTransferDecoding(h, strings.NewReader("caf=C3=A9"))
	b, err = io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "café", string(b))
}

func TestApplyTransferDecoding_Multipart(t *testing.T) {
	t.Parallel()

	// a multipart part never has its body decoded, whatever the header says
	h := &header.Header{}
	h.SetMediaType("multipart/mixed")
	h.SetTransferEncoding(transfer.Base64)

	r := transfer.ApplyTransferDecoding(h, strings.NewReader("not base64"))
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "not base64", string(b))
}
