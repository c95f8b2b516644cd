package header_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mdmail/message/header"
)

func TestHeader_GetSet(t *testing.T) {
	t.Parallel()

	h := &header.Header{}

	_, err := h.Get(header.Subject)
	assert.ErrorIs(t, err, header.ErrNoSuchField)

	h.SetSubject("test")
	s, err := h.GetSubject()
	assert.NoError(t, err)
	assert.Equal(t, "test", s)

	// lookups are case-insensitive, stored casing is preserved
	s, err = h.Get("SUBJECT")
	assert.NoError(t, err)
	assert.Equal(t, "test", s)
	assert.Equal(t, "Subject", h.GetField(0).Name())

	h.Add("X-Thing", "one")
	h.Add("X-Thing", "two")
	_, err = h.Get("X-Thing")
	assert.ErrorIs(t, err, header.ErrManyFields)

	vs, err := h.GetAll("x-thing")
	assert.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, vs)

	// Set collapses repeats down to one field
	h.Set("X-Thing", "three")
	vs, err = h.GetAll("X-Thing")
	assert.NoError(t, err)
	assert.Equal(t, []string{"three"}, vs)

	h.Delete("X-Thing")
	_, err = h.Get("X-Thing")
	assert.ErrorIs(t, err, header.ErrNoSuchField)
}

func TestHeader_Clone(t *testing.T) {
	t.Parallel()

	h := &header.Header{}
	h.SetSubject("original")

	c := h.Clone()
	c.SetSubject("changed")

	s, err := h.GetSubject()
	assert.NoError(t, err)
	assert.Equal(t, "original", s)
}

func TestHeader_ContentType(t *testing.T) {
	t.Parallel()

	h := &header.Header{}

	h.SetMediaType("text/plain")
	mt, err := h.GetMediaType()
	assert.NoError(t, err)
	assert.Equal(t, "text/plain", mt)

	require.NoError(t, h.SetCharset("utf-8"))
	cs, err := h.GetCharset()
	assert.NoError(t, err)
	assert.Equal(t, "utf-8", cs)

	// changing the media type keeps the parameters
	h.SetMediaType("text/markdown")
	cs, err = h.GetCharset()
	assert.NoError(t, err)
	assert.Equal(t, "utf-8", cs)

	_, err = h.GetBoundary()
	assert.ErrorIs(t, err, header.ErrNoSuchFieldParameter)
}

func TestHeader_ContentTypeManyParameters(t *testing.T) {
	t.Parallel()

	h := &header.Header{}
	h.Set(header.ContentType, "text/plain; charset=UTF-8; format=flowed")

	// rewriting one piece of the value keeps every other parameter
	h.SetMediaType("text/markdown")
	ct, err := h.Get(header.ContentType)
	assert.NoError(t, err)
	assert.Equal(t, "text/markdown; charset=UTF-8; format=flowed", ct)
}

func TestHeader_ContentDisposition(t *testing.T) {
	t.Parallel()

	h := &header.Header{}

	h.SetPresentation("attachment")
	require.NoError(t, h.SetFilename("a b.png"))

	d, err := h.GetPresentation()
	assert.NoError(t, err)
	assert.Equal(t, "attachment", d)

	fn, err := h.GetFilename()
	assert.NoError(t, err)
	assert.Equal(t, "a b.png", fn)
}

func TestHeader_ContentID(t *testing.T) {
	t.Parallel()

	h := &header.Header{}
	h.SetContentID("photo.jpg@attached")

	b, err := h.Get(header.ContentID)
	assert.NoError(t, err)
	assert.Equal(t, "<photo.jpg@attached>", b)

	id, err := h.GetContentID()
	assert.NoError(t, err)
	assert.Equal(t, "photo.jpg@attached", id)
}

func TestHeader_GetTime(t *testing.T) {
	t.Parallel()

	h := &header.Header{}

	h.Set(header.Date, "Mon, 24 Aug 2026 10:15:00 -0400")
	d, err := h.GetDate()
	assert.NoError(t, err)
	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, time.August, d.Month())
	assert.Equal(t, 24, d.Day())

	// non-RFC 5322 dates still parse
	h.Set(header.Date, "2026-08-24 10:15:00")
	d, err = h.GetDate()
	assert.NoError(t, err)
	assert.Equal(t, 24, d.Day())
}

func TestParse(t *testing.T) {
	t.Parallel()

	h, err := header.Parse(
		[]byte("Subject: test\nTo: one@example.com,\n two@example.com\n\n"),
		header.LF,
	)
	require.NoError(t, err)

	s, err := h.GetSubject()
	assert.NoError(t, err)
	assert.Equal(t, "test", s)

	to, err := h.GetTo()
	assert.NoError(t, err)
	assert.Len(t, to, 2)

	// rendering preserves the original bytes, folds included
	assert.Equal(t, "Subject: test\nTo: one@example.com,\n two@example.com\n\n", h.String())
}
