package param_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zostay/go-mdmail/message/header/param"
)

func TestParse(t *testing.T) {
	t.Parallel()

	v, err := param.Parse("text/plain; charset=UTF-8")
	assert.NoError(t, err)
	assert.Equal(t, "text/plain", v.MediaType())
	assert.Equal(t, "text", v.Type())
	assert.Equal(t, "plain", v.Subtype())
	assert.Equal(t, "UTF-8", v.Charset())
	assert.Equal(t, "text/plain; charset=UTF-8", v.String())
}

func TestString_ManyParameters(t *testing.T) {
	t.Parallel()

	v, err := param.Parse("text/plain; charset=ISO-8859-1; format=flowed")
	assert.NoError(t, err)
	assert.Equal(t, "text/plain; charset=ISO-8859-1; format=flowed", v.String())

	// values needing quotes keep them
	v = param.New("attachment", map[string]string{
		"filename": "a b.png",
		"size":     "1024",
	})
	assert.Equal(t, `attachment; filename="a b.png"; size=1024`, v.String())
}

func TestParse_Disposition(t *testing.T) {
	t.Parallel()

	v, err := param.Parse("attachment; filename=photo.jpg")
	assert.NoError(t, err)
	assert.Equal(t, "attachment", v.Presentation())
	assert.Equal(t, "photo.jpg", v.Filename())
	assert.Equal(t, "", v.Type())
}

func TestModify(t *testing.T) {
	t.Parallel()

	v := param.New("multipart/mixed")
	assert.Equal(t, "", v.Boundary())

	w := param.Modify(v, param.Set(param.Boundary, "abc123"))
	assert.Equal(t, "abc123", w.Boundary())
	assert.Equal(t, "multipart/mixed; boundary=abc123", w.String())

	// the original is untouched
	assert.Equal(t, "", v.Boundary())

	w = param.Modify(w,
		param.Change("multipart/alternative"),
		param.Delete(param.Boundary),
	)
	assert.Equal(t, "multipart/alternative", w.MediaType())
	assert.Equal(t, "", w.Boundary())
}
