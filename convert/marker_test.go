package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarker(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name   string
		in     string
		out    string
		marked bool
	}{
		{"md", "md\nHello", "Hello", true},
		{"m", "m\nHello", "Hello", true},
		{"markdown", "markdown\nHello", "Hello", true},
		{"indented", "  \tmd\nHello", "Hello", true},
		{"trailing space", "md \nHello", "Hello", true},
		{"crlf", "md\r\nHello", "Hello", true},
		{"only once", "md\nmd\nHello", "md\nHello", true},
		{"no marker", "Hello", "Hello", false},
		{"not at start", "Hello\nmd\nWorld", "Hello\nmd\nWorld", false},
		{"not a whole line", "media\nHello", "media\nHello", false},
		{"joined to text", "mdHello", "mdHello", false},
		{"no newline", "md", "md", false},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, marked := stripMarker(tt.in)
			assert.Equal(t, tt.marked, marked)
			assert.Equal(t, tt.out, out)
		})
	}
}

func TestSplitSignature(t *testing.T) {
	t.Parallel()

	pre, sig, found := splitSignature("Hello\n-- \nBye")
	assert.True(t, found)
	assert.Equal(t, "Hello", pre)
	assert.Equal(t, "Bye", sig)

	// no delimiter, no signature
	pre, sig, found = splitSignature("Hello\nBye")
	assert.False(t, found)
	assert.Equal(t, "Hello\nBye", pre)
	assert.Equal(t, "", sig)

	// the delimiter must have the trailing space
	pre, sig, found = splitSignature("Hello\n--\nBye")
	assert.False(t, found)
	assert.Equal(t, "Hello\n--\nBye", pre)
	assert.Equal(t, "", sig)

	// only the first delimiter splits
	pre, sig, found = splitSignature("a\n-- \nb\n-- \nc")
	assert.True(t, found)
	assert.Equal(t, "a", pre)
	assert.Equal(t, "b\n-- \nc", sig)

	// a delimiter at the very end counts, with an empty signature
	pre, sig, found = splitSignature("Hello\n-- \n")
	assert.True(t, found)
	assert.Equal(t, "Hello", pre)
	assert.Equal(t, "", sig)
}
