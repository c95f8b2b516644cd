package cmd_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mdmail/cmd/mdmail/cmd"
	"github.com/zostay/go-mdmail/convert"
)

func runFilter(t *testing.T, input string, args []string) (string, error) {
	t.Helper()

	c := &cobra.Command{}
	c.SetIn(strings.NewReader(input))
	out := &bytes.Buffer{}
	c.SetOut(out)

	err := cmd.Run(c, args)
	return out.String(), err
}

func TestRun_PassThrough(t *testing.T) {
	t.Parallel()

	const msg = "Subject: test\n\nNo marker here.\n"

	out, err := runFilter(t, msg, nil)
	require.NoError(t, err)
	assert.Equal(t, msg, out)
}

func TestRun_Converts(t *testing.T) {
	t.Parallel()

	out, err := runFilter(t, "Subject: test\n\nmd\n# Hi\n", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "multipart/alternative")
	assert.Contains(t, out, "<h1>Hi</h1>")
}

func TestRun_DanglingReference(t *testing.T) {
	t.Parallel()

	out, err := runFilter(t, "Subject: test\n\nmd\n![x](nope.jpg)\n", nil)

	var dangling *convert.DanglingReferenceError
	require.ErrorAs(t, err, &dangling)

	// all-or-nothing: a failed conversion emits no output at all
	assert.Empty(t, out)
}

func TestRun_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := runFilter(t, "", []string{"no-such-file.eml"})
	assert.Error(t, err)
}
