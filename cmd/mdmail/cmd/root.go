// Package cmd provides the command-line interface of the mdmail filter.
package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zostay/go-mdmail/convert"
	"github.com/zostay/go-mdmail/message"
)

var cmd = &cobra.Command{
	Use:   "mdmail [message]",
	Short: "Filter an email message, rendering marked markdown parts as HTML",
	Long: `Filter an email message. Each text part whose body starts with a marker
line ("m", "md", or "markdown" on a line of its own) is rendered into an
HTML alternative. References to message attachments inside the rendered
HTML become cid: links and quoted signatures are preserved verbatim. The
message is read from the given file (or standard input) and the filtered
message is written to standard output.`,
	Args:         cobra.MaximumNArgs(1),
	RunE:         Run,
	SilenceUsage: true,
}

// Execute runs the filter command, exiting non-zero on any failure.
func Execute() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Run reads the input message, converts it, and writes the result to
// stdout. Nothing is written unless the whole conversion succeeds.
func Run(cmd *cobra.Command, args []string) error {
	in := io.Reader(cmd.InOrStdin())
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("unable to open message: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	msg, err := message.Parse(in)
	if err != nil {
		return fmt.Errorf("unable to parse message: %w", err)
	}

	c, err := convert.New()
	if err != nil {
		return err
	}

	out, err := c.Convert(msg)
	if err != nil {
		return err
	}

	// buffer the whole message so a late failure emits no partial output
	buf := &bytes.Buffer{}
	if _, err := out.WriteTo(buf); err != nil {
		return fmt.Errorf("unable to write message: %w", err)
	}

	_, err = io.Copy(cmd.OutOrStdout(), buf)
	return err
}
