package header

import (
	"errors"

	"github.com/zostay/go-mdmail/message/header/field"
)

// Parse will parse the given slice of bytes into an email header using the
// given line break. It assumes the entire input represents the header to be
// parsed.
//
// The parsed header will have field.DoNotFoldEncoding set so that output
// round-trips without modifying the original. Use SetFoldEncoding() if this
// is something you would like to change.
func Parse(m []byte, lb Break) (*Header, error) {
	lines, err := field.ParseLines(m, lb.Bytes())

	var badStartErr *field.BadStartError // recoverable
	var finalErr error
	if errors.As(err, &badStartErr) {
		finalErr = badStartErr
	} else if err != nil {
		return nil, err
	}

	fields := make([]*field.Field, len(lines))
	for i, line := range lines {
		fields[i] = field.Parse(line, lb.Bytes())
	}

	h := &Header{
		Base: Base{
			lbr:    lb,
			vf:     field.DoNotFoldEncoding,
			fields: fields,
		},
	}

	return h, finalErr
}
