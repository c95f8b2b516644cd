package message

import (
	"bufio"
	"errors"
)

// errContinue is a special SplitFunc signal that says to avoid returning
// when the modified scanner loop might otherwise do so. This should only be
// used where a termination condition would otherwise take place.
var errContinue = errors.New("split func continue")

// makeSplitFuncExitByAdvance wraps a bufio.SplitFunc so that the scan
// terminates when the input has been fully advanced rather than when a nil
// token is returned at EOF. This lets the wrapped split function consume
// chunks of input that produce no token (such as a multipart prefix)
// without having to implement its own inner seek loop.
func makeSplitFuncExitByAdvance(split bufio.SplitFunc) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (int, []byte, error) {
		totalAdvance := 0
		for {
			advance, token, err := split(data, atEOF)

			// Return as soon as a token is produced, an error occurs, the
			// split function awaits more input (advance == 0), or the input
			// is used up. The errContinue signal overrides all of that and
			// lets the split function run again on the advanced input.
			if !errors.Is(err, errContinue) &&
				(token != nil || advance == 0 || len(data)-advance <= 0 || err != nil) {
				return totalAdvance + advance, token, err
			}

			data = data[advance:]
			totalAdvance += advance
		}
	}
}
