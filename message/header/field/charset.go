package field

import (
	"fmt"
	"io"
	"mime"
	"strings"

	_ "golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// CharsetDecoder converts bytes in the named character set into a native
// unicode string. It handles pretty much any character set registered with
// IANA via golang.org/x/text.
func CharsetDecoder(charset string, b []byte) (string, error) {
	e, err := ianaindex.MIME.Encoding(charset)
	if err != nil {
		return "", err
	}

	if e == nil {
		return "", fmt.Errorf("no encoding found for charset %q", charset)
	}

	eb, err := e.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}

	return string(eb), nil
}

// CharsetEncoder converts a native unicode string into bytes in the named
// character set.
func CharsetEncoder(charset, s string) ([]byte, error) {
	e, err := ianaindex.MIME.Encoding(charset)
	if err != nil {
		return nil, err
	}

	if e == nil {
		return nil, fmt.Errorf("no encoding found for charset %q", charset)
	}

	es, err := e.NewEncoder().String(s)
	if err != nil {
		return nil, err
	}

	return []byte(es), nil
}

// CharsetDecoderToCharsetReader adapts a decoder function of the
// CharsetDecoder sort into the CharsetReader interface expected by
// mime.WordDecoder.
func CharsetDecoderToCharsetReader(
	decode func(charset string, b []byte) (string, error),
) func(charset string, r io.Reader) (io.Reader, error) {
	return func(charset string, r io.Reader) (io.Reader, error) {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		s, err := decode(charset, b)
		if err != nil {
			return nil, err
		}

		return strings.NewReader(s), nil
	}
}

// Decode transforms a single header field body by looking for MIME encoded
// words. When they are found, these are decoded into native unicode.
func Decode(body string) (string, error) {
	if !strings.Contains(body, "=?") {
		return body, nil
	}

	dec := &mime.WordDecoder{
		CharsetReader: CharsetDecoderToCharsetReader(CharsetDecoder),
	}
	return dec.DecodeHeader(body)
}

// Encode transforms a single header field body by encoding any characters
// not allowed in a header into MIME encoded words. It always outputs b-type
// (base64) words using UTF-8 as the character set.
func Encode(body string) string {
	return mime.BEncoding.Encode("utf-8", body)
}
