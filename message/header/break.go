package header

// Break represents the linebreak to use when working with an email header.
type Break string

// Constants for use when selecting a line break for a new header. If you
// don't know what to pick, choose CRLF.
const (
	CRLF Break = "\x0d\x0a" // \r\n - network linebreak
	LF   Break = "\x0a"     // \n - unix linebreak
	CR   Break = "\x0d"     // \r - old Mac linebreak
)

// String returns the break as a string.
func (b Break) String() string {
	return string(b)
}

// Bytes returns the break as a slice of bytes.
func (b Break) Bytes() []byte {
	return []byte(b)
}
