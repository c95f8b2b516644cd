package message

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/zostay/go-mdmail/message/header"
	"github.com/zostay/go-mdmail/message/transfer"
)

// Constants related to Parse() options.
const (
	// DefaultMaxMultipartDepth is the default depth the parser will recurse
	// into a message.
	DefaultMaxMultipartDepth = 10

	// DefaultChunkSize is the default size of chunks to read from the input
	// while splitting the message into header and body.
	DefaultChunkSize = 16_384

	// DefaultMaxHeaderLength is the default maximum byte length to scan
	// before giving up on finding the end of the header.
	DefaultMaxHeaderLength = bufio.MaxScanTokenSize

	// DefaultMaxPartLength is the default maximum byte length to scan
	// before giving up on scanning a message part at any given level.
	DefaultMaxPartLength = bufio.MaxScanTokenSize
)

// Errors that occur during parsing.
var (
	// ErrNoBoundary is returned by Parse when the boundary parameter is not
	// set on the Content-type field of a multipart message header.
	ErrNoBoundary = errors.New("the boundary parameter is missing from Content-type")

	// ErrLargeHeader is returned by Parse when the header is longer than
	// the configured WithMaxHeaderLength option.
	ErrLargeHeader = errors.New("the header exceeds the maximum parse length")

	// ErrLargePart is returned by Parse when a part is longer than the
	// configured WithMaxPartLength option.
	ErrLargePart = errors.New("a message part exceeds the maximum parse length")
)

var splits = [][]byte{
	[]byte("\x0d\x0a\x0d\x0a"), // \r\n\r\n
	[]byte("\x0a\x0d\x0a\x0d"), // \n\r\n\r, extremely unlikely, possibly never
	[]byte("\x0a\x0a"),         // \n\n
	[]byte("\x0d\x0d"),         // \r\r
}

type parser struct {
	maxHeaderLen int
	maxPartLen   int
	maxDepth     int
	chunkSize    int
	decode       bool
}

func (pr *parser) clone() *parser {
	p := *pr
	return &p
}

var defaultParser = &parser{
	maxHeaderLen: DefaultMaxHeaderLength,
	maxPartLen:   DefaultMaxPartLength,
	maxDepth:     DefaultMaxMultipartDepth,
	chunkSize:    DefaultChunkSize,
	decode:       false,
}

// ParseOption refers to options that may be passed to the Parse function to
// modify how the parser works.
type ParseOption func(pr *parser)

// WithMaxHeaderLength is a ParseOption that sets the maximum size the
// buffer is allowed to reach before parsing exits with ErrLargeHeader.
// Setting this to a value less than or equal to 0 removes the limit.
func WithMaxHeaderLength(n int) ParseOption {
	return func(pr *parser) { pr.maxHeaderLen = n }
}

// WithMaxPartLength is a ParseOption that sets the maximum size the buffer
// is allowed to reach while scanning for message parts at any level. If a
// part gets too large, Parse will fail with ErrLargePart.
func WithMaxPartLength(n int) ParseOption {
	return func(pr *parser) { pr.maxPartLen = n }
}

// DecodeTransferEncoding is a ParseOption that enables the decoding of
// Content-transfer-encoding. By default, Content-transfer-encoding will not
// be decoded, which allows for safer round-tripping of messages. However,
// if you want to display or process the message body, you will want to
// enable this.
func DecodeTransferEncoding() ParseOption {
	return func(pr *parser) { pr.decode = true }
}

// WithChunkSize is a ParseOption that controls how many bytes to read at a
// time while parsing an email message.
func WithChunkSize(chunkSize int) ParseOption {
	return func(pr *parser) { pr.chunkSize = chunkSize }
}

// WithMaxDepth is a ParseOption that controls how deep the parser will go
// in recursively parsing a multipart message.
func WithMaxDepth(maxDepth int) ParseOption {
	return func(pr *parser) { pr.maxDepth = maxDepth }
}

// WithoutMultipart is a ParseOption that will not allow parsing of any
// multipart messages. The message returned from Parse() will always be
// *Opaque.
func WithoutMultipart() ParseOption {
	return func(pr *parser) { pr.maxDepth = 0 }
}

// WithoutRecursion is a ParseOption that will only allow a single level of
// multipart parsing.
func WithoutRecursion() ParseOption {
	return func(pr *parser) { pr.maxDepth = 1 }
}

// WithUnlimitedRecursion is a ParseOption that will allow the parser to
// parse sub-parts of any depth.
func WithUnlimitedRecursion() ParseOption {
	return func(pr *parser) { pr.maxDepth = -1 }
}

// searchForSplit looks for a header/body split. Returns -1, nil if none is
// found. If the header/body split is found, it returns the location of the
// split (including the split newlines) and the line break to use with the
// header as a slice of bytes.
func searchForSplit(buf []byte, subpart bool) (pos int, crlf []byte) {
	if subpart {
		// if the header is empty, the first char might be a line break,
		// indicating an empty header. It happens.
		for _, s := range splits {
			if testPos := bytes.Index(buf, s[0:len(s)/2]); testPos == 0 {
				pos = testPos + len(s)/2
				crlf = s[0 : len(s)/2]
				return
			}
		}
	}

	pos = -1
	for _, s := range splits {
		if testPos := bytes.Index(buf, s); testPos > -1 {
			pos = testPos + len(s)
			crlf = s[0 : len(s)/2]
			return
		}
	}
	return
}

// splitHeadFromBody will detect the index of the split between the message
// header and the message body as well as the line break the email is using.
func (pr *parser) splitHeadFromBody(r io.Reader, subpart bool) ([]byte, []byte, io.Reader, error) {
	p := make([]byte, pr.chunkSize)
	buf := &bytes.Buffer{}
	searched := 0
	for {
		n, err := r.Read(p)

		if pr.maxHeaderLen > 0 && n+buf.Len() > pr.maxHeaderLen {
			return nil, nil, nil, ErrLargeHeader
		}

		isEof := false
		if errors.Is(err, io.EOF) {
			isEof = true
		} else if err != nil {
			return nil, nil, nil, err
		}

		if _, err := buf.Write(p[:n]); err != nil {
			return nil, nil, nil, err
		}

		// check the tail of the buffer for the end of header
		pos, crlf := searchForSplit(buf.Bytes()[searched:], subpart)
		if pos >= 0 {
			pos += searched
			hdr := make([]byte, pos)
			for hdrRead, n := 0, 0; hdrRead < pos; hdrRead += n {
				n, err = buf.Read(hdr[hdrRead:])
				if err != nil {
					return nil, nil, nil, err
				}
			}

			var body io.Reader
			if _, isBytesReader := r.(*bytes.Reader); isBytesReader {
				// bytes.Reader is what we use internally to parse each part
				// of a multipart message, so pull all the data into the
				// buffer we have been building and discard the header bytes
				// already consumed from it.
				if _, err := buf.ReadFrom(r); err != nil {
					return nil, nil, nil, err
				}
				body = bytes.NewReader(buf.Bytes())
			} else {
				// anything else must be the original input, so leave the
				// remainder unread to keep memory use down
				body = &remainder{buf.Bytes(), r}
			}
			return hdr, crlf, body, nil
		}

		if isEof {
			break
		}

		// The last 3 bytes might be the prefix to the split point
		searched = buf.Len() - 3
		if searched < 0 {
			searched = 0
		}
	}

	// No header/body split found. Assume the message is all header and see
	// what we can use as a line break.
	for _, s := range splits {
		crlf := s[0 : len(s)/2]
		if bytes.Contains(buf.Bytes(), crlf) {
			return buf.Bytes(), crlf, nil, nil
		}
	}

	return buf.Bytes(), []byte("\x0d"), nil, nil
}

// parseToOpaque turns a reader into an Opaque.
func (pr *parser) parseToOpaque(r io.Reader, subpart bool) (*Opaque, error) {
	hdr, crlf, body, err := pr.splitHeadFromBody(r, subpart)
	if err != nil {
		return nil, err
	}

	head, err := header.Parse(hdr, header.Break(crlf))
	if err != nil {
		return nil, err
	}

	if pr.decode {
		body = transfer.ApplyTransferDecoding(head, body)
	}

	return &Opaque{*head, body, !pr.decode}, nil
}

// Parse will consume input from the given reader and return a Generic
// message containing the parsed content.
//
// Parsing proceeds in phases. First, the input is read a chunk at a time
// until the double line break dividing the header from the body is found.
// The header fields are parsed from the bytes preceding the break and the
// rest of the input becomes the body of an *Opaque message.
//
// Second, if the message has a multipart/* Content-type and the configured
// depth allows, the body is scanned and broken into parts on the boundary
// parameter of the Content-type. Each part goes through the same process
// recursively, producing a *Multipart. The bytes before the first boundary
// and after the last are preserved so that the message can round-trip.
//
// Third, if the DecodeTransferEncoding() option is given, leaf bodies have
// their Content-transfer-encoding decoded as they are read. This is not the
// default because decoding and re-encoding may modify the original bytes in
// trivial ways, which would break byte-for-byte round-tripping.
//
// Whenever possible, a partially parsed message object is returned with the
// error.
func Parse(r io.Reader, opts ...ParseOption) (Generic, error) {
	pr := defaultParser.clone()
	for _, opt := range opts {
		opt(pr)
	}

	msg, err := pr.parseToOpaque(r, false)
	if err != nil {
		return msg, err
	}

	return pr.parse(msg, 0)
}

// parse implements the recursive portion of Parse.
func (pr *parser) parse(msg *Opaque, depth int) (Generic, error) {
	// we're too deep: stop here and just return the original
	if pr.maxDepth >= 0 && depth >= pr.maxDepth {
		return msg, nil
	}

	pv, err := msg.GetParamValue(header.ContentType)
	if err != nil {
		return msg, nil
	}

	// if this is not a multipart, don't parse it
	if pv.Type() != "multipart" && pv.Type() != "message" {
		return msg, nil
	}

	if pv.Boundary() == "" {
		return msg, ErrNoBoundary
	}

	// The initial boundary is like --boundary and the final boundary is
	// like --boundary-- and these must be on their own line. Every boundary
	// but the very first must begin with a newline, but the first might
	// not.
	//
	// Newline handling is nuanced in order to preserve the original message
	// for round-tripping. The newline before the start boundary (if any)
	// belongs to the prefix. The newline after the final boundary (if any)
	// belongs to the suffix. The newlines before and after the middle
	// boundaries belong to the boundary and are not included with the part.
	sb := []byte(fmt.Sprintf("--%s%s", pv.Boundary(), msg.Break()))
	mb := []byte(fmt.Sprintf("%s--%s%s", msg.Break(), pv.Boundary(), msg.Break()))
	eb := []byte(fmt.Sprintf("%s--%s--%s", msg.Break(), pv.Boundary(), msg.Break()))
	fb := []byte(fmt.Sprintf("%s--%s--", msg.Break(), pv.Boundary()))

	const (
		modeStart = iota
		modeMiddle
		modeEnd
	)

	// This scanner split function splits on any message boundary. It
	// returns the parts as tokens, but captures the prefix and suffix
	// itself in the prefix/suffix vars.
	sc := bufio.NewScanner(msg.Reader)
	sc.Buffer(make([]byte, pr.chunkSize), pr.maxPartLen)
	var prefix, suffix []byte
	mode := modeStart
	awaitingPrefix := true
	sc.Split(
		makeSplitFuncExitByAdvance(
			func(data []byte, atEOF bool) (advance int, token []byte, err error) {
				switch mode {
				case modeStart:
					// looking for an empty prefix
					if atEOF || len(data) >= len(sb) {
						if len(data) >= len(sb) && bytes.Equal(data[:len(sb)], sb) {
							// initial string is the boundary, so we have an
							// empty prefix
							prefix = []byte{}
							awaitingPrefix = false
							advance = len(sb)
						}
						// else, no zero-length prefix

						// either way, move on to modeMiddle
						mode = modeMiddle
						err = errContinue
					}
					// else, not enough data yet to tell whether we have a
					// zero-length prefix

				case modeMiddle:
					// looking for parts, or possibly the prefix if it was
					// not zero bytes long
					if ix := bytes.Index(data, mb); ix >= 0 {
						advance = ix + len(mb)
						if awaitingPrefix {
							// this is the first boundary, so the input so
							// far is the prefix
							ps := data[:ix+1]
							prefix = make([]byte, len(ps))
							copy(prefix, ps)
							awaitingPrefix = false
						} else {
							// a subsequent boundary, so the input is a part
							token = data[:ix]
						}
					} else if atEOF {
						// no more interior boundaries, time to search for
						// the final boundary
						mode = modeEnd
						err = errContinue
					}

				case modeEnd:
					// If we get here still awaitingPrefix, this message has
					// no initial boundary at all. Record that by leaving
					// prefix nil so the round-trip omits it.
					if awaitingPrefix {
						prefix = nil
					}

					// if we are here, we know that atEOF is true
					if ix := bytes.Index(data, eb); ix >= 0 {
						// Found the final boundary with a trailing newline.
						// Everything after the bare boundary (including that
						// newline) is the suffix, which is why fb is used
						// for the offset rather than eb.
						token = data[:ix]
						ss := data[ix+len(fb):]
						suffix = make([]byte, len(ss))
						copy(suffix, ss)
					} else if ix := bytes.Index(data, fb); ix >= 0 && ix == len(data)-len(fb) {
						// final boundary at the actual end of input, with no
						// final line break and so no suffix at all
						token = data[:ix]
						suffix = []byte{}
					} else {
						// no final boundary; treat the rest of the data as
						// the final part and record that there is no suffix
						token = data
						suffix = nil
					}
					// either way, we're done
					err = bufio.ErrFinalToken
				default:
					panic("unexpected parser state")
				}
				return
			},
		),
	)

	// This function recovers the original message if parsing a sub-part
	// fails partway through.
	parts := make([][]byte, 0, 10)
	originalMessage := func() (*Opaque, error) {
		for sc.Scan() {
			parts = append(parts, sc.Bytes())
		}

		if err := sc.Err(); err != nil {
			if errors.Is(err, bufio.ErrTooLong) {
				return nil, ErrLargePart
			}
			return nil, err
		}

		r := &bytes.Buffer{}
		if prefix != nil {
			r.Write(prefix)
			r.Write(sb)
		}
		r.Write(bytes.Join(parts, mb))
		if suffix != nil {
			r.Write(eb)
			r.Write(suffix)
		}

		return &Opaque{
			Header: msg.Header,
			Reader: r,
		}, nil
	}

	// All returned tokens are parts
	msgParts := make([]Generic, 0, 10)
	for sc.Scan() {
		part := sc.Bytes()
		parts = append(parts, part)

		opMsg, err := pr.parseToOpaque(bytes.NewReader(part), true)
		if err != nil {
			orig, _ := originalMessage()
			return orig, err
		}

		subMsg, err := pr.parse(opMsg, depth+1)
		if err != nil {
			orig, _ := originalMessage()
			return orig, err
		}

		msgParts = append(msgParts, subMsg)
	}

	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, ErrLargePart
		}
		orig, _ := originalMessage()
		return orig, err
	}

	return &Multipart{
		Header: msg.Header,
		prefix: prefix,
		suffix: suffix,
		parts:  msgParts,
	}, nil
}
