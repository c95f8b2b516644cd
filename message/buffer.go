package message

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/zostay/go-mdmail/message/header"
)

const (
	// DefaultMultipartContentType is the Content-type to use with a
	// multipart message when no explicit Content-type header has been set.
	DefaultMultipartContentType = "multipart/mixed"
)

// BufferMode describes which way a Buffer has been used so far.
type BufferMode int

const (
	// ModeUnset indicates that the Buffer has not yet been modified.
	ModeUnset BufferMode = iota

	// ModeSingle indicates that the Buffer has been used as an io.Writer.
	ModeSingle

	// ModeMultipart indicates that the Buffer has had parts added.
	ModeMultipart
)

var (
	// ErrPartsBuffer is returned by Write() if that method is called after
	// calling the Add() method.
	ErrPartsBuffer = errors.New("message buffer is in parts mode")

	// ErrOpaqueBuffer is returned by Add() if that method is called after
	// calling the Write() method.
	ErrOpaqueBuffer = errors.New("message buffer is in opaque mode")

	// ErrModeUnset is returned by Opaque() and Multipart() when they are
	// called before anything has been written to the current buffer.
	ErrModeUnset = errors.New("no message has been built")

	// ErrParsesAsNotMultipart is returned by Multipart() when the Buffer is
	// in ModeSingle and the message is not at all a *Multipart message.
	ErrParsesAsNotMultipart = errors.New("cannot parse non-multipart message as multipart")
)

// Buffer provides tools for constructing email messages. It can operate in
// either of two modes, depending on how you want to construct your message.
//
// * Opaque mode. When you use the Buffer as an io.Writer by calling the
// Write() method, you have chosen to treat the email message as a
// collection of bytes.
//
// * Multipart mode. When you use the Buffer to manipulate parts, such as by
// calling the Add() method, you have chosen to treat the email message as a
// collection of sub-parts.
//
// You may not use a Buffer in both modes; mixing them panics. Whatever the
// mode is, you may call either Opaque() or Multipart() to get the
// constructed message at the end.
type Buffer struct {
	header.Header
	parts    []Part
	buf      *bytes.Buffer
	preamble []byte
}

// Mode returns a constant that indicates what mode the Buffer is in. Until
// a modification method is called, this will return ModeUnset.
func (b *Buffer) Mode() BufferMode {
	switch {
	case b.parts != nil:
		return ModeMultipart
	case b.buf != nil:
		return ModeSingle
	}
	return ModeUnset
}

func (b *Buffer) initBuffer() error {
	if b.parts != nil {
		return ErrPartsBuffer
	}
	if b.buf == nil {
		b.buf = &bytes.Buffer{}
	}
	return nil
}

func (b *Buffer) initParts(capacity int) error {
	if capacity == 0 {
		capacity = 10
	}
	if b.buf != nil {
		return ErrOpaqueBuffer
	}
	if b.parts == nil {
		b.parts = make([]Part, 0, capacity)
	}
	return nil
}

// SetMultipart sets the Mode of the buffer to ModeMultipart and
// pre-allocates the capacity of the internal slice used to hold parts. This
// will panic if the mode is already ModeSingle.
func (b *Buffer) SetMultipart(capacity int) {
	if err := b.initParts(capacity); err != nil {
		panic(err)
	}
}

// Add will add one or more parts to the message. It will panic if this
// Buffer has already been used as an io.Writer.
func (b *Buffer) Add(msgs ...Part) {
	if err := b.initParts(0); err != nil {
		panic(err)
	}
	b.parts = append(b.parts, msgs...)
}

// Write implements io.Writer so you can write a message body to this
// buffer. This will panic if parts have already been added via Add().
func (b *Buffer) Write(p []byte) (int, error) {
	if err := b.initBuffer(); err != nil {
		panic(err)
	}
	return b.buf.Write(p)
}

// SetPreamble sets the bytes to be output before the first boundary of a
// multipart message built from this Buffer. A non-empty preamble must end
// in a newline.
func (b *Buffer) SetPreamble(p []byte) {
	b.preamble = p
}

func (b *Buffer) prepareForMultipartOutput() {
	if _, err := b.GetMediaType(); errors.Is(err, header.ErrNoSuchField) {
		b.SetMediaType(DefaultMultipartContentType)
	}

	if _, err := b.GetBoundary(); errors.Is(err, header.ErrNoSuchFieldParameter) {
		_ = b.SetBoundary(GenerateBoundary())
	}
}

// Opaque will return an Opaque message based upon the content written to
// the Buffer. This method will panic if the BufferMode is ModeUnset.
//
// If the BufferMode is ModeSingle, the Header and the bytes written to the
// internal buffer are returned in the *Opaque.
//
// If the BufferMode is ModeMultipart, the parts will be serialized into a
// byte buffer and that will be attached with the Header to the returned
// *Opaque object. In that case, if no multipart/* Content-type has been set
// it will be set to DefaultMultipartContentType, and a random boundary will
// be generated if none has been set.
//
// After this method is called, the Buffer should be disposed of and no
// longer used.
func (b *Buffer) Opaque() *Opaque {
	switch b.Mode() {
	case ModeSingle:
		return &Opaque{
			Header: b.Header,
			Reader: b.buf,
		}
	case ModeMultipart:
		b.prepareForMultipartOutput()
		boundary, _ := b.GetBoundary()

		buf := &bytes.Buffer{}
		buf.Write(b.preamble)
		if len(b.parts) > 0 {
			for _, part := range b.parts {
				_, _ = fmt.Fprintf(buf, "--%s%s", boundary, b.Break())
				_, _ = part.WriteTo(buf)
				_, _ = fmt.Fprint(buf, b.Break())
			}
			_, _ = fmt.Fprintf(buf, "--%s--", boundary)
		}

		return &Opaque{
			Header: b.Header,
			Reader: buf,
		}
	}
	panic(ErrModeUnset)
}

// OpaqueAlreadyEncoded works just like Opaque(), but marks the object as
// already having the Content-transfer-encoding applied. Use this when you
// write a message body in encoded form.
//
// NOTE: This does not perform any encoding! If you want the output to be
// automatically encoded, call Opaque() instead and WriteTo() on the
// returned object will perform the encoding.
func (b *Buffer) OpaqueAlreadyEncoded() *Opaque {
	msg := b.Opaque()
	if msg != nil {
		msg.encoded = true
	}
	return msg
}

// Multipart will return a Multipart message based upon the content written
// to the Buffer. This method will panic if the BufferMode is ModeUnset.
//
// If the BufferMode is ModeSingle, the bytes that have been written must
// parse as a multipart message, which will be returned. If they parse as
// something else, this fails with ErrParsesAsNotMultipart.
//
// If the BufferMode is ModeMultipart, the Header and collected parts are
// returned in the *Multipart. If no multipart/* Content-type has been set
// it will be set to DefaultMultipartContentType, and a random boundary will
// be generated if none has been set.
//
// After this method is called, the Buffer should be disposed of and no
// longer used.
func (b *Buffer) Multipart() (*Multipart, error) {
	b.prepareForMultipartOutput()
	switch b.Mode() {
	case ModeSingle:
		msg := &Opaque{b.Header, b.buf, false}
		pr := defaultParser.clone()
		WithoutRecursion()(pr)
		gmsg, err := pr.parse(msg, 0)
		if err != nil {
			return nil, err
		}
		if vmsg, isMultipart := gmsg.(*Multipart); isMultipart {
			return vmsg, nil
		}
		return nil, ErrParsesAsNotMultipart
	case ModeMultipart:
		prefix := b.preamble
		if prefix == nil {
			prefix = []byte{}
		}
		return &Multipart{
			Header: b.Header,
			prefix: prefix,
			suffix: []byte{},
			parts:  b.parts,
		}, nil
	}
	panic(ErrModeUnset)
}
