// Package mdmail is a mail filter that extends plain text email written in
// markdown with an HTML rendering of the same content. A leaf part whose text
// begins with a marker line (one of "m", "md", or "markdown") is treated as
// markdown source. The filter renders the marked text to HTML, wraps the
// original and the rendering in a multipart/alternative container, rewrites
// references to attached files into cid: links, and preserves any quoted
// signature verbatim in a fixed-width block.
//
// The message machinery lives under the message package, which treats a
// message as either a message.Opaque leaf or a message.Multipart branch and
// is careful to round-trip unmodified parts byte-for-byte. The conversion
// itself lives in the convert package and the command-line front end is
// cmd/mdmail.
package mdmail
