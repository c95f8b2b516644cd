// Package convert implements the markdown mail filter. It walks the part
// tree of a parsed email message, renders each leaf marked as markdown
// source into an HTML alternative, rewrites attachment references in the
// rendered HTML into cid: links, and preserves quoted signatures verbatim.
// Everything else in the message passes through unchanged.
package convert
