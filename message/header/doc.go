// Package header provides tools for reading and manipulating email message
// headers. A header is stored as an ordered list of fields. Field names are
// stored with their original casing, but lookups are case-insensitive, and a
// name may appear more than once. The Header type layers semantic accessors
// for common fields over the low-level Base storage.
package header
