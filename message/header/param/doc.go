// Package param deals with parameterized headers, such as Content-type and
// Content-disposition. It also provides helpers for breaking down the MIME
// types set in the Content-type header.
package param
