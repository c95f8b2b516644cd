package param

import (
	"mime"
	"sort"
	"strings"
)

// Names of parameters commonly found on parameterized headers.
const (
	Boundary = "boundary"
	Charset  = "charset"
	Filename = "filename"
)

// Value represents a parameterized header value, such as is found in the
// Content-type and Content-disposition headers. It has a primary value and
// zero or more named parameters. Objects of this type are treated as
// immutable: use Modify to derive a changed copy.
type Value struct {
	v  string
	ps map[string]string
}

// New creates a new Value with the given primary value. An optional map of
// parameters may be passed as the second argument.
func New(v string, ps ...map[string]string) *Value {
	psm := map[string]string{}
	for _, p := range ps {
		for k, pv := range p {
			psm[strings.ToLower(k)] = pv
		}
	}
	return &Value{v, psm}
}

// Parse parses a parameterized header body into a Value. It fails with an
// error when the body cannot be interpreted.
func Parse(body string) (*Value, error) {
	v, ps, err := mime.ParseMediaType(body)
	if err != nil {
		return nil, err
	}
	if ps == nil {
		ps = map[string]string{}
	}
	return &Value{v, ps}, nil
}

// Clone returns a deep copy of the Value.
func (v *Value) Clone() *Value {
	ps := make(map[string]string, len(v.ps))
	for k, pv := range v.ps {
		ps[k] = pv
	}
	return &Value{v.v, ps}
}

// Value returns the primary value.
func (v *Value) Value() string {
	return v.v
}

// Presentation is a synonym for Value, for use with the
// Content-disposition header.
func (v *Value) Presentation() string {
	return v.v
}

// MediaType is a synonym for Value, for use with the Content-type header.
func (v *Value) MediaType() string {
	return v.v
}

// Type returns the part of the primary value before the slash, or an empty
// string if the value contains no slash.
func (v *Value) Type() string {
	t, _, found := strings.Cut(v.v, "/")
	if !found {
		return ""
	}
	return t
}

// Subtype returns the part of the primary value after the slash, or an
// empty string if the value contains no slash.
func (v *Value) Subtype() string {
	_, s, found := strings.Cut(v.v, "/")
	if !found {
		return ""
	}
	return s
}

// Parameters returns all the parameters set on the value.
func (v *Value) Parameters() map[string]string {
	return v.ps
}

// Parameter returns the named parameter or an empty string.
func (v *Value) Parameter(name string) string {
	return v.ps[strings.ToLower(name)]
}

// Boundary returns the boundary parameter.
func (v *Value) Boundary() string {
	return v.Parameter(Boundary)
}

// Charset returns the charset parameter.
func (v *Value) Charset() string {
	return v.Parameter(Charset)
}

// Filename returns the filename parameter.
func (v *Value) Filename() string {
	return v.Parameter(Filename)
}

// String renders the value with its parameters in a stable order, quoting
// parameter values as needed. A value that cannot be represented as a media
// type is joined bare.
func (v *Value) String() string {
	if s := mime.FormatMediaType(v.v, v.ps); s != "" {
		return s
	}

	ks := make([]string, 0, len(v.ps))
	for k := range v.ps {
		ks = append(ks, k)
	}
	sort.Strings(ks)

	out := &strings.Builder{}
	out.WriteString(v.v)
	for _, k := range ks {
		out.WriteString("; ")
		out.WriteString(k)
		out.WriteString("=")
		out.WriteString(v.ps[k])
	}
	return out.String()
}

// Bytes renders the value with its parameters as a slice of bytes.
func (v *Value) Bytes() []byte {
	return []byte(v.String())
}

// Modification is an operation applied to a Value by Modify.
type Modification func(*Value)

// Change replaces the primary value.
func Change(v string) Modification {
	return func(pv *Value) { pv.v = v }
}

// Set sets the named parameter.
func Set(name, value string) Modification {
	return func(pv *Value) { pv.ps[strings.ToLower(name)] = value }
}

// Delete removes the named parameter.
func Delete(name string) Modification {
	return func(pv *Value) { delete(pv.ps, strings.ToLower(name)) }
}

// Modify applies the given changes to a copy of the given Value and returns
// the copy.
func Modify(v *Value, changes ...Modification) *Value {
	out := v.Clone()
	for _, change := range changes {
		change(out)
	}
	return out
}
