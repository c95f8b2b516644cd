package convert

import (
	"mime/quotedprintable"
	"strings"
)

// ContentID derives the message-internal identifier used to refer to an
// attachment with the given filename. The same filename always produces the
// same identifier: the quoted-printable encoding of the filename with every
// space replaced by an underscore, followed by "@attached".
//
// The identifier is used both as the target of cid: URIs in rendered HTML
// and as the value of the Content-id header on the attachment itself.
func ContentID(filename string) string {
	var buf strings.Builder
	qp := quotedprintable.NewWriter(&buf)
	_, _ = qp.Write([]byte(filename))
	_ = qp.Close()

	id := strings.ReplaceAll(buf.String(), " ", "_")
	return id + "@attached"
}
