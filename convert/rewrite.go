package convert

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DanglingReferenceError is returned when rendered HTML refers to an
// attachment that is not present in the message.
type DanglingReferenceError struct {
	// URL is the href or src value that failed to resolve.
	URL string
}

// Error returns the error message.
func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("reference %q does not point to an attachment", e.URL)
}

// RewriteAttachmentURLs rewrites references to local attachments in the
// given HTML into cid: URIs.
//
// Anchor hrefs starting with "#" (fragments) or containing ":" (absolute
// URIs) are left alone; anything else must exactly match an inventoried
// attachment name and is rewritten to "cid:" plus the attachment's
// ContentID(). Image srcs are handled the same way except that there is no
// fragment exemption. A reference that resolves to no attachment fails with
// a DanglingReferenceError.
//
// This works great for images, but not so well for links. The cid: links
// this produces seem to work in Gmail, but not much elsewhere.
func RewriteAttachmentURLs(html string, names []string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("unable to parse rendered HTML: %w", err)
	}

	var rwErr error
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if rwErr != nil {
			return
		}

		url, _ := a.Attr("href")
		if strings.HasPrefix(url, "#") || strings.Contains(url, ":") {
			return
		}

		if !knownAttachment(names, url) {
			rwErr = &DanglingReferenceError{URL: url}
			return
		}

		a.SetAttr("href", "cid:"+ContentID(url))
	})
	if rwErr != nil {
		return "", rwErr
	}

	doc.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		if rwErr != nil {
			return
		}

		url, _ := img.Attr("src")
		if strings.Contains(url, ":") {
			return
		}

		if !knownAttachment(names, url) {
			rwErr = &DanglingReferenceError{URL: url}
			return
		}

		img.SetAttr("src", "cid:"+ContentID(url))
	})
	if rwErr != nil {
		return "", rwErr
	}

	// goquery serializes a complete document: the fragment comes back
	// wrapped in html, head, and body elements
	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("unable to serialize rewritten HTML: %w", err)
	}

	return out, nil
}
