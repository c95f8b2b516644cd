package convert

import (
	"bytes"
	"fmt"

	"github.com/vanng822/go-premailer/premailer"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer renders markdown source text into HTML. Any implementation may
// be substituted, but it is expected to pass raw HTML through, to treat
// single line breaks as hard breaks, and to apply smart typography.
type Renderer interface {
	Render(text string) (string, error)
}

// Inliner transforms HTML containing style blocks into HTML with the styles
// inlined onto the elements they select.
type Inliner interface {
	Inline(html string) (string, error)
}

// GoldmarkRenderer is the standard Renderer, built on goldmark with GFM
// extensions, smart typography, hard line breaks, and raw HTML passthrough.
type GoldmarkRenderer struct {
	md goldmark.Markdown
}

// NewGoldmarkRenderer constructs a GoldmarkRenderer.
func NewGoldmarkRenderer() *GoldmarkRenderer {
	return &GoldmarkRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithUnsafe(),
			),
		),
	}
}

// Render converts markdown text to HTML.
func (g *GoldmarkRenderer) Render(text string) (string, error) {
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("unable to render markdown: %w", err)
	}
	return buf.String(), nil
}

// PremailerInliner is the standard Inliner, built on go-premailer.
type PremailerInliner struct {
	options *premailer.Options
}

// NewPremailerInliner constructs a PremailerInliner.
func NewPremailerInliner() *PremailerInliner {
	return &PremailerInliner{options: premailer.NewOptions()}
}

// Inline moves the styles from any style blocks in the given HTML onto the
// elements they select.
func (p *PremailerInliner) Inline(html string) (string, error) {
	pm, err := premailer.NewPremailerFromString(html, p.options)
	if err != nil {
		return "", fmt.Errorf("unable to inline styles: %w", err)
	}

	out, err := pm.Transform()
	if err != nil {
		return "", fmt.Errorf("unable to inline styles: %w", err)
	}

	return out, nil
}

// composeHTML renders the pre-signature markdown and, when the signature
// delimiter was present, appends the signature verbatim inside a
// fixed-width signature block with the conventional "-- " separator
// restored. The block appears even when the signature itself is empty.
func composeHTML(r Renderer, preSignature, signature string, hasSignature bool) (string, error) {
	html, err := r.Render(preSignature)
	if err != nil {
		return "", err
	}

	if hasSignature {
		html += "\n<pre class=\"signature\" style=\"font-size: small\">-- \n"
		html += signature
		html += "</pre>"
	}

	return html, nil
}
