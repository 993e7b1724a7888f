package geekcms

import (
	"bytes"

	bm "github.com/microcosm-cc/bluemonday"
	bf "github.com/russross/blackfriday"
)

type ContentRenderer interface {
	Render() ([]byte, error)
}

const mdExtensions = bf.EXTENSION_TABLES | bf.EXTENSION_FENCED_CODE | bf.EXTENSION_AUTOLINK

// Links to other sites open in a new tab; the policy is safe for concurrent use
// once built.
var articlePolicy = bm.UGCPolicy().AddTargetBlankToFullyQualifiedLinks(true)

// imageTitles gives every image both alt and title, since the CMS editor only
// asks for one of them.
type imageTitles struct {
	bf.Renderer
}

func (r imageTitles) Image(out *bytes.Buffer, link []byte, title []byte, alt []byte) {
	switch {
	case len(title) == 0:
		title = alt
	case len(alt) == 0:
		alt = title
	}
	r.Renderer.Image(out, link, title, alt)
}

type articleRenderer struct {
	body   []byte
	unsafe bool
}

func (a articleRenderer) Render() ([]byte, error) {
	html := bf.Markdown(a.body, imageTitles{bf.HtmlRenderer(0, "", "")}, mdExtensions)
	if !a.unsafe {
		html = articlePolicy.SanitizeBytes(html)
	}
	return html, nil
}

// RenderMarkdown converts a markdown body to sanitized HTML.
func RenderMarkdown(body []byte) []byte {
	html, _ := articleRenderer{body: body}.Render()
	return html
}
