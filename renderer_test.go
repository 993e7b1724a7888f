package geekcms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	html := string(RenderMarkdown([]byte("# Title\n\n![Logo](/images/logo.png)\n\n<script>alert(1)</script>\n")))
	assert.Contains(t, html, "<h1>Title</h1>")
	assert.Contains(t, html, `alt="Logo"`)
	assert.Contains(t, html, `title="Logo"`)
	assert.NotContains(t, html, "<script>")
}

func TestRenderUnsafe(t *testing.T) {
	html, err := articleRenderer{body: []byte("<iframe src=\"https://example.com\"></iframe>\n"), unsafe: true}.Render()
	assert.NoError(t, err)
	assert.Contains(t, string(html), "<iframe")
}

func TestRenderLinks(t *testing.T) {
	html := string(RenderMarkdown([]byte("[Partner](https://partner.example.org) and [news](/news/launch)\n")))
	assert.Contains(t, html, `target="_blank"`)
	assert.Contains(t, html, `href="/news/launch"`)
	assert.Equal(t, 1, strings.Count(html, `target="_blank"`))
}

func TestRenderImageTitleOnly(t *testing.T) {
	html := string(RenderMarkdown([]byte("![](/images/banner.png \"Banner\")\n")))
	assert.Contains(t, html, `alt="Banner"`)
	assert.Contains(t, html, `title="Banner"`)
}
