package geekcms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontmatter(t *testing.T) {
	src := []byte("---\ntitle: Hello\norder: 3\n---\n\nBody text\n")
	data, body, err := ParseFrontmatter(src)
	require.NoError(t, err)
	assert.Equal(t, "Hello", data["title"])
	assert.Equal(t, 3, data["order"])
	assert.Equal(t, "\nBody text\n", string(body))
}

func TestParseFrontmatterWithoutBlock(t *testing.T) {
	data, body, err := ParseFrontmatter([]byte("just text"))
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.Equal(t, "just text", string(body))
}

func TestLenientFrontmatter(t *testing.T) {
	assert.Equal(t, map[string]interface{}{}, LenientFrontmatter([]byte("---\n: : bad\n  - [\n---\n")))
}

func TestDecodeFrontmatter(t *testing.T) {
	var m Meta
	body, err := DecodeFrontmatter([]byte("---\ntitle: Post\ndate: 2025-08-28\nactive: false\n---\ntext"), &m)
	require.NoError(t, err)
	assert.Equal(t, "Post", m.Title)
	assert.Equal(t, "2025-08-28", m.Date.String())
	require.NotNil(t, m.Active)
	assert.False(t, *m.Active)
	assert.Equal(t, "text", string(body))
}

func TestUnwrap(t *testing.T) {
	nested := map[string]interface{}{"navbar": map[string]interface{}{"logo": "x.png"}}
	assert.Equal(t, map[string]interface{}{"logo": "x.png"}, Unwrap(nested, "navbar"))

	flat := map[string]interface{}{"logo": "x.png"}
	assert.Equal(t, flat, Unwrap(flat, "navbar"))

	null := map[string]interface{}{"navbar": nil}
	assert.Equal(t, null, Unwrap(null, "navbar"))
}

func TestDecodeDocument(t *testing.T) {
	for _, tc := range []struct {
		name    string
		content string
		want    interface{}
		ok      bool
	}{
		{"page.mdoc", "---\ntitle: Home\n---\n", map[string]interface{}{"title": "Home"}, true},
		{"body.mdoc", "no frontmatter", map[string]interface{}{}, true},
		{"post.md", "---\ntitle: Post\n---\n", nil, false},
		{"data.yaml", "a: 1\n", map[string]interface{}{"a": 1}, true},
		{"data.yml", "a: [1\n", nil, false},
		{"data.json", "{}", nil, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := DecodeDocument(tc.name, []byte(tc.content))
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
