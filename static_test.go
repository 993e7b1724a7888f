package geekcms

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamegeek/geekcms/backend"
)

func TestStaticHandler(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"public/robots.txt":       "User-agent: *\n",
		"public/images/logo":      "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR",
		"public/images/sub/a.txt": "a",
		"src/content/posts/x.md":  "secret",
	})
	fs, err := backend.Dir(root)
	require.NoError(t, err)
	h := NewStaticHandler(fs).Cd("/public")

	for _, tc := range []struct {
		path  string
		code  int
		ctype string
		body  string
	}{
		{"/robots.txt", http.StatusOK, "text/plain; charset=utf-8", "User-agent: *\n"},
		{"/images/logo", http.StatusOK, "image/png", ""},
		{"/images/sub", http.StatusNotFound, "", ""},
		{"/missing.css", http.StatusNotFound, "", ""},
		{"/../src/content/posts/x.md", http.StatusNotFound, "", ""},
	} {
		t.Run(tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.URL.Path = tc.path
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.code, rec.Code)
			if tc.ctype != "" {
				assert.Equal(t, tc.ctype, rec.Header().Get("Content-Type"))
			}
			if tc.body != "" {
				assert.Equal(t, tc.body, rec.Body.String())
			}
		})
	}
}
