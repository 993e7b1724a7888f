package api

import (
	"fmt"
	"net/http"
	"os"

	"github.com/pkg/errors"
)

func (h *Handler) localRead(w http.ResponseWriter, r *http.Request) {
	fail(w, http.StatusServiceUnavailable,
		"Local filesystem access is not available on this deployment. Please use GitHub API endpoint: /api/github/read")
}

// content looks up a dotted path in the site copy document. Without a path
// the whole document is returned.
func (h *Handler) content(w http.ResponseWriter, r *http.Request) {
	if h.loader == nil {
		fail(w, http.StatusServiceUnavailable, "Content source is not configured")
		return
	}
	c, err := h.loader.Content()
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			fail(w, http.StatusNotFound, "Content document not found")
			return
		}
		h.httpError(w, r, http.StatusInternalServerError, err)
		return
	}

	p := r.URL.Query().Get("path")
	if p == "" {
		writeCached(w, map[string]interface{}{"success": true, "data": c.All()})
		return
	}
	if !c.Has(p) {
		fail(w, http.StatusNotFound, fmt.Sprintf("Content path not found: %s", p))
		return
	}
	writeCached(w, map[string]interface{}{"success": true, "path": p, "data": c.Object(p)})
}
