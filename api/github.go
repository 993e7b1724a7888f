package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	geekcms "github.com/gamegeek/geekcms"
	"github.com/gamegeek/geekcms/github"
)

// listing is the trimmed down view of a directory entry.
type listing struct {
	Name        string  `json:"name"`
	Path        string  `json:"path"`
	Type        string  `json:"type"`
	Size        int64   `json:"size"`
	SHA         string  `json:"sha"`
	URL         string  `json:"url"`
	DownloadURL *string `json:"download_url"`
	GitURL      string  `json:"git_url"`
}

func newListing(it github.Item) listing {
	return listing{
		Name:        it.Name,
		Path:        it.Path,
		Type:        it.Type,
		Size:        it.Size,
		SHA:         it.SHA,
		URL:         it.HTMLURL,
		DownloadURL: it.DownloadURL,
		GitURL:      it.GitURL,
	}
}

// fileInfo is a file without decoded content.
type fileInfo struct {
	listing
	Encoding string `json:"encoding,omitempty"`
	Content  string `json:"content,omitempty"`
}

func decodedFile(it github.Item) (map[string]interface{}, error) {
	content, err := it.Decode()
	if err != nil {
		return nil, err
	}
	ret := map[string]interface{}{
		"name":         it.Name,
		"path":         it.Path,
		"type":         it.Type,
		"size":         it.Size,
		"sha":          it.SHA,
		"url":          it.URL,
		"html_url":     it.HTMLURL,
		"git_url":      it.GitURL,
		"download_url": it.DownloadURL,
		"encoding":     it.Encoding,
		"content":      string(content),
	}
	if parsed, ok := geekcms.DecodeDocument(it.Name, content); ok {
		ret["parsed"] = parsed
	}
	return ret, nil
}

func (h *Handler) contents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := q.Get("path")
	decode := q.Get("decode") != "false"
	raw := q.Get("raw") == "true"

	if p == "" {
		fail(w, http.StatusBadRequest, "Path parameter is required. Example: ?path=src/keystatic/categories")
		return
	}

	if raw {
		data, err := h.gh.Raw(r.Context(), p)
		if err != nil {
			if status := github.StatusOf(err); status != 0 {
				h.logger.Debug("github passthrough failed", zap.String("path", p), zap.Error(err))
				fail(w, status, github.Message(err))
				return
			}
			h.httpError(w, r, http.StatusInternalServerError, err)
			return
		}
		writeCached(w, struct {
			Success bool            `json:"success"`
			Data    json.RawMessage `json:"data"`
		}{true, data})
		return
	}

	contents, err := h.gh.Get(r.Context(), p)
	if err != nil {
		if errors.Cause(err) == github.ErrNotFound {
			fail(w, http.StatusNotFound, fmt.Sprintf("Path %q not found", p))
			return
		}
		h.httpError(w, r, http.StatusInternalServerError, err)
		return
	}

	var data interface{}
	switch {
	case contents.IsDir():
		list := make([]listing, 0, len(contents.Dir))
		for _, it := range contents.Dir {
			list = append(list, newListing(it))
		}
		data = list
	case decode && contents.File.Type == "file":
		data, err = decodedFile(*contents.File)
		if err != nil {
			h.httpError(w, r, http.StatusInternalServerError, err)
			return
		}
	default:
		fi := fileInfo{listing: newListing(*contents.File), Encoding: contents.File.Encoding}
		if !decode {
			fi.Content = contents.File.Content
		}
		data = fi
	}

	writeCached(w, struct {
		Success bool        `json:"success"`
		Path    string      `json:"path"`
		Data    interface{} `json:"data"`
	}{true, p, data})
}

func (h *Handler) read(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query().Get("path")
	if p == "" {
		fail(w, http.StatusBadRequest, "File path is required")
		return
	}
	content, err := h.gh.ReadFile(r.Context(), p)
	if err != nil {
		if errors.Cause(err) == github.ErrNotFound {
			fail(w, http.StatusNotFound, "File not found")
			return
		}
		h.httpError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Content string `json:"content"`
	}{true, string(content)})
}

// singleton fetches a CMS singleton document and unwraps it by name. Any
// failure is reported as a missing document.
func (h *Handler) singleton(ctx context.Context, file, name string) interface{} {
	content, err := h.gh.ReadFile(ctx, file)
	if err != nil {
		if errors.Cause(err) != github.ErrNotFound {
			h.logger.Warn("fetch singleton", zap.String("name", name), zap.Error(err))
		}
		return nil
	}
	return geekcms.Unwrap(geekcms.LenientFrontmatter(content), name)
}

// fetchAll loads every named singleton in parallel. Missing ones are left out.
func (h *Handler) fetchAll(ctx context.Context, names []string, file func(string) string) map[string]interface{} {
	var mu sync.Mutex
	ret := make(map[string]interface{}, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, name := range names {
		g.Go(func() error {
			if v := h.singleton(ctx, file(name), name); v != nil {
				mu.Lock()
				ret[name] = v
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return ret
}

// singletonEndpoint serves one of the CMS singleton families. kind is the
// query parameter and singular key, plural the key of the full listing.
type singletonEndpoint struct {
	kind, plural, label string
	names               []string
	file                func(string) string
}

var (
	globalsEndpoint = singletonEndpoint{
		kind:   "name",
		plural: "globals",
		label:  "Global",
		names:  geekcms.Globals,
		file:   geekcms.GlobalPath,
	}
	pagesEndpoint = singletonEndpoint{
		kind:   "page",
		plural: "pages",
		label:  "Page",
		names:  geekcms.PageContents,
		file:   geekcms.PageContentPath,
	}
)

func (h *Handler) serveSingletons(w http.ResponseWriter, r *http.Request, ep singletonEndpoint) {
	name := r.URL.Query().Get(ep.kind)
	if name == "" {
		resp := map[string]interface{}{"success": true}
		resp[ep.plural] = h.fetchAll(r.Context(), ep.names, ep.file)
		resp["available"+capitalize(ep.plural)] = ep.names
		writeCached(w, resp)
		return
	}

	known := false
	for _, n := range ep.names {
		known = known || n == name
	}
	if !known {
		fail(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s. Available %s: %s",
			strings.ToLower(ep.label), ep.plural, strings.Join(ep.names, ", ")))
		return
	}

	data := h.singleton(r.Context(), ep.file(name), name)
	if data == nil {
		fail(w, http.StatusNotFound, fmt.Sprintf("%s %q not found", ep.label, name))
		return
	}
	writeCached(w, map[string]interface{}{
		"success": true,
		ep.kind:   name,
		"data":    data,
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (h *Handler) globals(w http.ResponseWriter, r *http.Request) {
	h.serveSingletons(w, r, globalsEndpoint)
}

func (h *Handler) pageContent(w http.ResponseWriter, r *http.Request) {
	h.serveSingletons(w, r, pagesEndpoint)
}

// Content is decoded loosely so a non-string value is reported as invalid
// JSON rather than a malformed request.
type pushRequest struct {
	Path    string      `json:"path"`
	Content interface{} `json:"content"`
	Message string      `json:"message"`
}

func (p pushRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Path, validation.Required),
		validation.Field(&p.Content, validation.Required),
	)
}

const tokenMissing = "GitHub token not found. Please either:\n" +
	"1. Login via Keystatic OAuth (visit /keystatic first)\n" +
	"2. Set GITHUB_TOKEN or KEYSTATIC_GITHUB_TOKEN environment variable"

// requestToken picks the token for writes: header, then OAuth cookie, then
// the configured one.
func (h *Handler) requestToken(r *http.Request) string {
	if t := r.Header.Get("X-GitHub-Token"); t != "" {
		return t
	}
	if c, err := r.Cookie(github.TokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return h.token
}

func (h *Handler) push(w http.ResponseWriter, r *http.Request) {
	var req pushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, r, http.StatusInternalServerError, errors.Wrap(err, "decode push request"))
		return
	}
	if err := req.Validate(); err != nil {
		fail(w, http.StatusBadRequest, "Path and content are required")
		return
	}
	content, ok := req.Content.(string)
	if !ok || !json.Valid([]byte(content)) {
		fail(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	token := h.requestToken(r)
	if token == "" {
		fail(w, http.StatusInternalServerError, tokenMissing)
		return
	}

	sha, err := h.gh.WithToken(token).Put(r.Context(), req.Path, []byte(content), req.Message)
	if err != nil {
		h.httpError(w, r, http.StatusInternalServerError, err)
		return
	}
	h.logger.Info("pushed file", zap.String("path", req.Path), zap.String("commit", sha))
	writeJSON(w, http.StatusOK, struct {
		Success   bool   `json:"success"`
		CommitSHA string `json:"commitSha"`
		Message   string `json:"message"`
	}{true, sha, "File successfully pushed to GitHub"})
}
