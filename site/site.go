// Package site renders the public news pages from the content backend.
package site

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/raymondbutcher/tidyhtml"
	"go.uber.org/zap"

	geekcms "github.com/gamegeek/geekcms"
	"github.com/gamegeek/geekcms/backend"
)

const (
	tmplPath   = "templates"
	publicPath = "/public"
	langCookie = "lang"
)

//go:embed templates/*.tmpl
var builtin embed.FS

// Opener returns the backend a request is served from. It is called once
// per request so new commits show up without a restart.
type Opener func(ctx context.Context) (backend.Backend, error)

type Handler struct {
	open   Opener
	logger *zap.Logger
	debug  bool
}

func New(open Opener, logger *zap.Logger, debug bool) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{open: open, logger: logger, debug: debug}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func (h *Handler) httpError(w http.ResponseWriter, r *http.Request, code int, err error) {
	fields := []zap.Field{zap.String("path", r.URL.Path), zap.Int("status", code), zap.Error(err)}
	if st, ok := err.(stackTracer); ok && h.debug {
		fields = append(fields, zap.String("stack", fmt.Sprintf("%+v", st.StackTrace())))
	}
	h.logger.Error("page failed", fields...)
	http.Error(w, http.StatusText(code), code)
}

func readAll(fs http.FileSystem, name string) ([]byte, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot open file: %q", name)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	return b, errors.Wrapf(err, "Cannot read file: %q", name)
}

// parseTemplates loads templates/*.tmpl from fs. Sites without a templates
// directory get the built-in ones.
func parseTemplates(fs http.FileSystem) (*template.Template, error) {
	tmain := template.New("_").Funcs(funcs)
	dir, err := fs.Open("/" + tmplPath)
	if os.IsNotExist(errors.Cause(err)) {
		fs = http.FS(builtin)
		dir, err = fs.Open("/" + tmplPath)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot open directory: %q", tmplPath)
	}
	defer dir.Close()
	fis, err := dir.Readdir(-1)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot read directory: %q", tmplPath)
	}
	for _, fi := range fis {
		if !strings.HasSuffix(fi.Name(), ".tmpl") {
			continue
		}
		fpath := path.Join("/", tmplPath, fi.Name())
		data, err := readAll(fs, fpath)
		if err != nil {
			return nil, err
		}
		tname := strings.TrimSuffix(fi.Name(), ".tmpl")
		if _, err := tmain.New(tname).Parse(string(data)); err != nil {
			return nil, errors.Wrapf(err, "Cannot parse template: %q", fpath)
		}
	}
	return tmain, nil
}

var funcs = template.FuncMap{
	"t": func(lang geekcms.Language, key string) string {
		return geekcms.Translate(lang, key)
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("January 2, 2006")
	},
}

// Page is the data passed to the "main" template.
type Page struct {
	Lang    geekcms.Language
	Title   string
	Posts   geekcms.Entries
	Slides  geekcms.Entries
	Post    *geekcms.Entry
	Content *geekcms.Content
	ModTime time.Time
}

func language(r *http.Request) geekcms.Language {
	if l := r.URL.Query().Get("lang"); l != "" {
		return geekcms.ParseLanguage(l)
	}
	if c, err := r.Cookie(langCookie); err == nil {
		return geekcms.ParseLanguage(c.Value)
	}
	return geekcms.DefaultLanguage
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fs, err := h.open(r.Context())
	if err != nil {
		h.httpError(w, r, http.StatusInternalServerError, err)
		return
	}
	if etag := backend.ETag(fs); etag != "" {
		w.Header().Set("ETag", `"`+etag+`"`)
	}

	static := geekcms.NewStaticHandler(fs).Cd(publicPath)
	pages := pageHandler{
		Handler: h,
		loader:  geekcms.NewLoader(fs, h.logger),
	}

	mux := http.NewServeMux()
	mux.Handle("GET /images/", static)
	mux.Handle("GET /robots.txt", static)
	mux.Handle("GET /favicon.ico", static)
	mux.HandleFunc("GET "+geekcms.NewsRoute+"/{slug}", pages.post)
	mux.HandleFunc("GET /{$}", pages.index)
	w.Header().Set("Cache-Control", "max-age=32")
	mux.ServeHTTP(w, r)
}

type pageHandler struct {
	*Handler
	loader *geekcms.Loader
}

func (h pageHandler) page(r *http.Request) Page {
	p := Page{Lang: language(r)}
	if c, err := h.loader.Content(); err == nil {
		p.Content = c
	} else {
		p.Content = geekcms.NewContent(map[string]interface{}{})
	}
	return p
}

func (h pageHandler) index(w http.ResponseWriter, r *http.Request) {
	p := h.page(r)
	posts, err := h.loader.Entries("posts")
	if err != nil {
		h.httpError(w, r, http.StatusInternalServerError, errors.Wrap(err, "load posts"))
		return
	}
	slides, err := h.loader.ActiveSlides()
	if err != nil {
		h.httpError(w, r, http.StatusInternalServerError, errors.Wrap(err, "load slides"))
		return
	}
	p.Title = geekcms.Translate(p.Lang, "hero.title")
	p.Posts = posts
	p.Slides = slides
	for _, list := range []geekcms.Entries{posts, slides} {
		for _, e := range list {
			if e.ModTime().After(p.ModTime) {
				p.ModTime = e.ModTime()
			}
		}
	}
	h.render(w, r, p)
}

func (h pageHandler) post(w http.ResponseWriter, r *http.Request) {
	p := h.page(r)
	e, err := h.loader.Entry("posts", r.PathValue("slug"))
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			http.NotFound(w, r)
			return
		}
		h.httpError(w, r, http.StatusInternalServerError, err)
		return
	}
	p.Title = e.Title()
	p.Post = e
	p.ModTime = e.ModTime()
	h.render(w, r, p)
}

func (h pageHandler) render(w http.ResponseWriter, r *http.Request, p Page) {
	tmpl, err := parseTemplates(h.loader.Backend())
	if err != nil {
		h.httpError(w, r, http.StatusInternalServerError, err)
		return
	}
	buf := bytes.Buffer{}
	if err := tmpl.ExecuteTemplate(&buf, "main", p); err != nil {
		h.httpError(w, r, http.StatusInternalServerError, errors.Wrapf(err, "template execution failed: %q\n%s", r.URL.Path, tmpl.DefinedTemplates()))
		return
	}
	tbuf := bytes.Buffer{}
	if err := tidyhtml.Copy(&tbuf, &buf); err != nil {
		h.httpError(w, r, http.StatusInternalServerError, errors.Wrapf(err, "tidyhtml failed: %q", r.URL.Path))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, "", p.ModTime, bytes.NewReader(tbuf.Bytes()))
}
