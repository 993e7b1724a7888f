// Package api serves the JSON endpoints the site and the CMS use to read and
// write content files in the repository.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	geekcms "github.com/gamegeek/geekcms"
	"github.com/gamegeek/geekcms/github"
)

const cacheControl = "public, max-age=300"

type Options struct {
	GitHub *github.Client
	// Token is used for writes when the request carries none.
	Token  string
	Loader *geekcms.Loader
	Logger *zap.Logger
	Debug  bool
}

type Handler struct {
	gh     *github.Client
	token  string
	loader *geekcms.Loader
	logger *zap.Logger
	debug  bool
	mux    *http.ServeMux
}

func New(opts Options) *Handler {
	h := &Handler{
		gh:     opts.GitHub,
		token:  opts.Token,
		loader: opts.Loader,
		logger: opts.Logger,
		debug:  opts.Debug,
		mux:    http.NewServeMux(),
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	h.mux.HandleFunc("GET /api/github/contents", h.contents)
	h.mux.HandleFunc("GET /api/github/read", h.read)
	h.mux.HandleFunc("GET /api/github/globals", h.globals)
	h.mux.HandleFunc("GET /api/github/page-content", h.pageContent)
	h.mux.HandleFunc("POST /api/github/push", h.push)
	h.mux.HandleFunc("GET /api/local/read", h.localRead)
	h.mux.HandleFunc("GET /api/content", h.content)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

type failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeCached answers 200 with a body browsers and CDNs may keep for five
// minutes.
func writeCached(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Cache-Control", cacheControl)
	writeJSON(w, http.StatusOK, v)
}

func fail(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, failure{Error: msg})
}

// httpError logs err and answers with its root cause.
func (h *Handler) httpError(w http.ResponseWriter, r *http.Request, code int, err error) {
	fields := []zap.Field{zap.String("path", r.URL.Path), zap.Int("status", code), zap.Error(err)}
	if st, ok := err.(stackTracer); ok && h.debug {
		fields = append(fields, zap.String("stack", fmt.Sprintf("%+v", st.StackTrace())))
	}
	h.logger.Error("request failed", fields...)
	fail(w, code, errors.Cause(err).Error())
}
