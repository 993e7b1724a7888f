package geekcms

import (
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/gabriel-vasile/mimetype"
)

// The StaticHandler behaves like http.ServeContent without directoy listings.
// It also implements the http.Filesystem interface.
type StaticHandler struct {
	fs     http.FileSystem
	prefix string
}

// Serve the file requestet by r. Error 404 on directory access.
func (sh StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f, err := sh.Open(r.URL.Path)
	if err != nil {
		http.Error(w, r.URL.Path, http.StatusNotFound)
		return
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		http.Error(w, r.URL.Path, http.StatusInternalServerError)
		return
	}
	if stat.IsDir() {
		http.Error(w, r.URL.Path, http.StatusNotFound)
		return
	}
	// uploaded media often lacks a usable extension
	if mime.TypeByExtension(path.Ext(stat.Name())) == "" {
		if mt, err := mimetype.DetectReader(f); err == nil {
			w.Header().Set("Content-Type", mt.String())
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			http.Error(w, r.URL.Path, http.StatusInternalServerError)
			return
		}
	}
	http.ServeContent(w, r, stat.Name(), stat.ModTime(), f)
}

// Return a new StaticHandler with new root directory.
func (sh StaticHandler) Cd(p string) StaticHandler {
	sh.prefix = path.Join(sh.prefix, path.Clean("/"+p))
	return sh
}

// Implement the http.Filesystem interface.
func (sh StaticHandler) Open(name string) (http.File, error) {
	name = path.Clean("/" + name)
	return sh.fs.Open(path.Join(sh.prefix, name))
}

// Serves all files from fs.
func NewStaticHandler(fs http.FileSystem) StaticHandler {
	return StaticHandler{fs: fs}
}
