package geekcms

import (
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gamegeek/geekcms/backend"
)

var entryExts = []string{".md", ".mdoc", ".yaml", ".yml"}

// Loader reads collections and singletons from a backend.
type Loader struct {
	fs     backend.Backend
	logger *zap.Logger
}

func NewLoader(fs backend.Backend, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fs: fs, logger: logger}
}

func (l *Loader) Backend() backend.Backend {
	return l.fs
}

// ReadFile returns the content of the file at name.
func (l *Loader) ReadFile(name string) ([]byte, os.FileInfo, error) {
	f, err := l.fs.Open(path.Clean("/" + name))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "Cannot open file: %q", name)
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "Cannot stat file: %q", name)
	}
	if stat.IsDir() {
		return nil, nil, errors.Errorf("%q is a directory", name)
	}
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "Cannot read file: %q", name)
	}
	return b, stat, nil
}

// Entries loads every entry of the named collection, newest first. Files
// that fail to parse are logged and skipped.
func (l *Loader) Entries(collection string) (Entries, error) {
	c, err := LookupCollection(collection)
	if err != nil {
		return nil, err
	}

	dir, err := l.fs.Open("/" + c.Dir)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "Cannot open directory: %q", c.Dir)
	}
	fis, err := dir.Readdir(-1)
	dir.Close()
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot read directory: %q", c.Dir)
	}

	var ret Entries
	for _, fi := range fis {
		if fi.IsDir() || !hasEntryExt(fi.Name()) || strings.HasPrefix(fi.Name(), ".") {
			continue
		}
		fpath := path.Join(c.Dir, fi.Name())
		src, _, err := l.ReadFile(fpath)
		if err != nil {
			l.logger.Warn("skipping entry", zap.String("path", fpath), zap.Error(err))
			continue
		}
		e, err := newEntry(c, fi.Name(), src, fi.ModTime(), l.logger)
		if err != nil {
			l.logger.Warn("skipping entry", zap.String("path", fpath), zap.Error(err))
			continue
		}
		ret = append(ret, e)
	}
	sort.Sort(ret)
	return ret, nil
}

// Entry returns the entry of collection whose slug matches.
func (l *Loader) Entry(collection, slug string) (*Entry, error) {
	entries, err := l.Entries(collection)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Slug() == slug {
			return e, nil
		}
	}
	return nil, errors.Wrapf(os.ErrNotExist, "%s/%s", collection, slug)
}

// ActiveSlides returns the active slides in display order.
func (l *Loader) ActiveSlides() (Entries, error) {
	entries, err := l.Entries("slides")
	if err != nil {
		return nil, err
	}
	var ret Entries
	for _, e := range entries {
		if e.Active() {
			ret = append(ret, e)
		}
	}
	return ret.ByOrder(), nil
}

// Singleton loads a global or page-content document, unwrapped by name.
func (l *Loader) Singleton(file, name string) (interface{}, error) {
	src, _, err := l.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return Unwrap(LenientFrontmatter(src), name), nil
}

func (l *Loader) Global(name string) (interface{}, error) {
	return l.Singleton(GlobalPath(name), name)
}

func (l *Loader) PageContent(name string) (interface{}, error) {
	return l.Singleton(PageContentPath(name), name)
}

// Content loads the site copy document.
func (l *Loader) Content() (*Content, error) {
	src, _, err := l.ReadFile(ContentDataFile)
	if err != nil {
		return nil, err
	}
	return ParseContent(src)
}

func hasEntryExt(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range entryExts {
		if e == ext {
			return true
		}
	}
	return false
}

func trimExt(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

func marshalYAML(v interface{}) ([]byte, error) {
	b, err := yaml.Marshal(v)
	return b, errors.Wrap(err, "yaml marshal")
}

func unmarshalYAML(b []byte, v interface{}) error {
	return errors.Wrap(yaml.Unmarshal(b, v), "yaml unmarshal")
}
