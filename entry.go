package geekcms

import (
	"html/template"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Entries []*Entry

// Less orders entries newest first, falling back to title.
func (e Entries) Less(i, j int) bool {
	di, dj := e[i].Date(), e[j].Date()
	if !di.Equal(dj) {
		return di.After(dj)
	}
	return e[i].Title() < e[j].Title()
}
func (e Entries) Len() int {
	return len(e)
}
func (e Entries) Swap(i, j int) {
	e[i], e[j] = e[j], e[i]
}

// ByOrder sorts entries by their order field, keeping ties stable.
func (e Entries) ByOrder() Entries {
	sort.SliceStable(e, func(i, j int) bool {
		return e[i].meta.Order < e[j].meta.Order
	})
	return e
}

type Entry struct {
	collection string
	file       string
	meta       Meta
	data       map[string]interface{}
	body       []byte
	modTime    time.Time
	link       url.URL
	html       []byte
	once       sync.Once
	renderHTML ContentRenderer
	logger     *zap.Logger
}

func newEntry(c Collection, file string, src []byte, modTime time.Time, logger *zap.Logger) (*Entry, error) {
	e := &Entry{
		collection: c.Name,
		file:       file,
		modTime:    modTime,
		logger:     logger,
	}
	switch strings.ToLower(path.Ext(file)) {
	case ".yaml", ".yml":
		e.data = map[string]interface{}{}
		if err := unmarshalYAML(src, &e.data); err != nil {
			return nil, err
		}
		if err := unmarshalYAML(src, &e.meta); err != nil {
			return nil, err
		}
	default:
		data, body, err := ParseFrontmatter(src)
		if err != nil {
			return nil, err
		}
		if _, err := DecodeFrontmatter(src, &e.meta); err != nil {
			return nil, err
		}
		e.data = data
		e.body = body
	}
	e.renderHTML = articleRenderer{body: e.body, unsafe: e.meta.Unsafe}
	if c.Route != "" {
		e.link = url.URL{Path: path.Join(c.Route, e.Slug())}
	}
	return e, nil
}

func (e *Entry) Collection() string {
	return e.collection
}
func (e *Entry) File() string {
	return e.file
}
func (e *Entry) Author() string {
	return e.meta.Author
}
func (e *Entry) Date() time.Time {
	return time.Time(e.meta.Date)
}
func (e *Entry) ModTime() time.Time {
	return e.modTime
}
func (e *Entry) Title() string {
	if e.meta.Title != "" {
		return e.meta.Title
	}
	return e.meta.Name
}
func (e *Entry) Slug() string {
	if e.meta.Slug != "" {
		return e.meta.Slug
	}
	return trimExt(e.file)
}
func (e *Entry) Order() int {
	return e.meta.Order
}
func (e *Entry) Active() bool {
	return e.meta.Active == nil || *e.meta.Active
}
func (e *Entry) Featured() bool {
	return e.meta.Featured
}
func (e *Entry) Link() string {
	return e.link.String()
}
func (e *Entry) Body() []byte {
	return e.body
}

// Data is the complete frontmatter of the entry.
func (e *Entry) Data() map[string]interface{} {
	return e.data
}

// Get returns a single frontmatter field as string.
func (e *Entry) Get(key string) string {
	if s, ok := e.data[key].(string); ok {
		return s
	}
	return ""
}

func (e *Entry) HTML() template.HTML {
	e.once.Do(func() {
		var err error
		e.html, err = e.renderHTML.Render()
		if err != nil && e.logger != nil {
			e.logger.Error("render entry", zap.String("file", e.file), zap.Error(err))
		}
	})
	return template.HTML(e.html)
}

// Decode unmarshals the entry's frontmatter into one of the typed content
// structs, e.g. *Post or *Slide.
func (e *Entry) Decode(v interface{}) error {
	src, err := marshalYAML(e.data)
	if err != nil {
		return err
	}
	return unmarshalYAML(src, v)
}
