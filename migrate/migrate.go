// Package migrate converts the legacy JSON data files of the site into
// collection entries with YAML frontmatter.
package migrate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	geekcms "github.com/gamegeek/geekcms"
)

// legacyID accepts both numeric and string ids.
type legacyID string

func (id *legacyID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = legacyID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = legacyID(n.String())
	return nil
}

func (id legacyID) String() string {
	return string(id)
}

type legacyNews struct {
	Categories []struct {
		ID   legacyID `json:"id"`
		Name string   `json:"name"`
		Slug string   `json:"slug"`
	} `json:"categories"`
	Posts []struct {
		ID           legacyID `json:"id"`
		Title        string   `json:"title"`
		Slug         string   `json:"slug"`
		Date         string   `json:"date"`
		Category     string   `json:"category"`
		Author       string   `json:"author"`
		Image        string   `json:"image"`
		Thumb        string   `json:"thumb"`
		Thumb2       string   `json:"thumb2"`
		Thumb3       string   `json:"thumb3"`
		BreadcrumbBg string   `json:"breadcrumbBg"`
		Content      string   `json:"content"`
	} `json:"posts"`
}

type legacySlides struct {
	Slides []struct {
		ID              legacyID `json:"id"`
		Type            string   `json:"type"`
		Title           string   `json:"title"`
		Subtitle        string   `json:"subtitle"`
		Description     string   `json:"description"`
		ButtonText      string   `json:"buttonText"`
		ButtonLink      string   `json:"buttonLink"`
		BackgroundImage string   `json:"backgroundImage"`
		Image           string   `json:"image"`
		Order           int      `json:"order"`
		Active          *bool    `json:"active"`
	} `json:"slides"`
}

// Result counts the files written per collection.
type Result struct {
	Categories int
	Posts      int
	Slides     int
}

type Migrator struct {
	// Root is the site checkout; data is read from Root/src/data and entries
	// are written below Root/src/content.
	Root   string
	Logger *zap.Logger
}

func (m Migrator) logger() *zap.Logger {
	if m.Logger == nil {
		return zap.NewNop()
	}
	return m.Logger
}

func (m Migrator) Run() (Result, error) {
	var res Result
	var news legacyNews
	if err := readJSON(filepath.Join(m.Root, "src/data/news.json"), &news); err != nil {
		return res, err
	}

	dir := filepath.Join(m.Root, geekcms.ContentRoot, "categories")
	for _, c := range news.Categories {
		err := writeEntry(dir, c.Slug, geekcms.Category{ID: c.ID.String(), Name: c.Name, Slug: c.Slug}, nil)
		if err != nil {
			return res, err
		}
		m.logger().Debug("migrated category", zap.String("slug", c.Slug))
		res.Categories++
	}

	dir = filepath.Join(m.Root, geekcms.ContentRoot, "posts")
	for _, p := range news.Posts {
		slug := p.Slug
		if slug == "" {
			slug = geekcms.Slugify(p.Title)
		}
		author := p.Author
		if author == "" {
			author = "Admin"
		}
		post := geekcms.Post{
			ID:           p.ID.String(),
			Title:        p.Title,
			Slug:         slug,
			Date:         geekcms.ParseLegacyDate(p.Date),
			Category:     p.Category,
			Author:       author,
			Image:        p.Image,
			Thumb:        p.Thumb,
			Thumb2:       p.Thumb2,
			Thumb3:       p.Thumb3,
			BreadcrumbBg: p.BreadcrumbBg,
		}
		var body []byte
		if p.Content != "" {
			body = []byte(p.Content + "\n")
		}
		if err := writeEntry(dir, slug, post, body); err != nil {
			return res, err
		}
		m.logger().Debug("migrated post", zap.String("slug", slug))
		res.Posts++
	}

	var slides legacySlides
	if err := readJSON(filepath.Join(m.Root, "src/data/slides.json"), &slides); err != nil {
		return res, err
	}
	dir = filepath.Join(m.Root, geekcms.ContentRoot, "slides")
	for i, s := range slides.Slides {
		slug := fmt.Sprintf("slide-%d", i+1)
		if s.Title != "" {
			slug = geekcms.Slugify(s.Title)
		}
		id := s.ID.String()
		if id == "" {
			id = fmt.Sprintf("slide-%d", i+1)
		}
		typ := s.Type
		if typ == "" {
			typ = "content"
		}
		order := s.Order
		if order == 0 {
			order = i + 1
		}
		active := s.Active == nil || *s.Active
		slide := geekcms.Slide{
			ID:              id,
			Type:            typ,
			Title:           s.Title,
			Slug:            slug,
			Subtitle:        s.Subtitle,
			Description:     s.Description,
			ButtonText:      s.ButtonText,
			ButtonLink:      s.ButtonLink,
			BackgroundImage: s.BackgroundImage,
			Image:           s.Image,
			Order:           order,
			Active:          &active,
		}
		if err := writeEntry(dir, slug, slide, nil); err != nil {
			return res, err
		}
		m.logger().Debug("migrated slide", zap.String("slug", slug))
		res.Slides++
	}

	return res, nil
}

func readJSON(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "Cannot read file: %q", path)
	}
	return errors.Wrapf(json.Unmarshal(b, v), "Parsing json in %q", path)
}

// Render returns a markdown document with meta as YAML frontmatter.
func Render(meta interface{}, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return nil, errors.Wrap(err, "encode frontmatter")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encode frontmatter")
	}
	buf.WriteString("---\n")
	if len(body) > 0 {
		buf.WriteString("\n")
		buf.Write(body)
	}
	return buf.Bytes(), nil
}

func writeEntry(dir, slug string, meta interface{}, body []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "Cannot create directory: %q", dir)
	}
	b, err := Render(meta, body)
	if err != nil {
		return err
	}
	fpath := filepath.Join(dir, slug+".md")
	return errors.Wrapf(os.WriteFile(fpath, b, 0644), "Cannot write file: %q", fpath)
}
