package geekcms

import (
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Date is a calendar day as written by the CMS ("2006-01-02").
type Date time.Time

const DateLayout = "2006-01-02"

func (d Date) String() string {
	if time.Time(d).IsZero() {
		return ""
	}
	return time.Time(d).Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	return d.parse(strings.Trim(string(b), "\""))
}

func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML accepts both quoted dates and YAML timestamps.
func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	return d.parse(node.Value)
}

func (d *Date) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	if len(s) > len(DateLayout) {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			*d = Date(t)
			return nil
		}
	}
	t, err := time.Parse(DateLayout, s)
	*d = Date(t)
	return err
}

// Post is an entry of the news collection.
type Post struct {
	ID           string `yaml:"id,omitempty" json:"id,omitempty"`
	Title        string `yaml:"title" json:"title"`
	Slug         string `yaml:"slug" json:"slug"`
	Date         Date   `yaml:"date" json:"date"`
	Category     string `yaml:"category" json:"category"`
	Author       string `yaml:"author" json:"author"`
	Image        string `yaml:"image" json:"image"`
	Thumb        string `yaml:"thumb" json:"thumb"`
	Thumb2       string `yaml:"thumb2" json:"thumb2"`
	Thumb3       string `yaml:"thumb3" json:"thumb3"`
	BreadcrumbBg string `yaml:"breadcrumbBg" json:"breadcrumbBg"`
}

type Category struct {
	ID   string `yaml:"id,omitempty" json:"id,omitempty"`
	Name string `yaml:"name" json:"name"`
	Slug string `yaml:"slug" json:"slug"`
}

type Page struct {
	Title       string `yaml:"title" json:"title"`
	Slug        string `yaml:"slug" json:"slug"`
	Description string `yaml:"description" json:"description"`
}

type Service struct {
	Title    string `yaml:"title" json:"title"`
	Slug     string `yaml:"slug" json:"slug"`
	Icon     string `yaml:"icon" json:"icon"`
	Image    string `yaml:"image" json:"image"`
	Featured bool   `yaml:"featured" json:"featured"`
}

type TeamMember struct {
	Name     string `yaml:"name" json:"name"`
	Slug     string `yaml:"slug" json:"slug"`
	Role     string `yaml:"role" json:"role"`
	Image    string `yaml:"image" json:"image"`
	Email    string `yaml:"email,omitempty" json:"email,omitempty"`
	LinkedIn string `yaml:"linkedin,omitempty" json:"linkedin,omitempty"`
	Twitter  string `yaml:"twitter,omitempty" json:"twitter,omitempty"`
}

// Slide is a hero slide. Slides without an explicit active flag are shown.
type Slide struct {
	ID              string `yaml:"id,omitempty" json:"id,omitempty"`
	Type            string `yaml:"type,omitempty" json:"type,omitempty"`
	Title           string `yaml:"title" json:"title"`
	Slug            string `yaml:"slug" json:"slug"`
	Subtitle        string `yaml:"subtitle" json:"subtitle"`
	Description     string `yaml:"description" json:"description"`
	Image           string `yaml:"image" json:"image"`
	BackgroundImage string `yaml:"backgroundImage,omitempty" json:"backgroundImage,omitempty"`
	Link            string `yaml:"link,omitempty" json:"link,omitempty"`
	LinkText        string `yaml:"linkText,omitempty" json:"linkText,omitempty"`
	ButtonText      string `yaml:"buttonText,omitempty" json:"buttonText,omitempty"`
	ButtonLink      string `yaml:"buttonLink,omitempty" json:"buttonLink,omitempty"`
	Order           int    `yaml:"order" json:"order"`
	Active          *bool  `yaml:"active,omitempty" json:"active,omitempty"`
}

func (s Slide) IsActive() bool {
	return s.Active == nil || *s.Active
}

type Event struct {
	Title            string `yaml:"title" json:"title"`
	Slug             string `yaml:"slug" json:"slug"`
	Date             Date   `yaml:"date" json:"date"`
	Location         string `yaml:"location" json:"location"`
	Image            string `yaml:"image" json:"image"`
	RegistrationLink string `yaml:"registrationLink,omitempty" json:"registrationLink,omitempty"`
	Featured         bool   `yaml:"featured" json:"featured"`
}

type Career struct {
	Title    string `yaml:"title" json:"title"`
	Slug     string `yaml:"slug" json:"slug"`
	Location string `yaml:"location" json:"location"`
	Type     string `yaml:"type" json:"type"`
	Date     Date   `yaml:"date" json:"date"`
	Active   bool   `yaml:"active" json:"active"`
}

// Meta holds the frontmatter keys every entry may carry regardless of its
// collection. The full frontmatter stays available through Entry.Data.
type Meta struct {
	Title    string `yaml:"title"`
	Name     string `yaml:"name"`
	Slug     string `yaml:"slug"`
	Author   string `yaml:"author"`
	Date     Date   `yaml:"date"`
	Order    int    `yaml:"order"`
	Active   *bool  `yaml:"active"`
	Featured bool   `yaml:"featured"`
	Unsafe   bool   `yaml:"unsafe"`
}
