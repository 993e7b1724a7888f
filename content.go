package geekcms

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Content is the site copy document, addressed by dotted paths such as
// "home.hero.title".
type Content struct {
	data map[string]interface{}
}

func ParseContent(src []byte) (*Content, error) {
	c := &Content{}
	if err := json.Unmarshal(src, &c.data); err != nil {
		return nil, errors.Wrap(err, "parse content")
	}
	return c, nil
}

func NewContent(data map[string]interface{}) *Content {
	return &Content{data: data}
}

func (c *Content) lookup(p string) (interface{}, bool) {
	var v interface{} = c.data
	for _, key := range strings.Split(p, ".") {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if v, ok = m[key]; !ok {
			return nil, false
		}
	}
	return v, true
}

// String returns the string at p, or "" if p is missing or not a string.
func (c *Content) String(p string) string {
	v, _ := c.lookup(p)
	s, _ := v.(string)
	return s
}

// Object returns the value at p, or nil if p is missing.
func (c *Content) Object(p string) interface{} {
	v, _ := c.lookup(p)
	return v
}

func (c *Content) Has(p string) bool {
	_, ok := c.lookup(p)
	return ok
}

func (c *Content) All() map[string]interface{} {
	return c.data
}
