package geekcms

import (
	"bytes"
	"path"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// ParseFrontmatter splits src into its YAML frontmatter and markdown body.
// Sources without a frontmatter block yield an empty map and src as body.
func ParseFrontmatter(src []byte) (map[string]interface{}, []byte, error) {
	data := map[string]interface{}{}
	body, err := frontmatter.Parse(bytes.NewReader(src), &data, yamlFormat)
	if err != nil {
		return map[string]interface{}{}, nil, errors.Wrap(err, "parse frontmatter")
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	return data, body, nil
}

// LenientFrontmatter never fails: unparsable frontmatter is an empty map.
func LenientFrontmatter(src []byte) map[string]interface{} {
	data, _, err := ParseFrontmatter(src)
	if err != nil {
		return map[string]interface{}{}
	}
	return data
}

// DecodeFrontmatter unmarshals the frontmatter of src into v and returns the body.
func DecodeFrontmatter(src []byte, v interface{}) ([]byte, error) {
	body, err := frontmatter.Parse(bytes.NewReader(src), v, yamlFormat)
	if err != nil {
		return nil, errors.Wrap(err, "decode frontmatter")
	}
	return body, nil
}

// Unwrap returns data[key] when the document nests its fields under its own
// name, which singletons written by the CMS do.
func Unwrap(data map[string]interface{}, key string) interface{} {
	if v, ok := data[key]; ok && v != nil {
		return v
	}
	return data
}

// DecodeDocument parses a file by extension. Markdoc documents yield their
// frontmatter, YAML files the whole document. ok is false when nothing could
// be parsed, which includes plain .md files.
func DecodeDocument(name string, content []byte) (parsed interface{}, ok bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".mdoc":
		return LenientFrontmatter(content), true
	case ".yaml", ".yml":
		var v interface{}
		if err := yaml.Unmarshal(content, &v); err != nil {
			return nil, false
		}
		return v, true
	}
	return nil, false
}
