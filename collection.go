package geekcms

import (
	"path"
	"sort"

	"github.com/pkg/errors"
)

var ErrUnknownCollection = errors.New("unknown collection")

const (
	ContentRoot     = "src/content"
	GlobalsDir      = "src/keystatic/globals"
	PageContentDir  = "src/keystatic/page-content"
	ContentDataFile = "src/data/content.json"
	DocumentExt     = ".mdoc"

	// NewsRoute is where the site serves single posts.
	NewsRoute = "/news"
)

// Collection describes a directory of entries. ContentField names the
// frontmatter field the markdown body belongs to, empty for data-only
// collections. Route is the URL prefix entries are published under, empty
// when they have no page of their own.
type Collection struct {
	Name         string
	Label        string
	Dir          string
	ContentField string
	Route        string
}

var collections = map[string]Collection{
	"posts":      {Name: "posts", Label: "News Posts", ContentField: "content", Route: NewsRoute},
	"categories": {Name: "categories", Label: "Categories"},
	"pages":      {Name: "pages", Label: "Pages", ContentField: "content"},
	"services":   {Name: "services", Label: "Services", ContentField: "description"},
	"team":       {Name: "team", Label: "Team Members", ContentField: "bio"},
	"slides":     {Name: "slides", Label: "Hero Slides"},
	"events":     {Name: "events", Label: "Events", ContentField: "description"},
	"careers":    {Name: "careers", Label: "Careers", ContentField: "description"},
}

func init() {
	for k, c := range collections {
		c.Dir = path.Join(ContentRoot, k)
		collections[k] = c
	}
}

func LookupCollection(name string) (Collection, error) {
	c, ok := collections[name]
	if !ok {
		return Collection{}, errors.Wrapf(ErrUnknownCollection, "%q", name)
	}
	return c, nil
}

// Collections returns all known collections ordered by name.
func Collections() []Collection {
	ret := make([]Collection, 0, len(collections))
	for _, c := range collections {
		ret = append(ret, c)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Name < ret[j].Name })
	return ret
}

// Globals are the site wide singletons edited in the CMS.
var Globals = []string{"navbar", "footer", "contactForm", "meta"}

// PageContents are the per-page singletons edited in the CMS.
var PageContents = []string{"home", "about", "contact", "news", "blog", "career", "program"}

func GlobalPath(name string) string {
	return path.Join(GlobalsDir, name+DocumentExt)
}

func PageContentPath(name string) string {
	return path.Join(PageContentDir, name+DocumentExt)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func IsGlobal(name string) bool {
	return contains(Globals, name)
}

func IsPageContent(name string) bool {
	return contains(PageContents, name)
}
