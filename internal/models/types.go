package models

import (
	"maps"
	"time"
)

// Request describes one HTTP request the engine should issue.
type Request struct {
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers"`
	Params  map[string]string `json:"params,omitempty" yaml:"params"`
	Form    map[string]string `json:"form,omitempty" yaml:"form"`
	JSON    map[string]any    `json:"json,omitempty" yaml:"json"`
}

// Page is one fetched resource, or a section of one, tagged with the label of
// its role in a site's traversal graph.
type Page struct {
	Label     string    `json:"label"`
	Content   []byte    `json:"content"`
	URL       string    `json:"url,omitempty"`
	RID       string    `json:"rid,omitempty"`
	RDate     time.Time `json:"rdate,omitempty"`
	Retrieved time.Time `json:"retrieved,omitempty"`
	CrawlID   string    `json:"crawlId,omitempty"`
}

// Text returns the page content as a string.
func (p Page) Text() string { return string(p.Content) }

// Edge is a pending fetch together with the record context it inherits.
type Edge struct {
	Label       string    `json:"label"`
	Req         Request   `json:"req"`
	ParentRID   string    `json:"parentRid"`
	ParentRDate time.Time `json:"parentRdate"`
}

// Bag holds every page gathered for one crawled record, keyed by label.
type Bag struct {
	RID   string
	RDate time.Time
	Pages map[string]Page
}

// NewBag builds a bag from pages. Later pages with the same label win.
func NewBag(rid string, rdate time.Time, pages ...Page) Bag {
	b := Bag{RID: rid, RDate: rdate, Pages: make(map[string]Page, len(pages))}
	for _, p := range pages {
		b.Pages[p.Label] = p
	}
	return b
}

// Page returns the page stored under label.
func (b Bag) Page(label string) (Page, bool) {
	p, ok := b.Pages[label]
	return p, ok
}

// Clone returns a deep copy so templates can be filled in without sharing maps.
func (r Request) Clone() Request {
	out := r
	out.Headers = maps.Clone(r.Headers)
	out.Params = maps.Clone(r.Params)
	out.Form = maps.Clone(r.Form)
	out.JSON = maps.Clone(r.JSON)
	return out
}
