// Package document holds rendered help documents and the subjects
// (fragment-scoped text slices) served from them.
package document

import (
	"path"
	"sort"
	"strings"

	"helpview/html"
)

// Link is one entry of a document's link table.
type Link struct {
	Index int
	Href  string
}

// Document is a rendered help page. Its text and link tables are fixed
// when it is created.
type Document struct {
	URL   string
	Base  string // address relative links resolve against; set after a redirect
	Title string

	r *html.Result
}

// New wraps a render result as the document at url.
func New(url, title string, r *html.Result) *Document {
	return &Document{URL: url, Title: title, r: r}
}

// BaseURL returns the address relative links are resolved against.
func (d *Document) BaseURL() string {
	if d.Base != "" {
		return d.Base
	}
	return d.URL
}

// Text returns the rendered plain text.
func (d *Document) Text() string { return d.r.Text }

// NumLinks returns the number of distinct link targets.
func (d *Document) NumLinks() int { return len(d.r.Links) }

// Href returns the target of link index i.
func (d *Document) Href(i int) (string, bool) {
	if i < 0 || i >= len(d.r.Links) {
		return "", false
	}
	return d.r.Links[i], true
}

// Index returns the link index assigned to href.
func (d *Document) Index(href string) (int, bool) {
	i, ok := d.r.Index[href]
	return i, ok
}

// LinksByText returns the links whose visible text equals text, ordered by
// index.
func (d *Document) LinksByText(text string) []Link {
	return sortLinks(d.r.ByText[text])
}

// LinksByPrefix returns the links whose visible text starts with prefix,
// ordered by index and deduplicated.
func (d *Document) LinksByPrefix(prefix string) []Link {
	merged := make(map[int]string)
	for text, hrefs := range d.r.ByText {
		if !strings.HasPrefix(text, prefix) {
			continue
		}
		for i, href := range hrefs {
			merged[i] = href
		}
	}
	return sortLinks(merged)
}

// Anchor returns the text offset of the named anchor.
func (d *Document) Anchor(name string) (int, bool) {
	off, ok := d.r.Anchors[name]
	return off, ok
}

// Subject returns the subject starting at fragment. An empty or unknown
// fragment yields the whole document.
func (d *Document) Subject(fragment string) *Subject {
	text := d.r.Text
	if off, ok := d.Anchor(fragment); ok && fragment != "" {
		text = text[off:]
	}
	header := path.Base(strings.TrimSuffix(d.URL, "/"))
	if fragment != "" {
		header += "#" + fragment
	}
	return &Subject{
		Doc:      d,
		Fragment: fragment,
		Text:     text,
		Header:   header,
	}
}

func sortLinks(m map[int]string) []Link {
	links := make([]Link, 0, len(m))
	for i, href := range m {
		links = append(links, Link{Index: i, Href: href})
	}
	sort.Slice(links, func(a, b int) bool { return links[a].Index < links[b].Index })
	return links
}

// Subject is a document, or a named fragment of one, ready for display.
type Subject struct {
	Doc      *Document
	Fragment string
	Text     string // from the fragment offset to the end of the document
	Header   string // basename plus optional "#fragment"
}

// URL returns the subject's address including its fragment.
func (s *Subject) URL() string {
	if s.Fragment == "" {
		return s.Doc.URL
	}
	return s.Doc.URL + "#" + s.Fragment
}
