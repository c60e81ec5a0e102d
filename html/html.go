// Package html converts HTML help pages into word-wrapped plain text.
//
// Links are rendered as footnote markers: the link text is followed by
// "[n]" where n indexes the document's link table. Anchor names are
// recorded as byte offsets into the rendered text so that fragments can be
// served as slices of it.
package html

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	gohtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultWidth is the wrap column used when Options.Width is unset.
const DefaultWidth = 72

// Options configures a render pass.
type Options struct {
	Width int // maximum output column
}

// Result is the output of one render pass. It is never modified after
// Render returns; Anchors index into Text and are only valid against it.
type Result struct {
	Text    string
	Links   []string                  // link index -> href
	Index   map[string]int            // href -> link index
	ByText  map[string]map[int]string // visible link text -> {index: href}
	Anchors map[string]int            // anchor name -> byte offset into Text
}

// Render reads HTML from r and renders it to plain text. Malformed UTF-8
// is replaced with U+FFFD.
func Render(r io.Reader, opts Options) (*Result, error) {
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}
	p := newParser(width)

	z := gohtml.NewTokenizer(transform.NewReader(r, unicode.UTF8.NewDecoder()))
	for {
		tt := z.Next()
		switch tt {
		case gohtml.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, fmt.Errorf("tokenizing html: %w", err)
			}
			return p.result(), nil

		case gohtml.TextToken:
			// Raw text: character references are decoded by decodeRefs so
			// numeric references map straight to code points.
			p.text(string(z.Raw()))

		case gohtml.StartTagToken, gohtml.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			a := atom.Lookup(name)
			attrs := readAttrs(z, hasAttr)
			p.start(a, attrs, tt == gohtml.SelfClosingTagToken)

		case gohtml.EndTagToken:
			name, _ := z.TagName()
			p.end(atom.Lookup(name))
		}
	}
}

// RenderString renders an HTML string.
func RenderString(s string, opts Options) (*Result, error) {
	return Render(strings.NewReader(s), opts)
}

// Title returns the whitespace-normalised text of the first <title>
// element, or "" when there is none.
func Title(r io.Reader) string {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
}

func readAttrs(z *gohtml.Tokenizer, more bool) map[string]string {
	if !more {
		return nil
	}
	attrs := make(map[string]string)
	for more {
		var key, val []byte
		key, val, more = z.TagAttr()
		attrs[string(key)] = string(val)
	}
	return attrs
}

// anchor is the currently open <a> element.
type anchor struct {
	href string
	name string
	typ  string
}

type list struct {
	kind  atom.Atom
	count int
}

type parser struct {
	w *writer

	links  []string
	index  map[string]int
	byText map[string]map[int]string

	anchor *anchor
	lists  []list
	fonts  []string // heading styles; cosmetic only in plain text
	skip   int      // inside script, style or title
	pre    int
	preNL  bool // drop the newline that directly follows <pre>
}

func newParser(width int) *parser {
	return &parser{
		w:      newWriter(width),
		index:  make(map[string]int),
		byText: make(map[string]map[int]string),
	}
}

func (p *parser) result() *Result {
	p.endAnchor()
	text, anchors := p.w.finish()
	return &Result{
		Text:    text,
		Links:   p.links,
		Index:   p.index,
		ByText:  p.byText,
		Anchors: anchors,
	}
}

func (p *parser) text(raw string) {
	if p.skip > 0 {
		return
	}
	data := decodeRefs(raw)
	if p.pre > 0 {
		if p.preNL {
			data = strings.TrimPrefix(data, "\n")
			p.preNL = false
		}
		p.w.literal(data)
		return
	}
	p.w.flowing(data)
}

func (p *parser) start(a atom.Atom, attrs map[string]string, selfClosing bool) {
	if id := attrs["id"]; id != "" && a != atom.A {
		p.w.mark(id)
	}

	switch a {
	case atom.Script, atom.Style, atom.Title:
		if !selfClosing {
			p.skip++
		}
	case atom.Body:
		p.skip = 0

	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		p.startHeading(headingLevel(a))

	case atom.P:
		p.w.paragraph(1)
	case atom.Br:
		p.w.lineBreak()
	case atom.Hr:
		p.w.rule()
	case atom.Pre:
		p.w.paragraph(1)
		p.pre++
		p.preNL = true
	case atom.Blockquote:
		p.w.paragraph(1)
		p.w.pushMargin()
	case atom.Div, atom.Section, atom.Article, atom.Table, atom.Tr:
		p.w.paragraph(0)

	case atom.Ul, atom.Ol:
		if len(p.lists) == 0 {
			p.w.paragraph(1)
		} else {
			p.w.paragraph(0)
		}
		p.lists = append(p.lists, list{kind: a})
		p.w.pushMargin()
	case atom.Li:
		p.w.paragraph(0)
		label := "*"
		if n := len(p.lists); n > 0 && p.lists[n-1].kind == atom.Ol {
			p.lists[n-1].count++
			label = strconv.Itoa(p.lists[n-1].count) + "."
		}
		p.w.label(label)
	case atom.Dl:
		p.w.paragraph(0)
		p.lists = append(p.lists, list{kind: atom.Dl})
	case atom.Dt:
		p.ddPop()
		p.w.paragraph(0)
	case atom.Dd:
		p.ddPop()
		p.w.paragraph(0)
		p.w.pushMargin()
		p.lists = append(p.lists, list{kind: atom.Dd})

	case atom.A:
		p.startAnchor(attrs)
	case atom.Img:
		if alt := attrs["alt"]; alt != "" {
			p.w.flowing(alt)
		}
	}
}

func (p *parser) end(a atom.Atom) {
	switch a {
	case atom.Script, atom.Style, atom.Title:
		if p.skip > 0 {
			p.skip--
		}

	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		p.endHeading()

	case atom.P, atom.Div, atom.Section, atom.Article, atom.Table, atom.Tr:
		p.w.paragraph(0)
	case atom.Pre:
		p.w.paragraph(1)
		if p.pre > 0 {
			p.pre--
		}
		p.preNL = false
	case atom.Blockquote:
		p.w.paragraph(1)
		p.w.popMargin()

	case atom.Ul, atom.Ol:
		p.ddPop()
		if p.popList(a) {
			p.w.popMargin()
		}
		if len(p.lists) == 0 {
			p.w.paragraph(1)
		} else {
			p.w.paragraph(0)
		}
	case atom.Dd:
		p.ddPop()
	case atom.Dl:
		p.ddPop()
		p.popList(atom.Dl)
		p.w.paragraph(1)

	case atom.A:
		p.endAnchor()
	}
}

// inDD reports whether the innermost list context is a definition value.
func (p *parser) inDD() bool {
	n := len(p.lists)
	return n > 0 && p.lists[n-1].kind == atom.Dd
}

func (p *parser) ddPop() {
	if p.inDD() {
		p.lists = p.lists[:len(p.lists)-1]
		p.w.popMargin()
	}
}

// popList pops list entries up to and including the innermost one of kind.
func (p *parser) popList(kind atom.Atom) bool {
	for i := len(p.lists) - 1; i >= 0; i-- {
		if p.lists[i].kind == kind {
			p.lists = p.lists[:i]
			return true
		}
	}
	return false
}

func (p *parser) startHeading(level int) {
	if p.inDD() {
		p.w.paragraph(0)
	} else {
		p.w.paragraph(1)
	}
	p.fonts = append(p.fonts, "h"+strconv.Itoa(level))
}

func (p *parser) endHeading() {
	p.w.paragraph(0)
	if n := len(p.fonts); n > 0 {
		p.fonts = p.fonts[:n-1]
	}
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	}
	return 6
}

func (p *parser) startAnchor(attrs map[string]string) {
	// Anchors do not nest; an unclosed one ends where the next begins.
	p.endAnchor()

	a := &anchor{href: attrs["href"], name: attrs["name"], typ: attrs["type"]}
	if a.name == "" {
		a.name = attrs["id"]
	}
	if a.name != "" {
		p.w.mark(a.name)
	}
	if a.href != "" {
		p.w.saveBegin()
	}
	p.anchor = a
}

func (p *parser) endAnchor() {
	a := p.anchor
	if a == nil {
		return
	}
	p.anchor = nil
	if a.href == "" {
		return
	}

	data, marks := p.w.saveEnd()
	p.w.flowingSaved(data, marks)

	index, ok := p.index[a.href]
	if !ok {
		index = len(p.links)
		p.index[a.href] = index
		p.links = append(p.links, a.href)
	}
	p.w.flowing("[" + strconv.Itoa(index) + "]")

	key := strings.Join(strings.Fields(data), " ")
	if key == "" {
		return
	}
	hrefs := p.byText[key]
	if hrefs == nil {
		hrefs = make(map[int]string)
		p.byText[key] = hrefs
	}
	hrefs[index] = a.href
}
