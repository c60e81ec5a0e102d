package html

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// marginStep is the indentation added per nesting level.
const marginStep = 4

// writer is a dumb word-wrapping text sink. It tracks the output column and
// the current margin, and collapses whitespace in flowing text.
type writer struct {
	buf    strings.Builder
	maxcol int
	depth  int
	margin int
	col    int

	atBreak  bool // a word separator is owed before the next word
	nospace  bool // leading whitespace is dropped (start of block)
	newlines int  // trailing newlines in buf

	save  *strings.Builder // link text capture; nil when not capturing
	marks []savedMark      // anchors met inside the capture

	pending []string // anchor names waiting for the next emitted text
	anchors map[string]int
}

// savedMark is an anchor name at a byte offset into captured link text.
type savedMark struct {
	name string
	off  int
}

func newWriter(maxcol int) *writer {
	return &writer{
		maxcol:  maxcol,
		nospace: true,
		anchors: make(map[string]int),
	}
}

func (w *writer) finish() (string, map[string]int) {
	w.resolve()
	return w.buf.String(), w.anchors
}

func (w *writer) write(s string) {
	if s == "" {
		return
	}
	w.buf.WriteString(s)
	trimmed := strings.TrimRight(s, "\n")
	if trimmed == "" {
		w.newlines += len(s)
	} else {
		w.newlines = len(s) - len(trimmed)
	}
}

// mark records name as an anchor at the position of the next emitted text.
func (w *writer) mark(name string) {
	if _, ok := w.anchors[name]; ok {
		return
	}
	for _, n := range w.pending {
		if n == name {
			return
		}
	}
	if w.save != nil {
		for _, m := range w.marks {
			if m.name == name {
				return
			}
		}
		w.marks = append(w.marks, savedMark{name: name, off: w.save.Len()})
		return
	}
	w.pending = append(w.pending, name)
}

func (w *writer) resolve() {
	for _, name := range w.pending {
		w.anchors[name] = w.buf.Len()
	}
	w.pending = w.pending[:0]
}

func (w *writer) pushMargin() {
	w.depth++
	w.margin = w.depth * marginStep
}

func (w *writer) popMargin() {
	if w.depth > 0 {
		w.depth--
	}
	w.margin = w.depth * marginStep
}

func (w *writer) indent() {
	if w.col < w.margin {
		w.write(strings.Repeat(" ", w.margin-w.col))
		w.col = w.margin
	}
}

// paragraph ends the current paragraph followed by blank empty lines.
func (w *writer) paragraph(blank int) {
	if w.save != nil || w.buf.Len() == 0 {
		return
	}
	for w.newlines < blank+1 {
		w.write("\n")
	}
	w.col = 0
	w.atBreak = false
	w.nospace = true
}

func (w *writer) lineBreak() {
	if w.save != nil {
		w.save.WriteString(" ")
		return
	}
	w.write("\n")
	w.col = 0
	w.atBreak = false
	w.nospace = true
}

func (w *writer) rule() {
	w.paragraph(0)
	if w.save != nil {
		return
	}
	w.resolve()
	w.write(strings.Repeat("-", w.maxcol))
	w.write("\n")
	w.col = 0
	w.atBreak = false
	w.nospace = true
}

// label writes a list item label hanging left of the margin.
func (w *writer) label(s string) {
	if w.save != nil {
		return
	}
	width := runewidth.StringWidth(s)
	at := w.margin - width - 1
	if at < 0 {
		at = 0
	}
	if w.col < at {
		w.write(strings.Repeat(" ", at-w.col))
		w.col = at
	}
	w.resolve()
	w.write(s)
	w.col += width
	pad := w.margin - w.col
	if pad < 1 {
		pad = 1
	}
	w.write(strings.Repeat(" ", pad))
	w.col += pad
	w.atBreak = false
	w.nospace = true
}

// flowing appends text that may be re-wrapped.
func (w *writer) flowing(data string) {
	if data == "" {
		return
	}
	if w.save != nil {
		w.save.WriteString(data)
		return
	}
	if w.nospace {
		data = strings.TrimLeftFunc(data, unicode.IsSpace)
		if data == "" {
			return
		}
	}

	first, _ := utf8.DecodeRuneInString(data)
	last, _ := utf8.DecodeLastRuneInString(data)
	atBreak := w.atBreak || unicode.IsSpace(first)

	words := strings.Fields(data)
	if len(words) == 0 {
		w.atBreak = atBreak
		return
	}

	w.indent()
	col := w.col
	for _, word := range words {
		width := runewidth.StringWidth(word)
		if atBreak {
			if col+width >= w.maxcol {
				w.write("\n" + strings.Repeat(" ", w.margin))
				col = w.margin
			} else {
				w.write(" ")
				col++
			}
		}
		w.resolve()
		w.write(word)
		col += width
		atBreak = true
	}
	w.col = col
	w.atBreak = unicode.IsSpace(last)
	w.nospace = false
}

// literal appends preformatted text as is.
func (w *writer) literal(data string) {
	if data == "" {
		return
	}
	if w.save != nil {
		w.save.WriteString(data)
		return
	}
	w.resolve()
	w.write(data)
	if i := strings.LastIndexByte(data, '\n'); i >= 0 {
		w.col = 0
		data = data[i+1:]
	}
	w.col = advance(w.col, data)
	w.atBreak = false
	w.nospace = false
}

func (w *writer) saveBegin() {
	w.save = &strings.Builder{}
	w.marks = nil
}

func (w *writer) saveEnd() (string, []savedMark) {
	if w.save == nil {
		return "", nil
	}
	s, marks := w.save.String(), w.marks
	w.save, w.marks = nil, nil
	return s, marks
}

// flowingSaved emits captured text, placing the anchors met inside it at
// their own words.
func (w *writer) flowingSaved(data string, marks []savedMark) {
	prev := 0
	for _, m := range marks {
		w.flowing(data[prev:m.off])
		w.mark(m.name)
		prev = m.off
	}
	w.flowing(data[prev:])
}

// advance returns the column reached after writing s from col, with tab
// stops every 8 columns.
func advance(col int, s string) int {
	for _, r := range s {
		if r == '\t' {
			col += 8 - col%8
			continue
		}
		col += runewidth.RuneWidth(r)
	}
	return col
}
