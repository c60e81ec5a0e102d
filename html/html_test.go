package html

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func render(t *testing.T, input string, width int) *Result {
	t.Helper()
	res, err := RenderString(input, Options{Width: width})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return res
}

func TestRenderLinkFootnotes(t *testing.T) {
	input := `<p>See <a href="a.html">alpha</a> and <a href="b.html">beta</a>, then <a href="a.html">alpha again</a>.</p>`
	res := render(t, input, 0)

	expected := "See alpha[0] and beta[1], then alpha again[0].\n"
	if res.Text != expected {
		t.Errorf("Text = %q, expected %q", res.Text, expected)
	}

	if len(res.Links) != 2 || res.Links[0] != "a.html" || res.Links[1] != "b.html" {
		t.Errorf("Links = %v, expected [a.html b.html]", res.Links)
	}
	if res.Index["a.html"] != 0 || res.Index["b.html"] != 1 {
		t.Errorf("Index = %v", res.Index)
	}
	if got := res.ByText["alpha again"]; len(got) != 1 || got[0] != "a.html" {
		t.Errorf("ByText[alpha again] = %v", got)
	}
}

func TestRenderLinkIndexStable(t *testing.T) {
	input := `<p><a href="x">one</a> <a href="y">two</a> <a href="x">three</a> <a href="z">four</a></p>`
	first := render(t, input, 0)
	second := render(t, input, 0)

	for href, idx := range first.Index {
		if second.Index[href] != idx {
			t.Errorf("index for %q changed: %d then %d", href, idx, second.Index[href])
		}
	}
	seen := make(map[int]string)
	for href, idx := range first.Index {
		if other, ok := seen[idx]; ok {
			t.Errorf("hrefs %q and %q share index %d", href, other, idx)
		}
		seen[idx] = href
	}
	if len(first.Links) != 3 {
		t.Errorf("expected 3 distinct links, got %d", len(first.Links))
	}
}

func TestRenderSameTextDifferentHrefs(t *testing.T) {
	input := `<p><a href="one.html">click</a> or <a href="two.html">click</a></p>`
	res := render(t, input, 0)

	got := res.ByText["click"]
	if len(got) != 2 {
		t.Fatalf("expected 2 hrefs for 'click', got %v", got)
	}
	if got[0] != "one.html" || got[1] != "two.html" {
		t.Errorf("ByText[click] = %v", got)
	}
}

func TestRenderAnchorOffset(t *testing.T) {
	input := "Intro\nSee <a name='x'>here</a>\nMore text after anchor"
	res := render(t, input, 0)

	off, ok := res.Anchors["x"]
	if !ok {
		t.Fatal("anchor x not recorded")
	}
	if got := res.Text[off:]; !strings.HasPrefix(got, "here More text after anchor") {
		t.Errorf("text from anchor = %q", got)
	}
}

func TestRenderIDAnchor(t *testing.T) {
	input := `<p>Intro</p><h2 id="usage">Usage</h2><p>Run it.</p>`
	res := render(t, input, 0)

	off, ok := res.Anchors["usage"]
	if !ok {
		t.Fatal("anchor usage not recorded")
	}
	if got := res.Text[off:]; !strings.HasPrefix(got, "Usage\n") {
		t.Errorf("text from anchor = %q", got)
	}
}

func TestRenderIDInsideLink(t *testing.T) {
	res := render(t, `<p>Go <a href="u">foo <b id="in">bar</b></a> tail</p>`, 0)

	off, ok := res.Anchors["in"]
	if !ok {
		t.Fatal("anchor in not recorded")
	}
	if got := res.Text[off:]; !strings.HasPrefix(got, "bar[0] tail") {
		t.Errorf("text from anchor = %q", got)
	}
	if !strings.HasPrefix(res.Text, "Go foo bar[0] tail") {
		t.Errorf("Text = %q", res.Text)
	}
	if got := res.ByText["foo bar"]; got[0] != "u" {
		t.Errorf("ByText[foo bar] = %v", got)
	}
}

func TestRenderReplacesMalformedUTF8(t *testing.T) {
	res := render(t, "x\xff\xfey <a href='v'>\xff</a>", 0)

	if !utf8.ValidString(res.Text) {
		t.Fatalf("Text = %q, not valid UTF-8", res.Text)
	}
	if !strings.HasPrefix(res.Text, "x\uFFFD") || !strings.Contains(res.Text, "\uFFFD[0]") {
		t.Errorf("Text = %q", res.Text)
	}
	for text := range res.ByText {
		if !utf8.ValidString(text) {
			t.Errorf("link text %q not valid UTF-8", text)
		}
	}
}

func TestRenderTrailingAnchor(t *testing.T) {
	res := render(t, `<p>Body</p><a name="end"></a>`, 0)
	if off := res.Anchors["end"]; off != len(res.Text) {
		t.Errorf("trailing anchor at %d, expected %d", off, len(res.Text))
	}
}

func TestRenderWrap(t *testing.T) {
	res := render(t, "<p>aaaa bbbb cccc dddd eeee ffff gggg</p>", 20)

	lines := strings.Split(strings.TrimRight(res.Text, "\n"), "\n")
	expected := []string{"aaaa bbbb cccc dddd", "eeee ffff gggg"}
	if len(lines) != len(expected) {
		t.Fatalf("got %d lines, expected %d\ngot: %q", len(lines), len(expected), lines)
	}
	for i, line := range lines {
		if line != expected[i] {
			t.Errorf("line %d: got %q, expected %q", i, line, expected[i])
		}
	}
}

func TestRenderHeadings(t *testing.T) {
	res := render(t, "<p>one</p><h2>Title</h2><p>two</p>", 0)
	expected := "one\n\nTitle\n\ntwo\n"
	if res.Text != expected {
		t.Errorf("Text = %q, expected %q", res.Text, expected)
	}
}

func TestRenderLists(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"unordered", "<ul><li>first</li><li>second</li></ul>", "  * first\n  * second"},
		{"ordered", "<ol><li>first</li><li>second</li></ol>", " 1. first\n 2. second"},
		{"nested", "<ul><li>outer<ul><li>inner</li></ul></li></ul>", "  * outer\n      * inner"},
		{"definition", "<dl><dt>term</dt><dd>meaning</dd></dl>", "term\n    meaning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := render(t, tt.input, 0)
			if got := strings.TrimRight(res.Text, "\n"); got != tt.expected {
				t.Errorf("got %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestRenderCharrefs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"decimal above 127", "caf&#233;", "café"},
		{"ascii", "&#65;&#x42;", "AB"},
		{"c1 range is a code point", "&#150;", string(rune(150))},
		{"named", "&amp; &lt;x&gt;", "& <x>"},
		{"out of range kept", "&#99999999;", "&#99999999;"},
		{"bare ampersand", "a & b", "a & b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := render(t, "<p>"+tt.input+"</p>", 0)
			if got := strings.TrimRight(res.Text, "\n"); got != tt.expected {
				t.Errorf("got %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestRenderSkipsScriptAndTitle(t *testing.T) {
	input := `<html><head><title>T</title><script>var x = "<p>";</script></head><body><p>Body</p></body></html>`
	res := render(t, input, 0)
	if res.Text != "Body\n" {
		t.Errorf("Text = %q, expected %q", res.Text, "Body\n")
	}
}

func TestRenderPre(t *testing.T) {
	res := render(t, "<pre>\n  a  b\n c</pre><p>x</p>", 0)
	expected := "  a  b\n c\n\nx\n"
	if res.Text != expected {
		t.Errorf("Text = %q, expected %q", res.Text, expected)
	}
}

func TestTitle(t *testing.T) {
	input := `<html><head><title>
		Heap   Help
	</title></head><body></body></html>`
	if got := Title(strings.NewReader(input)); got != "Heap Help" {
		t.Errorf("Title() = %q, expected %q", got, "Heap Help")
	}
	if got := Title(strings.NewReader("<p>no title</p>")); got != "" {
		t.Errorf("Title() = %q, expected empty", got)
	}
}
