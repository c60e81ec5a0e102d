package html

import (
	"strconv"
	"strings"
	"unicode/utf8"

	gohtml "golang.org/x/net/html"
)

// decodeRefs replaces character references in raw text. Numeric references
// decode to the Unicode code point they name; named references use the
// HTML5 entity table. References that cannot be decoded are kept verbatim.
func decodeRefs(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for {
		i := strings.IndexByte(s, '&')
		if i < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		sb.WriteString(s[:i])
		s = s[i:]
		n, text := charref(s)
		sb.WriteString(text)
		s = s[n:]
	}
}

// charref decodes the reference at the start of s (which begins with '&')
// and returns the number of bytes consumed and the replacement text.
func charref(s string) (int, string) {
	if len(s) > 1 && s[1] == '#' {
		return numericRef(s)
	}

	j := 1
	for j < len(s) && isAlnum(s[j]) {
		j++
	}
	if j == 1 {
		return 1, "&"
	}
	if j < len(s) && s[j] == ';' {
		j++
	}
	return j, gohtml.UnescapeString(s[:j])
}

func numericRef(s string) (int, string) {
	j := 2
	base := 10
	if j < len(s) && (s[j] == 'x' || s[j] == 'X') {
		base = 16
		j++
	}
	start := j
	for j < len(s) && isDigit(s[j], base) {
		j++
	}
	if j == start {
		return 1, "&"
	}
	digits := s[start:j]
	if j < len(s) && s[j] == ';' {
		j++
	}

	n, err := strconv.ParseInt(digits, base, 32)
	if err != nil {
		return unknownRef(s[:j])
	}
	// Values above 127 are code points, not bytes of some 8-bit charset.
	if r := rune(n); utf8.ValidRune(r) {
		return j, string(r)
	}
	return unknownRef(s[:j])
}

// unknownRef leaves an undecodable reference in the output untouched.
func unknownRef(ref string) (int, string) {
	return len(ref), ref
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func isDigit(c byte, base int) bool {
	if c >= '0' && c <= '9' {
		return true
	}
	if base == 16 {
		return c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
	}
	return false
}
