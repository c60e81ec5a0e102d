package help

import (
	"net/url"
	"strconv"

	"helpview/document"
)

// resolveToken maps a link index or link text to an absolute URL using the
// link tables of the subject's document. Exact text matches win over
// prefix matches.
func resolveToken(token string, subj *document.Subject) (string, error) {
	doc := subj.Doc

	if isNumeric(token) {
		i, err := strconv.Atoi(token)
		href, ok := doc.Href(i)
		if err != nil || !ok {
			return "", &LookupError{Token: token, What: "link index"}
		}
		return absolute(doc.BaseURL(), href), nil
	}

	links := doc.LinksByText(token)
	if len(links) == 0 {
		links = doc.LinksByPrefix(token)
	}
	switch len(links) {
	case 0:
		return "", &LookupError{Token: token, What: "link"}
	case 1:
		return absolute(doc.BaseURL(), links[0].Href), nil
	}
	return "", &AmbiguityError{Token: token, Candidates: links}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// absolute resolves href against the document URL. Fragment-only hrefs
// stay within the document.
func absolute(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
