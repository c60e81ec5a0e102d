package help

import (
	"fmt"
	"strings"

	"helpview/document"
)

// LookupError reports a token that names nothing: an unknown link index,
// link text or command.
type LookupError struct {
	Token string
	What  string // "link index", "link" or "command"
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no such %s: %s", e.What, e.Token)
}

// AmbiguityError reports link text shared by links to different targets.
type AmbiguityError struct {
	Token      string
	Candidates []document.Link
}

func (e *AmbiguityError) Error() string {
	parts := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		parts[i] = fmt.Sprintf("[%d] %s", c.Index, c.Href)
	}
	return fmt.Sprintf("ambiguous link %q, use an index: %s", e.Token, strings.Join(parts, ", "))
}

// CommandAmbiguityError reports an abbreviation matching several commands.
type CommandAmbiguityError struct {
	Token   string
	Matches []string
}

func (e *CommandAmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous command %q: %s", e.Token, strings.Join(e.Matches, ", "))
}
