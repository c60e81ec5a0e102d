package help

import (
	"context"
	"sort"
	"strings"
)

type command func(ctx context.Context, s *Session) (*Session, error)

func step(f func(*Session) *Session) command {
	return func(_ context.Context, s *Session) (*Session, error) {
		return f(s), nil
	}
}

var commands = map[string]command{
	"back": step((*Session).Back),
	"up":   step((*Session).Back),
	"down": step((*Session).Forward),
	"forw": step((*Session).Forward),
	"less": step((*Session).Less),
	"more": step((*Session).More),
	"ret":  step((*Session).Return),
	"og":   step((*Session).Return),
	"pop":  step((*Session).Pop),
	"top":  step((*Session).Top),
	"tabs": step((*Session).Tabs),
	"help": func(ctx context.Context, s *Session) (*Session, error) {
		return s.Help(ctx)
	},
}

var commandNames = func() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}()

// Commands returns the command names in sorted order.
func Commands() []string {
	return append([]string(nil), commandNames...)
}

// Do runs a navigation command. Exact command names are tried first, then
// "go<link>" and "tab<name>", then unique command abbreviations. Lookup
// and ambiguity problems come back as notifications; only fetch failures
// are returned as errors.
func (s *Session) Do(ctx context.Context, input string) (*Session, error) {
	token := strings.TrimSpace(input)
	if token == "" {
		return s, nil
	}
	if cmd, ok := commands[token]; ok {
		return cmd(ctx, s)
	}
	if token == "go" {
		return s.notify("go needs a link index or link text, e.g. go0"), nil
	}
	if arg, ok := strings.CutPrefix(token, "go"); ok {
		return s.Go(ctx, strings.TrimSpace(arg))
	}
	if arg, ok := strings.CutPrefix(token, "tab"); ok && strings.TrimSpace(arg) != "" {
		return s.SelectTab(strings.TrimSpace(arg)), nil
	}

	name, err := complete(token)
	if err != nil {
		return s.refuse(err), nil
	}
	return commands[name](ctx, s)
}

func complete(token string) (string, error) {
	var matches []string
	for _, name := range commandNames {
		if strings.HasPrefix(name, token) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 0:
		return "", &LookupError{Token: token, What: "command"}
	case 1:
		return matches[0], nil
	}
	return "", &CommandAmbiguityError{Token: token, Matches: matches}
}
