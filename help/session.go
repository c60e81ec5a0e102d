package help

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"helpview/document"
)

const moreRowsFormat = "<%d more rows. Type e.g. '_.more' for more or '_.help' for help on help.>"

// Session is one point in a tab's history: a subject and the first line of
// the page shown. Sessions in a history are never modified; navigation
// returns other sessions.
//
// A session may carry a one-shot notification. Such sessions are copies
// that are not part of the history; Render shows the notification once.
type Session struct {
	mgr     *Manager
	tab     *Tab
	subject *document.Subject
	start   int
	index   int
	ret     *Session // session that followed a link to this subject
	notice  string
	from    *Session // history entry a notification copy was made from
}

// Tab returns the tab the session belongs to.
func (s *Session) Tab() *Tab { return s.tab }

// Subject returns the subject shown.
func (s *Session) Subject() *document.Subject { return s.subject }

// Start returns the index of the first line of the page.
func (s *Session) Start() int { return s.start }

// Index returns the position of the session in its tab's history.
func (s *Session) Index() int { return s.index }

// Ret returns the session that spawned this one by following a link.
func (s *Session) Ret() *Session { return s.ret }

// Notice returns the pending notification, if any.
func (s *Session) Notice() string { return s.notice }

// derive returns a new history node sharing s's manager and tab.
func (s *Session) derive(subject *document.Subject, start int, ret *Session) *Session {
	return &Session{
		mgr:     s.mgr,
		tab:     s.tab,
		subject: subject,
		start:   start,
		ret:     ret,
	}
}

// notify returns a copy of s carrying msg. The copy is not added to the
// history.
func (s *Session) notify(msg string) *Session {
	n := *s
	n.notice = msg
	n.from = s.node()
	return &n
}

// node returns the history entry s stands for.
func (s *Session) node() *Session {
	if s.from != nil {
		return s.from
	}
	return s
}

// refuse converts a recoverable navigation error into a notification.
func (s *Session) refuse(err error) *Session {
	s.mgr.log.Debug("Navigation refused", zap.String("tab", s.tab.name), zap.Error(err))
	return s.notify(err.Error())
}

// Go follows the link named by token, a link index or link text. Forward
// history is discarded. Only fetch failures are returned as errors.
func (s *Session) Go(ctx context.Context, token string) (*Session, error) {
	href, err := resolveToken(token, s.subject)
	if err != nil {
		return s.refuse(err), nil
	}
	return s.follow(ctx, href)
}

func (s *Session) follow(ctx context.Context, raw string) (*Session, error) {
	subj, err := s.mgr.subject(ctx, raw)
	if err != nil {
		return nil, err
	}
	next := s.derive(subj, 0, s.node())
	s.tab.appendAfter(s.index, next)
	s.mgr.log.Debug("Followed link",
		zap.String("tab", s.tab.name),
		zap.String("url", subj.URL()),
		zap.Int("index", next.index))
	return next, nil
}

// Help shows the help-on-help page.
func (s *Session) Help(ctx context.Context) (*Session, error) {
	return s.follow(ctx, HelpURL)
}

// Back returns the previous history entry.
func (s *Session) Back() *Session {
	if s.index == 0 {
		return s.notify("at first subject in session, try more")
	}
	prev := s.tab.At(s.index - 1)
	if prev == nil {
		return s.notify("session is no longer in history")
	}
	return prev
}

// Forward returns the next history entry, or the next page when s is the
// last entry.
func (s *Session) Forward() *Session {
	if next := s.tab.At(s.index + 1); next != nil {
		return next
	}
	return s.More()
}

// More appends a session showing the page after the current one. Forward
// history is discarded.
func (s *Session) More() *Session {
	p := s.page()
	if p.remaining == 0 {
		return s.notify("no more rows")
	}
	next := s.derive(s.subject, p.next, s.ret)
	s.tab.appendAfter(s.index, next)
	return next
}

// Less returns to the preceding page of the same subject when the history
// holds it.
func (s *Session) Less() *Session {
	if s.start == 0 {
		return s.notify("no previous rows")
	}
	if prev := s.tab.At(s.index - 1); prev != nil && prev.subject.URL() == s.subject.URL() && prev.start < s.start {
		return prev
	}
	return s.notify("no previous rows in history, try back")
}

// Return goes back to the session that followed a link to this subject.
func (s *Session) Return() *Session {
	if s.ret == nil {
		return s.notify("no subject to return to")
	}
	if !s.tab.contains(s.ret) {
		return s.notify("return subject is no longer in history")
	}
	return s.ret
}

// Pop returns like Return and discards the history after the return point.
func (s *Session) Pop() *Session {
	r := s.Return()
	if r.notice != "" {
		return r
	}
	r.tab.truncate(r.index)
	return r
}

// Top returns the first entry of the tab's history.
func (s *Session) Top() *Session {
	if first := s.tab.At(0); first != nil {
		return first
	}
	return s
}

// SelectTab switches to the named tab, creating it with a copy of s when it
// does not exist.
func (s *Session) SelectTab(name string) *Session {
	t, created := s.mgr.tab(name)
	cur := t.Latest()
	if cur == nil {
		cur = &Session{mgr: s.mgr, tab: t, subject: s.subject, start: s.start}
		t.appendAfter(t.Len()-1, cur)
	}
	if created {
		s.mgr.log.Debug("Created tab", zap.String("tab", name), zap.String("url", s.subject.URL()))
	}
	return cur.notify(cur.title())
}

// Tabs lists the tabs of the manager.
func (s *Session) Tabs() *Session {
	var lines []string
	for _, t := range s.mgr.Tabs() {
		latest := t.Latest()
		if latest == nil {
			continue
		}
		mark := " "
		if t == s.tab {
			mark = "*"
		}
		line := fmt.Sprintf("%s tab%s: %s (%d)", mark, t.name, latest.subject.Header, t.Len())
		if title := latest.subject.Doc.Title; title != "" {
			line += " " + title
		}
		lines = append(lines, line)
	}
	return s.notify(strings.Join(lines, "\n"))
}

func (s *Session) title() string {
	t := fmt.Sprintf("tab%s: %s", s.tab.name, s.subject.Header)
	if s.start > 0 {
		t += fmt.Sprintf(" +%d", s.start)
	}
	return t
}

// Render formats the session. A pending notification is rendered instead
// of the page and is cleared.
func (s *Session) Render() string {
	if s.notice != "" {
		msg := s.notice
		s.notice = ""
		return "*** " + msg + " ***\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s ---\n", s.title())
	p := s.page()
	for _, line := range p.lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if p.remaining > 0 {
		fmt.Fprintf(&sb, moreRowsFormat, p.remaining)
		sb.WriteByte('\n')
	}
	return sb.String()
}

type page struct {
	lines     []string
	next      int // first line of the following page
	remaining int // lines after this page
}

// page computes the visible lines. A single leftover line is shown on the
// page rather than announced.
func (s *Session) page() page {
	lines := strings.Split(strings.TrimRight(s.subject.Text, "\n"), "\n")
	start := min(s.start, len(lines))
	end := min(start+s.mgr.pageRows, len(lines))
	if len(lines)-end == 1 {
		end = len(lines)
	}
	return page{
		lines:     lines[start:end],
		next:      end,
		remaining: len(lines) - end,
	}
}
