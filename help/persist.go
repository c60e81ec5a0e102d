package help

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"helpview/session"
)

// Snapshot captures every tab's history and the position of cur.
func (m *Manager) Snapshot(cur *Session) *session.Session {
	st := &session.Session{CurrentTab: DefaultTab}
	if cur != nil {
		st.CurrentTab = cur.tab.name
		st.CurrentIdx = cur.index
	}
	for _, t := range m.Tabs() {
		ts := session.TabState{Name: t.name}
		for _, s := range t.History() {
			ret := -1
			if s.ret != nil && t.contains(s.ret) {
				ret = s.ret.index
			}
			ts.History = append(ts.History, session.PageState{
				URL:   s.subject.URL(),
				Start: s.start,
				Ret:   ret,
			})
		}
		st.Tabs = append(st.Tabs, ts)
	}
	return st
}

// Restore rebuilds the tabs recorded in st and returns the session that was
// current. Restore is meant for a Manager with no tabs. A tab whose entry
// cannot be loaded keeps the entries before it; all such failures are
// returned together, alongside whatever could be restored.
func (m *Manager) Restore(ctx context.Context, st *session.Session) (*Session, error) {
	var errs error
	for _, ts := range st.Tabs {
		if len(ts.History) == 0 {
			continue
		}
		var built []*Session
		for _, p := range ts.History {
			subj, err := m.subject(ctx, p.URL)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("restoring tab %s: %w", ts.Name, err))
				break
			}
			s := &Session{mgr: m, subject: subj, start: max(p.Start, 0)}
			if p.Ret >= 0 && p.Ret < len(built) {
				s.ret = built[p.Ret]
			}
			built = append(built, s)
		}
		if len(built) == 0 {
			continue
		}
		t, _ := m.tab(ts.Name)
		for _, s := range built {
			s.tab = t
			t.appendAfter(t.Len()-1, s)
		}
		m.log.Debug("Restored tab", zap.String("tab", t.name), zap.Int("entries", len(built)))
	}

	t, ok := m.Tab(st.CurrentTab)
	if !ok {
		tabs := m.Tabs()
		if len(tabs) == 0 {
			if errs == nil {
				errs = errors.New("no tabs to restore")
			}
			return nil, errs
		}
		t = tabs[0]
	}
	cur := t.At(st.CurrentIdx)
	if cur == nil {
		cur = t.Latest()
	}
	return cur, errs
}
