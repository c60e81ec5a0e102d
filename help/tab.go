package help

import "sync"

// Tab is one navigation thread: an ordered history of sessions. For every
// entry, history[i].index == i.
type Tab struct {
	name string

	mu      sync.Mutex
	history []*Session
}

// Name returns the tab name.
func (t *Tab) Name() string { return t.name }

// Len returns the number of history entries.
func (t *Tab) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.history)
}

// At returns history entry i, or nil.
func (t *Tab) At(i int) *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i < 0 || i >= len(t.history) {
		return nil
	}
	return t.history[i]
}

// Latest returns the last history entry, or nil for an empty tab.
func (t *Tab) Latest() *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.history) == 0 {
		return nil
	}
	return t.history[len(t.history)-1]
}

// History returns a copy of the history.
func (t *Tab) History() []*Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Session(nil), t.history...)
}

// appendAfter discards the entries after index and appends s.
func (t *Tab) appendAfter(index int, s *Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index+1 < len(t.history) {
		t.history = t.history[:index+1:index+1]
	}
	s.index = len(t.history)
	t.history = append(t.history, s)
}

// truncate discards the entries after index.
func (t *Tab) truncate(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index+1 < len(t.history) {
		t.history = t.history[:index+1:index+1]
	}
}

// contains reports whether s is still part of the history.
func (t *Tab) contains(s *Session) bool {
	return s != nil && s.tab == t && t.At(s.index) == s
}
