// Package help implements tabbed, paginated navigation over rendered help
// documents.
//
// A Manager owns the tabs of one browsing session. Each Tab holds a linear
// history of Sessions; a Session is one (subject, page offset) point in that
// history. Navigation never modifies a Session: it returns another one,
// either an existing history entry or a new entry appended to a possibly
// truncated history.
package help

import (
	"context"
	_ "embed"
	"sync"

	"go.uber.org/zap"

	"helpview/document"
)

const (
	// DefaultPageRows is the number of lines shown per page.
	DefaultPageRows = 20
	// DefaultTab is the name of the tab opened first.
	DefaultTab = "0"
	// HelpURL addresses the built-in help-on-help page.
	HelpURL = "about:help"
)

//go:embed helppage.html
var helpPage []byte

// Manager is the tab registry of one help browsing session.
type Manager struct {
	cache    *document.Cache
	pageRows int
	log      *zap.Logger

	mu    sync.Mutex
	tabs  map[string]*Tab
	order []*Tab
}

// Option configures a Manager.
type Option func(*Manager)

// WithPageRows sets the page size.
func WithPageRows(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.pageRows = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// NewManager creates a session manager with no tabs.
func NewManager(cache *document.Cache, opts ...Option) *Manager {
	m := &Manager{
		cache:    cache,
		pageRows: DefaultPageRows,
		log:      zap.NewNop(),
		tabs:     make(map[string]*Tab),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open loads the subject at raw and appends it to the default tab.
func (m *Manager) Open(ctx context.Context, raw string) (*Session, error) {
	subj, err := m.subject(ctx, raw)
	if err != nil {
		return nil, err
	}
	t, _ := m.tab(DefaultTab)
	s := &Session{mgr: m, tab: t, subject: subj}
	t.appendAfter(t.Len()-1, s)
	m.log.Debug("Opened subject", zap.String("tab", t.name), zap.String("url", subj.URL()))
	return s, nil
}

// Tab returns the named tab.
func (m *Manager) Tab(name string) (*Tab, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tabs[name]
	return t, ok
}

// Tabs returns all tabs in creation order.
func (m *Manager) Tabs() []*Tab {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Tab(nil), m.order...)
}

// tab returns the named tab, creating it if needed.
func (m *Manager) tab(name string) (*Tab, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tabs[name]; ok {
		return t, false
	}
	t := &Tab{name: name}
	m.tabs[name] = t
	m.order = append(m.order, t)
	return t, true
}

func (m *Manager) subject(ctx context.Context, raw string) (*document.Subject, error) {
	if raw == HelpURL {
		if _, err := m.cache.Preload(HelpURL, helpPage); err != nil {
			return nil, err
		}
	}
	return m.cache.Subject(ctx, raw)
}
