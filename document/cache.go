package document

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"helpview/fetcher"
	"helpview/html"
)

// Fetcher retrieves raw documents.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetcher.FetchResult, error)
}

// Cache fetches and renders each document at most once and serves
// subjects from the cached result. Entries are never evicted.
type Cache struct {
	fetch Fetcher
	root  string
	width int
	log   *zap.Logger

	mu    sync.RWMutex
	docs  map[string]*Document
	group singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithRoot sets the directory that scheme-less URLs are resolved against.
func WithRoot(dir string) Option {
	return func(c *Cache) { c.root = dir }
}

// WithWidth sets the wrap column used when rendering.
func WithWidth(width int) Option {
	return func(c *Cache) { c.width = width }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// NewCache creates an empty cache backed by f.
func NewCache(f Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetch: f,
		root:  ".",
		width: html.DefaultWidth,
		log:   zap.NewNop(),
		docs:  make(map[string]*Document),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Len returns the number of cached documents.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

func (c *Cache) lookup(url string) *Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.docs[url]
}

// store keeps the first document stored under its URL.
func (c *Cache) store(d *Document) *Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.docs[d.URL]; ok {
		return prev
	}
	c.docs[d.URL] = d
	return d
}

// Document returns the document at url, fetching and rendering it on first
// use. Concurrent requests for the same url share one fetch. Fetch failures
// are returned as *fetcher.FetchError.
func (c *Cache) Document(ctx context.Context, url string) (*Document, error) {
	if d := c.lookup(url); d != nil {
		return d, nil
	}

	v, err, _ := c.group.Do(url, func() (any, error) {
		if d := c.lookup(url); d != nil {
			return d, nil
		}
		start := time.Now()
		res, err := c.fetch.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		d, err := c.render(url, res.Body)
		if err != nil {
			return nil, err
		}
		if res.FinalURL != "" && res.FinalURL != url {
			d.Base = res.FinalURL
		}
		c.log.Debug("Document rendered",
			zap.String("url", url),
			zap.String("base", d.BaseURL()),
			zap.Duration("fetch", res.FetchTime),
			zap.Int("links", d.NumLinks()),
			zap.Int("bytes", len(d.Text())),
			zap.Duration("elapsed", time.Since(start)))
		return c.store(d), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Document), nil
}

// Preload renders src as the document at url without fetching it. An
// already cached document is returned unchanged.
func (c *Cache) Preload(url string, src []byte) (*Document, error) {
	if d := c.lookup(url); d != nil {
		return d, nil
	}
	d, err := c.render(url, src)
	if err != nil {
		return nil, err
	}
	return c.store(d), nil
}

func (c *Cache) render(url string, src []byte) (*Document, error) {
	res, err := html.Render(bytes.NewReader(src), html.Options{Width: c.width})
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", url, err)
	}
	return New(url, html.Title(bytes.NewReader(src)), res), nil
}

// Subject normalizes raw, loads the document it names and returns the
// subject for its fragment. Unknown fragments yield the whole document.
func (c *Cache) Subject(ctx context.Context, raw string) (*Subject, error) {
	base, fragment, _ := strings.Cut(c.Normalize(raw), "#")
	d, err := c.Document(ctx, base)
	if err != nil {
		return nil, err
	}
	if _, ok := d.Anchor(fragment); fragment != "" && !ok {
		c.log.Debug("Unknown fragment", zap.String("url", base), zap.String("fragment", fragment))
	}
	return d.Subject(fragment), nil
}

// Normalize turns raw into an absolute URL. URLs with a scheme are kept;
// anything else is a path resolved against the content root and given the
// file scheme.
func (c *Cache) Normalize(raw string) string {
	if hasScheme(raw) {
		return raw
	}
	p, fragment, hasFragment := strings.Cut(raw, "#")
	if p == "" {
		return raw
	}
	p = filepath.FromSlash(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(c.root, p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	u := (&url.URL{Scheme: "file", Path: filepath.ToSlash(p)}).String()
	if hasFragment {
		u += "#" + fragment
	}
	return u
}

func hasScheme(raw string) bool {
	u, err := url.Parse(raw)
	// A one-letter scheme is a Windows drive letter.
	return err == nil && len(u.Scheme) > 1
}
