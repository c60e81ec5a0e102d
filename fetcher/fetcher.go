// Package fetcher retrieves help documents from local files or over HTTP.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FetchResult contains the fetched document and metadata.
type FetchResult struct {
	Body      []byte // UTF-8, malformed sequences replaced
	FinalURL  string // URL after following redirects
	FetchTime time.Duration
}

// Options configures the fetcher behavior.
type Options struct {
	UserAgent      string
	TimeoutSeconds int
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		UserAgent:      "helpview/1.0",
		TimeoutSeconds: 10,
	}
}

// FetchError reports a document that could not be retrieved.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsTimeout reports whether the fetch failed because its deadline passed.
func (e *FetchError) IsTimeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// Fetcher fetches file: and http(s): URLs.
type Fetcher struct {
	opts   Options
	client *http.Client
}

// New creates a fetcher. Zero fields in o fall back to DefaultOptions.
func New(o Options) *Fetcher {
	d := DefaultOptions()
	if o.UserAgent == "" {
		o.UserAgent = d.UserAgent
	}
	if o.TimeoutSeconds <= 0 {
		o.TimeoutSeconds = d.TimeoutSeconds
	}
	return &Fetcher{
		opts:   o,
		client: &http.Client{},
	}
}

// Timeout returns the per-fetch deadline.
func (f *Fetcher) Timeout() time.Duration {
	return time.Duration(f.opts.TimeoutSeconds) * time.Second
}

// Fetch retrieves rawURL. Every failure, including a timeout, is returned
// as a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, f.Timeout())
	defer cancel()

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	var result *FetchResult
	switch u.Scheme {
	case "file":
		result, err = f.file(ctx, u)
	case "http", "https":
		result, err = f.http(ctx, rawURL)
	default:
		err = fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	result.FetchTime = time.Since(start)
	return result, nil
}

func (f *Fetcher) file(ctx context.Context, u *url.URL) (*FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.FromSlash(u.Path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	body, err := decode(bytes.NewReader(data), "")
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &FetchResult{Body: body, FinalURL: u.String()}, nil
}

func (f *Fetcher) http(ctx context.Context, target string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := decode(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return &FetchResult{
		Body:     body,
		FinalURL: resp.Request.URL.String(),
	}, nil
}

// decode converts r to UTF-8 using the declared or sniffed charset and
// replaces malformed sequences with U+FFFD.
func decode(r io.Reader, contentType string) ([]byte, error) {
	cr, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(transform.NewReader(cr, unicode.UTF8.NewDecoder()))
}
