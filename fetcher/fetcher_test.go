package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFetchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	if err := os.WriteFile(path, []byte(`<meta charset="utf-8"><p>a`+"\xff"+`b</p>`), 0644); err != nil {
		t.Fatal(err)
	}

	f := New(Options{})
	res, err := f.Fetch(context.Background(), "file://"+filepath.ToSlash(path))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.Contains(string(res.Body), "a�b") {
		t.Errorf("malformed byte not replaced: %q", res.Body)
	}
}

func TestFetchMissingFile(t *testing.T) {
	f := New(Options{})
	_, err := f.Fetch(context.Background(), "file:///nonexistent/help.html")

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T: %v", err, err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped ErrNotExist, got %v", err)
	}
}

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "tester" {
			t.Errorf("User-Agent = %q", got)
		}
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write([]byte("<p>caf\xe9</p>"))
	}))
	defer srv.Close()

	f := New(Options{UserAgent: "tester"})
	res, err := f.Fetch(context.Background(), srv.URL+"/doc.html")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(res.Body) != "<p>café</p>" {
		t.Errorf("Body = %q", res.Body)
	}
	if res.FinalURL != srv.URL+"/doc.html" {
		t.Errorf("FinalURL = %q", res.FinalURL)
	}
}

func TestFetchHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := New(Options{}).Fetch(context.Background(), srv.URL)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(Options{}).Fetch(ctx, srv.URL)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if !fe.IsTimeout() {
		t.Errorf("expected timeout, got %v", fe.Err)
	}
}

func TestFetchUnsupportedScheme(t *testing.T) {
	_, err := New(Options{}).Fetch(context.Background(), "gopher://example.com/")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
}
