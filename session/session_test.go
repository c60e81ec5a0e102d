package session

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := &Session{
		Tabs: []TabState{
			{Name: "0", History: []PageState{
				{URL: "file:///help/index.html", Ret: -1},
				{URL: "file:///help/a.html#x", Start: 20, Ret: 0},
			}},
			{Name: "work", History: []PageState{{URL: "about:help", Ret: -1}}},
		},
		CurrentTab: "0",
		CurrentIdx: 1,
	}

	if err := SaveFile(path, s); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if len(got.Tabs) != 2 {
		t.Fatalf("got %d tabs, expected 2", len(got.Tabs))
	}
	if p := got.Tabs[0].History[1]; p.URL != "file:///help/a.html#x" || p.Start != 20 || p.Ret != 0 {
		t.Errorf("got page %+v", p)
	}
	if got.CurrentTab != "0" || got.CurrentIdx != 1 {
		t.Errorf("got current %q/%d, expected 0/1", got.CurrentTab, got.CurrentIdx)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "none.json"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("got %v, expected ErrNotExist", err)
	}
}
