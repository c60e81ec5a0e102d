// Package session handles saving and restoring help navigation state.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// PageState represents a single entry of a tab's history.
type PageState struct {
	URL   string `json:"url"` // includes the fragment, if any
	Start int    `json:"start"`
	Ret   int    `json:"ret"` // history index of the return entry, -1 for none
}

// TabState represents a named tab with its history.
type TabState struct {
	Name    string      `json:"name"`
	History []PageState `json:"history"`
}

// Session represents the complete navigation state.
type Session struct {
	Tabs       []TabState `json:"tabs"`
	CurrentTab string     `json:"currentTab"`
	CurrentIdx int        `json:"currentIdx"`
}

// Path returns the session file path.
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "helpview", "session.json"), nil
}

// Load reads the session from disk.
func Load() (*Session, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the session stored at path.
func LoadFile(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}

	return &s, nil
}

// Save writes the session to disk.
func Save(s *Session) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveFile(path, s)
}

// SaveFile writes the session to path.
func SaveFile(path string, s *Session) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
