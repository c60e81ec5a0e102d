package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultTOMLMatchesDefault(t *testing.T) {
	var cfg Config
	if _, err := toml.Decode(DefaultTOML(), &cfg); err != nil {
		t.Fatalf("decoding default TOML: %v", err)
	}
	if cfg != *Default() {
		t.Errorf("got %+v, expected %+v", cfg, *Default())
	}
}

func TestLoadMergesOverrides(t *testing.T) {
	path := writeConfig(t, `
[display]
pageRows = 14

[content]
root = "/usr/share/help"

[logging]
level = "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"pageRows", cfg.Display.PageRows, 14},
		{"width", cfg.Display.Width, 72},
		{"root", cfg.Content.Root, "/usr/share/help"},
		{"start", cfg.Content.Start, "index.html"},
		{"timeout", cfg.Fetcher.TimeoutSeconds, 10},
		{"level", cfg.Logging.Level, "debug"},
	}
	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("%s: got %v, expected %v", tt.name, tt.got, tt.expected)
		}
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.toml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadReportsAllProblems(t *testing.T) {
	path := writeConfig(t, `
[display]
pageRows = -1
width = 5

[logging]
level = "loud"
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var cfg Config = *Default()
	cfg.Display.PageRows = -1
	cfg.Display.Width = 5
	cfg.Logging.Level = "loud"
	if n := len(multierr.Errors(cfg.Validate())); n != 3 {
		t.Errorf("got %d problems, expected 3", n)
	}
	if !strings.Contains(err.Error(), "logging.level") {
		t.Errorf("error %q does not mention logging.level", err)
	}
}

func TestLoggingPrepare(t *testing.T) {
	for _, level := range []string{"none", "normal", "debug"} {
		log, err := Logging{Level: level}.Prepare()
		if err != nil || log == nil {
			t.Errorf("%s: got %v, %v", level, log, err)
		}
	}
	if _, err := (Logging{Level: "loud"}).Prepare(); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestMergeExplicitFalse(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected bool
	}{
		{"explicit false", "[session]\nrestoreSession = false\n", false},
		{"explicit true", "[session]\nrestoreSession = true\n", true},
		{"unset", "[display]\npageRows = 10\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var user Config
			md, err := toml.Decode(tt.body, &user)
			if err != nil {
				t.Fatal(err)
			}
			defaults := Default()
			defaults.Session.RestoreSession = true

			got := merge(defaults, &user, md)
			if got.Session.RestoreSession != tt.expected {
				t.Errorf("got restoreSession %v, expected %v", got.Session.RestoreSession, tt.expected)
			}
		})
	}
}
