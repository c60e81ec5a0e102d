// Package config provides configuration loading for helpview using TOML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Display settings
type Display struct {
	PageRows int `toml:"pageRows"` // lines per page
	Width    int `toml:"width"`    // wrap column
}

// HTTP fetching settings
type Fetcher struct {
	UserAgent      string `toml:"userAgent"`
	TimeoutSeconds int    `toml:"timeoutSeconds"`
}

// Help content settings
type Content struct {
	Root  string `toml:"root"`  // directory relative paths are resolved against
	Start string `toml:"start"` // subject opened when none is given
}

// Session settings
type Session struct {
	RestoreSession bool `toml:"restoreSession"`
}

// Logging settings
type Logging struct {
	Level string `toml:"level"` // "none", "normal" or "debug"
}

// Config is the main configuration struct
type Config struct {
	Display Display `toml:"display"`
	Fetcher Fetcher `toml:"fetcher"`
	Content Content `toml:"content"`
	Session Session `toml:"session"`
	Logging Logging `toml:"logging"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Display: Display{
			PageRows: 20,
			Width:    72,
		},
		Fetcher: Fetcher{
			UserAgent:      "helpview/1.0",
			TimeoutSeconds: 10,
		},
		Content: Content{
			Root:  ".",
			Start: "index.html",
		},
		Session: Session{
			RestoreSession: false,
		},
		Logging: Logging{
			Level: "none",
		},
	}
}

// configDir returns the configuration directory path.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "helpview"), nil
}

// ConfigPath returns the path to the user's config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads configuration, layering the file at path on top of defaults.
// An empty path means the user's config file. A missing user config file
// yields the defaults; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return cfg, nil // Return defaults if we can't determine path
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) && !explicit {
		return cfg, nil
	}

	userCfg, md, err := loadFromTOML(path)
	if err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}

	cfg = merge(cfg, userCfg, md)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// loadFromTOML loads a TOML config file and returns the config with the
// metadata telling which keys the file sets.
func loadFromTOML(path string) (*Config, toml.MetaData, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, md, fmt.Errorf("parsing config TOML: %w", err)
	}
	return &cfg, md, nil
}

// merge layers user config on top of defaults.
// Only non-zero values from user config override defaults; booleans
// override whenever the file sets them.
func merge(defaults, user *Config, md toml.MetaData) *Config {
	result := *defaults

	if user.Display.PageRows != 0 {
		result.Display.PageRows = user.Display.PageRows
	}
	if user.Display.Width != 0 {
		result.Display.Width = user.Display.Width
	}

	if user.Fetcher.UserAgent != "" {
		result.Fetcher.UserAgent = user.Fetcher.UserAgent
	}
	if user.Fetcher.TimeoutSeconds != 0 {
		result.Fetcher.TimeoutSeconds = user.Fetcher.TimeoutSeconds
	}

	if user.Content.Root != "" {
		result.Content.Root = user.Content.Root
	}
	if user.Content.Start != "" {
		result.Content.Start = user.Content.Start
	}

	if md.IsDefined("session", "restoreSession") {
		result.Session.RestoreSession = user.Session.RestoreSession
	}

	if user.Logging.Level != "" {
		result.Logging.Level = user.Logging.Level
	}

	return &result
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var err error
	if c.Display.PageRows < 1 {
		err = multierr.Append(err, fmt.Errorf("display.pageRows must be positive, got %d", c.Display.PageRows))
	}
	if c.Display.Width < 20 {
		err = multierr.Append(err, fmt.Errorf("display.width must be at least 20, got %d", c.Display.Width))
	}
	if c.Fetcher.TimeoutSeconds < 1 {
		err = multierr.Append(err, fmt.Errorf("fetcher.timeoutSeconds must be positive, got %d", c.Fetcher.TimeoutSeconds))
	}
	switch c.Logging.Level {
	case "none", "normal", "debug":
	default:
		err = multierr.Append(err, fmt.Errorf("logging.level must be none, normal or debug, got %q", c.Logging.Level))
	}
	return err
}

// Prepare builds the logger described by the logging settings. Logs go to
// stderr so they never mix with help text on stdout.
func (l Logging) Prepare() (*zap.Logger, error) {
	var level zapcore.Level
	switch l.Level {
	case "none", "":
		return zap.NewNop(), nil
	case "normal":
		level = zapcore.InfoLevel
	case "debug":
		level = zapcore.DebugLevel
	default:
		return nil, fmt.Errorf("unknown logging level %q", l.Level)
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	ec.TimeKey = zapcore.OmitKey
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(os.Stderr), level)
	return zap.New(core), nil
}

// DefaultTOML returns the default configuration as a TOML string.
// Used for --init-config to generate a user config file.
func DefaultTOML() string {
	return `# helpview configuration
# Save to ~/.config/helpview/config.toml and customize
# Only include settings you want to change from defaults

# Display settings
[display]
pageRows = 20                 # Lines shown per page
width = 72                    # Wrap column (narrowed to the terminal when interactive)

# HTTP fetching settings
[fetcher]
userAgent = "helpview/1.0"
timeoutSeconds = 10

# Help content
[content]
root = "."                    # Directory relative subjects are resolved against
start = "index.html"          # Subject opened when none is given

# Session settings
[session]
restoreSession = false        # Restore previous tabs on startup

# Logging
[logging]
level = "none"                # "none", "normal" or "debug"
`
}
