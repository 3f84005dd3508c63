package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Backend names accepted in Config.Backend.
const (
	BackendAuto   = ""
	BackendChrome = "chrome"
	BackendSQLite = "sqlite"
)

const (
	// DefaultBackgroundURL returns a random UHD image on every GET.
	DefaultBackgroundURL = "https://bing.img.run/rand_uhd.php"

	DefaultBackgroundMaxAge = time.Hour
	DefaultClockInterval    = 30 * time.Second
)

// Duration is a time.Duration stored as a Go duration string ("1h30m").
type Duration struct {
	time.Duration
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	if s == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Config holds application configuration.
type Config struct {
	Backend          string   `json:"backend"`          // "chrome", "sqlite" or "" for auto
	BookmarksPath    string   `json:"bookmarksPath"`    // Chromium "Bookmarks" file
	DatabasePath     string   `json:"databasePath"`     // SQLite bookmark database
	PrefsPath        string   `json:"prefsPath"`        // SQLite key-value database
	BackgroundURL    string   `json:"backgroundURL"`    // random image endpoint
	BackgroundMaxAge Duration `json:"backgroundMaxAge"` // cached image freshness window
	ClockInterval    Duration `json:"clockInterval"`
	LogLevel         string   `json:"logLevel"`
	LogFile          string   `json:"logFile"`

	// CheckExcludeDomains are hosts whose 404s are reported as "possibly
	// private" by the link check instead of dead.
	CheckExcludeDomains []string `json:"checkExcludeDomains"`
}

// DefaultConfig returns the default configuration.
// Paths are left empty when the home directory cannot be resolved.
func DefaultConfig() Config {
	cfg := Config{
		Backend:          BackendAuto,
		BackgroundURL:    DefaultBackgroundURL,
		BackgroundMaxAge: Duration{DefaultBackgroundMaxAge},
		ClockInterval:    Duration{DefaultClockInterval},
		LogLevel:         "info",

		CheckExcludeDomains: []string{"github.com", "gitlab.com"},
	}
	if dir, err := DefaultConfigDir(); err == nil {
		cfg.DatabasePath = filepath.Join(dir, "bookmarks.db")
		cfg.PrefsPath = filepath.Join(dir, "prefs.db")
		cfg.LogFile = filepath.Join(dir, "bmtab.log")
	}
	if path, err := DefaultChromeBookmarksPath(); err == nil {
		cfg.BookmarksPath = path
	}
	return cfg
}

// LoadConfig reads config from the JSON file.
// Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Non-fatal: return defaults even if save fails
			_ = SaveConfig(path, &config)
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	config.applyDefaults(DefaultConfig())
	return &config, nil
}

// applyDefaults fills fields missing from the file.
func (c *Config) applyDefaults(defaults Config) {
	if c.BookmarksPath == "" {
		c.BookmarksPath = defaults.BookmarksPath
	}
	if c.DatabasePath == "" {
		c.DatabasePath = defaults.DatabasePath
	}
	if c.PrefsPath == "" {
		c.PrefsPath = defaults.PrefsPath
	}
	if c.BackgroundURL == "" {
		c.BackgroundURL = defaults.BackgroundURL
	}
	if c.BackgroundMaxAge.Duration <= 0 {
		c.BackgroundMaxAge = defaults.BackgroundMaxAge
	}
	if c.ClockInterval.Duration <= 0 {
		c.ClockInterval = defaults.ClockInterval
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.LogFile == "" {
		c.LogFile = defaults.LogFile
	}
	if c.CheckExcludeDomains == nil {
		c.CheckExcludeDomains = defaults.CheckExcludeDomains
	}
}

// SaveConfig writes config to the JSON file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfigDir returns ~/.config/bmtab.
func DefaultConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bmtab"), nil
}

// DefaultConfigFilePath returns the default config path: ~/.config/bmtab/config.json
func DefaultConfigFilePath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultChromeBookmarksPath returns the Bookmarks file of the default
// Chrome profile for the current OS.
func DefaultChromeBookmarksPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", "Google", "Chrome", "Default", "Bookmarks"), nil
	case "windows":
		local := os.Getenv("LOCALAPPDATA")
		if local == "" {
			local = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(local, "Google", "Chrome", "User Data", "Default", "Bookmarks"), nil
	default:
		return filepath.Join(homeDir, ".config", "google-chrome", "Default", "Bookmarks"), nil
	}
}
