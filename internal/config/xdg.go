package config

import (
	"os"
	"path/filepath"
)

const appName = "swimlog"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// XDGStateHome returns the XDG state home or a default fallback.
func XDGStateHome() string {
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "state")
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appName, "swimlog.db")
}

// DefaultStandardsCacheDir returns the cache directory for downloaded standards.
func DefaultStandardsCacheDir() string {
	return filepath.Join(XDGDataHome(), appName, "standards")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}

// DefaultStatePath returns the path of the persisted session and filters.
func DefaultStatePath() string {
	return filepath.Join(XDGStateHome(), appName, "state.toml")
}

// DefaultLogPath returns the diagnostic log file path.
func DefaultLogPath() string {
	return filepath.Join(XDGStateHome(), appName, "swimlog.log")
}
