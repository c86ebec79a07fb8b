package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	DatabaseFilename = "lazyfeed.db"
	LogFilename      = "lazyfeed.log"
)

// Init loads the configuration of workingDir and makes sure its data
// directory exists.
func Init(workingDir string, debug bool) (*Config, error) {
	cfg, err := Load(workingDir, debug)
	if err != nil {
		return nil, err
	}
	if err := EnsureDataDirectory(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EnsureDataDirectory creates the data directory with a .gitignore that
// keeps its contents out of version control.
func EnsureDataDirectory(cfg *Config) error {
	if cfg == nil || cfg.Options == nil {
		return fmt.Errorf("config not loaded")
	}
	dir := cfg.Options.DataDirectory
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	ignorePath := filepath.Join(dir, ".gitignore")
	_, err := os.Stat(ignorePath)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check .gitignore file: %w", err)
	}
	if err := os.WriteFile(ignorePath, []byte("*\n"), 0o644); err != nil {
		return fmt.Errorf("failed to create .gitignore file: %w", err)
	}
	return nil
}

// LogFile returns the path of the log file in the data directory.
func (c *Config) LogFile() string {
	return filepath.Join(c.Options.DataDirectory, "logs", LogFilename)
}
