package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/qjebbs/go-jsons"
)

// Load reads the global config and the project config of workingDir. Values
// in the project config win.
func Load(workingDir string, debug bool) (*Config, error) {
	paths := append([]string{GlobalConfig(), GlobalConfigData()}, lookupConfigs(workingDir)...)
	cfg, err := loadFromConfigPaths(paths)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from paths %v: %w", paths, err)
	}
	cfg.dataConfigDir = GlobalConfigData()
	cfg.setDefaults(workingDir)
	if debug {
		cfg.Options.Debug = true
	}
	return cfg, nil
}

func lookupConfigs(workingDir string) []string {
	return []string{
		filepath.Join(workingDir, appName+".json"),
		filepath.Join(workingDir, "."+appName+".json"),
	}
}

func loadFromConfigPaths(configPaths []string) (*Config, error) {
	var readers []io.Reader
	for _, path := range configPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
		}
		slog.Debug("Loading config file", "path", path)
		readers = append(readers, bytes.NewReader(data))
	}
	return loadFromReaders(readers)
}

func loadFromReaders(readers []io.Reader) (*Config, error) {
	if len(readers) == 0 {
		return &Config{}, nil
	}

	merged, err := jsons.Merge(readers)
	if err != nil {
		return nil, fmt.Errorf("failed to merge configuration readers: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(merged, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// GlobalConfig returns the global configuration file path for the application.
func GlobalConfig() string {
	xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, appName, fmt.Sprintf("%s.json", appName))
	}

	// for windows, it should be in `%LOCALAPPDATA%/lazyfeed/`
	// for linux and macOS, it should be in `$HOME/.config/lazyfeed/`
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}
		return filepath.Join(localAppData, appName, fmt.Sprintf("%s.json", appName))
	}

	return filepath.Join(os.Getenv("HOME"), ".config", appName, fmt.Sprintf("%s.json", appName))
}

// GlobalConfigData returns the path to the main data directory for the
// application. Settings changed from inside the app are written there.
func GlobalConfigData() string {
	xdgDataHome := os.Getenv("XDG_DATA_HOME")
	if xdgDataHome != "" {
		return filepath.Join(xdgDataHome, appName, fmt.Sprintf("%s.json", appName))
	}

	// for windows, it should be in `%LOCALAPPDATA%/lazyfeed/`
	// for linux and macOS, it should be in `$HOME/.local/share/lazyfeed/`
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}
		return filepath.Join(localAppData, appName, fmt.Sprintf("%s.json", appName))
	}

	return filepath.Join(os.Getenv("HOME"), ".local", "share", appName, fmt.Sprintf("%s.json", appName))
}
