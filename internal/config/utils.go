package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/intakehq/intake/internal/constants"
)

func GetConfigPath(homeDir string) string {
	return filepath.Join(
		homeDir,
		constants.ConfigDir,
		constants.ConfigFile+"."+constants.ConfigFileType,
	)
}

// EnsureConfigExists creates the config directory and a populated default
// config on first run, then verifies the result loads and names a usable
// lead source.
func EnsureConfigExists(homeDir string) error {
	configPath := GetConfigPath(homeDir)
	configDir := filepath.Dir(configPath)

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		cfg := &Config{home: homeDir}
		cfg.EnsureDefaults()
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to write default config: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to check config file existence: %w", err)
	}

	cfg, err := Load(homeDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch cfg.Leads.Source {
	case SourceFile:
		if strings.TrimSpace(cfg.Leads.Path) == "" {
			return &InitError{msg: "leads source is 'file' but no leads path is set"}
		}
	case SourceRemote:
		if strings.TrimSpace(cfg.Leads.URL) == "" {
			return &InitError{msg: "leads source is 'remote' but no leads url is set"}
		}
	}

	return nil
}
