package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileName is the config file name looked up in the standard locations.
// A file with the same base name and a .toml extension is accepted too.
const FileName = "naju-export.yaml"

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Explicit path takes priority
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the exporter can not work with.
func (c *Config) Validate() error {
	if c.Animation.FrameStep <= 0 {
		return fmt.Errorf("animation.frame_step must be positive, got %d", c.Animation.FrameStep)
	}
	if c.Export.StubTexture == "" {
		return fmt.Errorf("export.stub_texture must not be empty")
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	tomlName := strings.TrimSuffix(FileName, filepath.Ext(FileName)) + ".toml"
	candidates := []string{
		"./" + FileName,
		"./" + tomlName,
		filepath.Join(ConfigDir(), FileName),
		filepath.Join(ConfigDir(), tomlName),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "NajuExport")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "NajuExport")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "naju-export")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "naju-export")
	}
}

// isTOML reports whether path names a TOML file. Everything else is YAML.
func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// loadFromFile loads config from a YAML or TOML file, merging with existing
// values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if isTOML(path) {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}
