package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings are optional saved run preferences. Flags take precedence over
// anything stored here.
type Settings struct {
	SourceDir string `yaml:"source_dir"`
	DestDir   string `yaml:"dest_dir"`
	Pattern   string `yaml:"pattern"`
	Workers   int    `yaml:"workers"`
}

// LoadSettings reads a settings file. A missing file is not an error; zero
// settings come back so defaults apply.
func LoadSettings(path string) (Settings, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
	}

	var settings Settings
	if err := yaml.Unmarshal(raw, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return settings, nil
}

// SaveSettings persists run preferences for the next invocation.
func SaveSettings(path string, settings Settings) error {
	raw, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("save settings %s: %w", path, err)
	}
	return nil
}
