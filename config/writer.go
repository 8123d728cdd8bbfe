package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MarshalYAML writes durations in their string form so the file round-trips through Load.
func (f FetchConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Timeout   string `yaml:"timeout"`
		UserAgent string `yaml:"user_agent"`
	}{f.Timeout.String(), f.UserAgent}, nil
}

// MarshalYAML writes durations in their string form so the file round-trips through Load.
func (p PacingConfig) MarshalYAML() (interface{}, error) {
	return struct {
		MinDelay          string `yaml:"min_delay"`
		MaxDelay          string `yaml:"max_delay"`
		RequestsPerMinute int    `yaml:"requests_per_minute"`
	}{p.MinDelay.String(), p.MaxDelay.String(), p.RequestsPerMinute}, nil
}

// WriteFile writes cfg as YAML to path. Existing files are only replaced when force is set.
func WriteFile(path string, cfg *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
