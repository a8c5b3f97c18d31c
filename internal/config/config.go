package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the full tool configuration
type Config struct {
	Security struct {
		RequireRoot         bool     `yaml:"require_root"`
		RequireConfirmation bool     `yaml:"require_confirmation"`
		AllowSystemDevice   bool     `yaml:"allow_system_device"`
		ExcludedDevices     []string `yaml:"excluded_devices"`
	} `yaml:"security"`

	Wipe struct {
		Pattern               string `yaml:"pattern"` // zero/random
		Passes                int    `yaml:"passes"`
		Verify                bool   `yaml:"verify"`
		BufferSize            int64  `yaml:"buffer_size"`
		OnPreconditionFailure string `yaml:"on_precondition_failure"` // abort/prompt
	} `yaml:"wipe"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`

	Reporting struct {
		Enabled   bool   `yaml:"enabled"`
		LocalPath string `yaml:"local_path"`
	} `yaml:"reporting"`
}

const (
	// DefaultBufferSize is the per-device write buffer (1 MiB)
	DefaultBufferSize = 1024 * 1024

	// MaxBufferSize caps the write buffer (256 MiB)
	MaxBufferSize = 256 * 1024 * 1024

	// MaxPasses caps the overwrite pass count
	MaxPasses = 64
)

// Default returns the default configuration
func Default() *Config {
	cfg := &Config{}

	cfg.Security.RequireRoot = true
	cfg.Security.RequireConfirmation = true
	cfg.Security.AllowSystemDevice = false
	cfg.Security.ExcludedDevices = []string{}

	cfg.Wipe.Pattern = "zero"
	cfg.Wipe.Passes = 1
	cfg.Wipe.Verify = false
	cfg.Wipe.BufferSize = DefaultBufferSize
	cfg.Wipe.OnPreconditionFailure = "abort"

	cfg.Logging.Level = "INFO"
	cfg.Logging.File = ""

	cfg.Reporting.Enabled = false
	cfg.Reporting.LocalPath = "./reports"

	return cfg
}

// Load loads configuration from a file, falling back to defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := Validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks the configuration for validity
func Validate(config *Config) error {
	if config.Wipe.Pattern != "zero" && config.Wipe.Pattern != "random" {
		return fmt.Errorf("invalid wipe pattern: %s (expected zero or random)", config.Wipe.Pattern)
	}

	if config.Wipe.Passes < 1 || config.Wipe.Passes > MaxPasses {
		return fmt.Errorf("passes must be between 1 and %d, got %d", MaxPasses, config.Wipe.Passes)
	}

	if config.Wipe.BufferSize < 4096 {
		return fmt.Errorf("buffer size too small (min 4KB), got %d", config.Wipe.BufferSize)
	}
	if config.Wipe.BufferSize > MaxBufferSize {
		return fmt.Errorf("buffer size too large (max 256MB), got %d", config.Wipe.BufferSize)
	}

	switch config.Wipe.OnPreconditionFailure {
	case "abort", "prompt":
	default:
		return fmt.Errorf("invalid on_precondition_failure: %s (expected abort or prompt)", config.Wipe.OnPreconditionFailure)
	}

	validLevels := map[string]bool{
		"DEBUG": true,
		"INFO":  true,
		"WARN":  true,
		"ERROR": true,
	}
	if !validLevels[config.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	for _, dev := range config.Security.ExcludedDevices {
		if dev == "" {
			return fmt.Errorf("empty excluded device entry")
		}
	}

	if config.Reporting.Enabled && config.Reporting.LocalPath == "" {
		return fmt.Errorf("reporting enabled but local_path is empty")
	}

	return nil
}

// Save writes the configuration to a file
func Save(config *Config, path string) error {
	if err := Validate(config); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
