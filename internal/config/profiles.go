package config

import (
	"fmt"
)

// ApplyProfile applies a named wipe profile to the configuration
func ApplyProfile(cfg *Config, profile string) error {
	switch profile {
	case "quick":
		cfg.Wipe.Pattern = "zero"
		cfg.Wipe.Passes = 1
		cfg.Wipe.Verify = false
		cfg.Wipe.BufferSize = 4 * 1024 * 1024 // 4MB
	case "standard":
		cfg.Wipe.Pattern = "zero"
		cfg.Wipe.Passes = 1
		cfg.Wipe.Verify = true
		cfg.Wipe.BufferSize = DefaultBufferSize
	case "paranoid":
		cfg.Wipe.Pattern = "random"
		cfg.Wipe.Passes = 3
		cfg.Wipe.Verify = false // random content is not verifiable
		cfg.Wipe.BufferSize = DefaultBufferSize
	default:
		return fmt.Errorf("unknown profile: %s", profile)
	}
	return nil
}
