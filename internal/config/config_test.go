package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, "zero", cfg.Wipe.Pattern)
	assert.Equal(t, 1, cfg.Wipe.Passes)
	assert.False(t, cfg.Wipe.Verify)
	assert.Equal(t, int64(DefaultBufferSize), cfg.Wipe.BufferSize)
	assert.Equal(t, "abort", cfg.Wipe.OnPreconditionFailure)
	assert.True(t, cfg.Security.RequireRoot)
	assert.True(t, cfg.Security.RequireConfirmation)
	assert.False(t, cfg.Security.AllowSystemDevice)
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `wipe:
  pattern: random
  passes: 3
  verify: false
security:
  require_root: false
  excluded_devices:
    - /dev/sda
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "random", cfg.Wipe.Pattern)
	assert.Equal(t, 3, cfg.Wipe.Passes)
	assert.False(t, cfg.Security.RequireRoot)
	assert.Equal(t, []string{"/dev/sda"}, cfg.Security.ExcludedDevices)

	// Untouched keys keep their defaults
	assert.Equal(t, int64(DefaultBufferSize), cfg.Wipe.BufferSize)
	assert.Equal(t, "INFO", cfg.Logging.Level)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wipe:\n  passes: 0\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad pattern", func(c *Config) { c.Wipe.Pattern = "dod5220" }, "invalid wipe pattern"},
		{"zero passes", func(c *Config) { c.Wipe.Passes = 0 }, "passes must be between"},
		{"too many passes", func(c *Config) { c.Wipe.Passes = MaxPasses + 1 }, "passes must be between"},
		{"tiny buffer", func(c *Config) { c.Wipe.BufferSize = 512 }, "buffer size too small"},
		{"huge buffer", func(c *Config) { c.Wipe.BufferSize = MaxBufferSize + 1 }, "buffer size too large"},
		{"bad precondition mode", func(c *Config) { c.Wipe.OnPreconditionFailure = "retry" }, "invalid on_precondition_failure"},
		{"bad log level", func(c *Config) { c.Logging.Level = "TRACE" }, "invalid log level"},
		{"empty excluded device", func(c *Config) { c.Security.ExcludedDevices = []string{""} }, "empty excluded device"},
		{"reporting without path", func(c *Config) { c.Reporting.Enabled = true; c.Reporting.LocalPath = "" }, "local_path is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Wipe.Pattern = "random"
	cfg.Wipe.Passes = 5
	cfg.Reporting.Enabled = true
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	cfg := Default()
	cfg.Wipe.Passes = 0

	err := Save(cfg, filepath.Join(t.TempDir(), "config.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot save invalid config")
}

func TestApplyProfile(t *testing.T) {
	cfg := Default()
	require.NoError(t, ApplyProfile(cfg, "paranoid"))
	assert.Equal(t, "random", cfg.Wipe.Pattern)
	assert.Equal(t, 3, cfg.Wipe.Passes)
	assert.False(t, cfg.Wipe.Verify)
	require.NoError(t, Validate(cfg))

	cfg = Default()
	require.NoError(t, ApplyProfile(cfg, "standard"))
	assert.True(t, cfg.Wipe.Verify)
	require.NoError(t, Validate(cfg))

	cfg = Default()
	require.NoError(t, ApplyProfile(cfg, "quick"))
	assert.Equal(t, int64(4*1024*1024), cfg.Wipe.BufferSize)
	require.NoError(t, Validate(cfg))

	assert.Error(t, ApplyProfile(Default(), "extreme"))
}
