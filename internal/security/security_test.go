package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockwipe/internal/config"
)

func TestChecksRootNotRequired(t *testing.T) {
	cfg := config.Default()
	cfg.Security.RequireRoot = false

	assert.NoError(t, Checks(cfg))
}

func TestShouldSkipExcludedDevice(t *testing.T) {
	cfg := config.Default()
	cfg.Security.ExcludedDevices = []string{"/dev/sda", "/dev/nvme0n1"}

	skip, reason := ShouldSkipDevice(cfg, "/dev/sda")
	assert.True(t, skip)
	assert.Contains(t, reason, "excluded by configuration")

	skip, _ = ShouldSkipDevice(cfg, "/dev/nvme0n1")
	assert.True(t, skip)
}

func TestShouldSkipAllowSystemDeviceBypass(t *testing.T) {
	cfg := config.Default()
	cfg.Security.AllowSystemDevice = true

	// Exclusions still apply even with the system-device bypass
	cfg.Security.ExcludedDevices = []string{"/dev/sda"}
	skip, _ := ShouldSkipDevice(cfg, "/dev/sda")
	assert.True(t, skip)

	skip, reason := ShouldSkipDevice(cfg, "/dev/sdz")
	require.False(t, skip)
	assert.Empty(t, reason)
}

func TestShouldSkipUnrelatedDevice(t *testing.T) {
	skip, reason := ShouldSkipDevice(config.Default(), "/dev/surely-not-the-root-disk")
	assert.False(t, skip)
	assert.Empty(t, reason)
}
