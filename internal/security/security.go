package security

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"blockwipe/internal/config"
	"blockwipe/internal/device"
)

// Checks validates process-level preconditions before any device work starts
func Checks(cfg *config.Config) error {
	if cfg == nil {
		cfg = config.Default()
	}

	if cfg.Security.RequireRoot && !IsRoot() {
		return fmt.Errorf("root privileges required to open block devices for writing")
	}

	return nil
}

// IsRoot reports whether the process runs with root privileges
func IsRoot() bool {
	if runtime.GOOS == "windows" {
		return false
	}
	return os.Geteuid() == 0
}

// ShouldSkipDevice reports whether policy forbids wiping the device, with
// the reason: the device is excluded by configuration, or it backs the
// running system's root filesystem and allow_system_device is not set.
func ShouldSkipDevice(cfg *config.Config, path string) (bool, string) {
	if cfg != nil {
		for _, excluded := range cfg.Security.ExcludedDevices {
			if path == excluded {
				return true, "device is excluded by configuration"
			}
		}
	}

	if cfg != nil && cfg.Security.AllowSystemDevice {
		return false, ""
	}

	rootDev, err := device.RootDevice()
	if err != nil {
		// Cannot determine the system device; do not block the run
		return false, ""
	}

	// /dev/sda is the system device when /dev/sda2 backs the root fs
	if path == rootDev || strings.HasPrefix(rootDev, path) {
		return true, "device backs the root filesystem (use --allow-system-device to override)"
	}

	return false, ""
}
