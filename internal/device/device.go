// Package device answers read-only questions about block devices: total
// addressable size, whether a device is mounted, and whether another process
// holds it open. Nothing in this package modifies device state.
package device

import (
	"fmt"
)

// Descriptor is a fixed snapshot of a device for the lifetime of one wipe.
// The size is resolved once and never re-queried mid-operation.
type Descriptor struct {
	Path       string
	TotalBytes uint64
}

// Oracle answers availability questions about a device path. Implementations
// may shell out, call platform APIs, or be mocked entirely for tests.
type Oracle interface {
	// SizeOf returns the raw addressable byte length of the device.
	SizeOf(path string) (uint64, error)

	// IsMounted reports whether the device or one of its partitions is
	// present in the mount table.
	IsMounted(path string) (bool, error)

	// IsInUse reports whether another process holds the device open.
	// Independent of IsMounted: raw access by another tool does not show
	// up in the mount table.
	IsInUse(path string) (bool, error)

	// Unmount detaches the device. The only mutating operation, used by
	// the interactive unmount prompt before any wipe begins.
	Unmount(path string) error
}

// Describe resolves a device descriptor via the oracle
func Describe(o Oracle, path string) (Descriptor, error) {
	size, err := o.SizeOf(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("device unavailable: %w", err)
	}

	return Descriptor{Path: path, TotalBytes: size}, nil
}
