package device

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const defaultMountsPath = "/proc/mounts"

// mountEntry is one line of the kernel mount table
type mountEntry struct {
	Device     string
	MountPoint string
}

// parseMountTable parses /proc/mounts-format content
func parseMountTable(r io.Reader) ([]mountEntry, error) {
	var entries []mountEntry

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		entries = append(entries, mountEntry{
			Device:     fields[0],
			MountPoint: fields[1],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read mount table: %w", err)
	}

	return entries, nil
}

// matchesDevice reports whether an entry refers to the device itself or to
// one of its partitions (a mounted /dev/sda1 blocks wiping /dev/sda)
func matchesDevice(entry mountEntry, path string) bool {
	return entry.Device == path || strings.HasPrefix(entry.Device, path)
}

// RootDevice returns the device node backing the root filesystem, used by
// the security policy to refuse wiping the running system's disk
func RootDevice() (string, error) {
	f, err := os.Open(defaultMountsPath)
	if err != nil {
		return "", fmt.Errorf("failed to open mount table: %w", err)
	}
	defer f.Close()

	entries, err := parseMountTable(f)
	if err != nil {
		return "", err
	}

	for _, entry := range entries {
		if entry.MountPoint == "/" {
			return entry.Device, nil
		}
	}

	return "", fmt.Errorf("root filesystem not found in mount table")
}
