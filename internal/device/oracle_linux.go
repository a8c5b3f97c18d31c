package device

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"unsafe"

	"golang.org/x/sys/unix"
)

// SystemOracle implements Oracle against the running Linux system: device
// size via the block layer, mount state via /proc/mounts, in-use state via
// lsof, unmount via umount.
type SystemOracle struct {
	mountsPath string
}

// NewSystemOracle returns an oracle backed by the live system
func NewSystemOracle() *SystemOracle {
	return &SystemOracle{mountsPath: defaultMountsPath}
}

// SizeOf returns the raw addressable byte length of a device. Regular files
// (loopback images, test backing files) report their file size; block
// devices are queried through the BLKGETSIZE64 ioctl.
func (o *SystemOracle) SizeOf(path string) (uint64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if fi.Mode().IsRegular() {
		return uint64(fi.Size()), nil
	}

	f, err := os.OpenFile(path, os.O_RDONLY|unix.O_CLOEXEC|unix.O_NONBLOCK, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var devsize uint64
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&devsize))); errno != 0 {
		return 0, fmt.Errorf("BLKGETSIZE64 failed for %s: %w", path, errno)
	}

	return devsize, nil
}

// IsMounted reports whether the device or one of its partitions appears in
// the mount table
func (o *SystemOracle) IsMounted(path string) (bool, error) {
	f, err := os.Open(o.mountsPath)
	if err != nil {
		return false, fmt.Errorf("failed to open mount table: %w", err)
	}
	defer f.Close()

	entries, err := parseMountTable(f)
	if err != nil {
		return false, err
	}

	for _, entry := range entries {
		if matchesDevice(entry, path) {
			return true, nil
		}
	}

	return false, nil
}

// IsInUse reports whether another process holds the device open. lsof prints
// holders to stdout and exits non-zero when there are none.
func (o *SystemOracle) IsInUse(path string) (bool, error) {
	out, err := exec.Command("lsof", path).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// no holders found
			return false, nil
		}
		if errors.Is(err, exec.ErrNotFound) {
			// lsof not installed; mount table check still applies
			return false, nil
		}
		return false, fmt.Errorf("lsof failed for %s: %w", path, err)
	}

	return len(bytes.TrimSpace(out)) > 0, nil
}

// Unmount detaches the device via umount
func (o *SystemOracle) Unmount(path string) error {
	out, err := exec.Command("umount", path).CombinedOutput()
	if err != nil {
		return fmt.Errorf("umount %s failed: %w (%s)", path, err, bytes.TrimSpace(out))
	}
	return nil
}
