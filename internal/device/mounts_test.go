package device

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMounts = `/dev/sda2 / ext4 rw,relatime 0 0
/dev/sda1 /boot ext4 rw,relatime 0 0
/dev/sdb1 /mnt/data xfs rw,noatime 0 0
tmpfs /tmp tmpfs rw,nosuid,nodev 0 0
proc /proc proc rw 0 0
malformed-line
`

func TestParseMountTable(t *testing.T) {
	entries, err := parseMountTable(strings.NewReader(sampleMounts))
	require.NoError(t, err)

	require.Len(t, entries, 5)
	assert.Equal(t, mountEntry{Device: "/dev/sda2", MountPoint: "/"}, entries[0])
	assert.Equal(t, mountEntry{Device: "/dev/sdb1", MountPoint: "/mnt/data"}, entries[2])
	assert.Equal(t, mountEntry{Device: "tmpfs", MountPoint: "/tmp"}, entries[3])
}

func TestParseMountTableEmpty(t *testing.T) {
	entries, err := parseMountTable(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMatchesDevice(t *testing.T) {
	entry := mountEntry{Device: "/dev/sdb1", MountPoint: "/mnt/data"}

	// A mounted partition blocks both itself and the whole disk
	assert.True(t, matchesDevice(entry, "/dev/sdb1"))
	assert.True(t, matchesDevice(entry, "/dev/sdb"))

	assert.False(t, matchesDevice(entry, "/dev/sdc"))
	assert.False(t, matchesDevice(entry, "/dev/sdb12"))
}
