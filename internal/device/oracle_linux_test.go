package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMountsFixture(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mounts")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSizeOfRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(path, make([]byte, 12345), 0644))

	o := NewSystemOracle()
	size, err := o.SizeOf(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(12345), size)
}

func TestSizeOfMissingDevice(t *testing.T) {
	o := NewSystemOracle()
	_, err := o.SizeOf(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to stat")
}

func TestIsMounted(t *testing.T) {
	mountsPath := writeMountsFixture(t, sampleMounts)
	o := &SystemOracle{mountsPath: mountsPath}

	mounted, err := o.IsMounted("/dev/sdb1")
	require.NoError(t, err)
	assert.True(t, mounted)

	// Partition mounted means the whole disk counts as mounted
	mounted, err = o.IsMounted("/dev/sdb")
	require.NoError(t, err)
	assert.True(t, mounted)

	mounted, err = o.IsMounted("/dev/sdc")
	require.NoError(t, err)
	assert.False(t, mounted)
}

func TestIsMountedMissingTable(t *testing.T) {
	o := &SystemOracle{mountsPath: filepath.Join(t.TempDir(), "missing")}
	_, err := o.IsMounted("/dev/sdb")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open mount table")
}

func TestDescribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(path, make([]byte, 4096), 0644))

	desc, err := Describe(NewSystemOracle(), path)
	require.NoError(t, err)
	assert.Equal(t, path, desc.Path)
	assert.Equal(t, uint64(4096), desc.TotalBytes)
}

func TestDescribeUnavailable(t *testing.T) {
	_, err := Describe(NewSystemOracle(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device unavailable")
}
