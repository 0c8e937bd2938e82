// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

package diskutil

import (
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
)

func writeSysfsDisk(t *testing.T, sysBlock, name, sectors, model, removable string) {
	t.Helper()
	dir := filepath.Join(sysBlock, name)
	assert.NilError(t, os.MkdirAll(filepath.Join(dir, "device"), 0o755))
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "size"), []byte(sectors+"\n"), 0o644))
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "removable"), []byte(removable+"\n"), 0o644))
	if model != "" {
		assert.NilError(t, os.WriteFile(filepath.Join(dir, "device", "model"), []byte(model+"\n"), 0o644))
	}
}

func TestListFrom(t *testing.T) {
	sysBlock := t.TempDir()
	writeSysfsDisk(t, sysBlock, "sda", "1953525168", "Samsung SSD 870", "0")
	writeSysfsDisk(t, sysBlock, "sdb", "60506112", "USB Flash Disk", "1")
	// Virtual devices are not imaging sources.
	writeSysfsDisk(t, sysBlock, "loop0", "8192", "", "0")
	writeSysfsDisk(t, sysBlock, "zram0", "16384", "", "0")

	disks, err := listFrom(sysBlock)
	assert.NilError(t, err)
	assert.Equal(t, 2, len(disks))

	assert.Equal(t, "/dev/sda", disks[0].Path)
	assert.Equal(t, int64(1953525168)*512, disks[0].Size)
	assert.Equal(t, "Samsung SSD 870", disks[0].Model)
	assert.Assert(t, !disks[0].Removable)

	assert.Equal(t, "/dev/sdb", disks[1].Path)
	assert.Assert(t, disks[1].Removable)
}

func TestListFromMissingAttributes(t *testing.T) {
	sysBlock := t.TempDir()
	assert.NilError(t, os.MkdirAll(filepath.Join(sysBlock, "nvme0n1"), 0o755))

	disks, err := listFrom(sysBlock)
	assert.NilError(t, err)
	assert.Equal(t, 1, len(disks))
	assert.Equal(t, "/dev/nvme0n1", disks[0].Path)
	assert.Equal(t, int64(0), disks[0].Size)
	assert.Equal(t, "", disks[0].Model)
}
