// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

package diskutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// List returns the whole-disk block devices known to the kernel.
func List() ([]Disk, error) {
	return listFrom("/sys/block")
}

func listFrom(sysBlock string) ([]Disk, error) {
	entries, err := os.ReadDir(sysBlock)
	if err != nil {
		return nil, err
	}
	var disks []Disk
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "loop") || strings.HasPrefix(name, "ram") || strings.HasPrefix(name, "zram") {
			continue
		}
		d := Disk{Path: "/dev/" + name}
		// sysfs reports the size in 512-byte sectors regardless of the
		// device's logical block size.
		if sectors, ok := readInt(filepath.Join(sysBlock, name, "size")); ok {
			d.Size = sectors * 512
		}
		if model, ok := readString(filepath.Join(sysBlock, name, "device", "model")); ok {
			d.Model = model
		}
		if removable, ok := readInt(filepath.Join(sysBlock, name, "removable")); ok {
			d.Removable = removable == 1
		}
		disks = append(disks, d)
	}
	return disks, nil
}

func readString(path string) (string, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(b)), true
}

func readInt(path string) (int64, bool) {
	s, ok := readString(path)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
