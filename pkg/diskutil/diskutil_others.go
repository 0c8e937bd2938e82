// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package diskutil

import (
	"fmt"
	"runtime"
)

// List returns the whole-disk block devices known to the kernel.
func List() ([]Disk, error) {
	return nil, fmt.Errorf("disk enumeration is not supported on %s", runtime.GOOS)
}
