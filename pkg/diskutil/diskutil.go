// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

// Package diskutil enumerates block devices usable as imaging sources.
package diskutil

// Disk describes a candidate source device.
type Disk struct {
	// Path is the raw device path, e.g. /dev/sda.
	Path string
	// Size in bytes, 0 if unknown.
	Size int64
	// Model reported by the device, may be empty.
	Model string
	// Removable is true for e.g. USB sticks and SD cards.
	Removable bool
}
