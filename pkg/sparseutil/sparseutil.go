// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

// Package sparseutil provides helpers for producing sparse raw images.
package sparseutil

import (
	"io"
	"os"
)

// IsZeroBlock reports whether every byte of buf is zero.
func IsZeroBlock(buf []byte) bool {
	// Compare 8-byte words first; the tail is checked byte-wise.
	for len(buf) >= 8 {
		if buf[0]|buf[1]|buf[2]|buf[3]|buf[4]|buf[5]|buf[6]|buf[7] != 0 {
			return false
		}
		buf = buf[8:]
	}
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}

// MakeSparse extends f to n bytes without allocating data blocks.
// Unwritten ranges read back as zero.
func MakeSparse(f *os.File, n int64) error {
	if _, err := f.Seek(n, io.SeekStart); err != nil {
		return err
	}
	return f.Truncate(n)
}
