// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

// Package blockdev opens raw block devices and regular files for
// sequential block reads.
package blockdev

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// ErrNotOpen is returned by ReadBlock when no device is open.
var ErrNotOpen = errors.New("block device is not open")

// Backend reads a block device or image file sequentially.
// A Backend is owned by a single imaging operation at a time.
type Backend interface {
	// Open opens the device or file at path for reading.
	// An already open handle is closed first.
	Open(path string) error
	// ReadBlock fills buf with up to len(buf) bytes from the current
	// cursor and returns the number of bytes read. 0 with a nil error
	// signals end of device.
	ReadBlock(buf []byte) (int, error)
	// DiskSize returns the total addressable bytes of the last opened
	// device, or 0 if it could not be determined.
	DiskSize() int64
	// Close releases the device handle. Calling Close on a closed or
	// never opened Backend is a no-op.
	Close() error
}

// New returns the Backend for the current platform.
func New() Backend {
	return &deviceBackend{}
}

type deviceBackend struct {
	f    *os.File
	size int64
}

func (b *deviceBackend) Open(path string) error {
	if b.f != nil {
		_ = b.Close()
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", path, err)
	}
	size, err := deviceSize(f)
	if err != nil {
		// Size is advisory (progress display only), so an unreadable
		// size does not abort the operation.
		logrus.WithError(err).Debugf("could not determine the size of %q", path)
		size = 0
	}
	b.f = f
	b.size = size
	return nil
}

func (b *deviceBackend) ReadBlock(buf []byte) (int, error) {
	if b.f == nil {
		return 0, ErrNotOpen
	}
	n, err := b.f.Read(buf)
	if errors.Is(err, io.EOF) {
		return n, nil
	}
	return n, err
}

// DiskSize keeps reporting the size of the last opened device even
// after Close.
func (b *deviceBackend) DiskSize() int64 {
	return b.size
}

func (b *deviceBackend) Close() error {
	if b.f == nil {
		return nil
	}
	err := b.f.Close()
	b.f = nil
	return err
}
