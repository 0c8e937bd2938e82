// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

// Package imaging copies block devices into portable image files.
//
// One Engine runs one imaging operation at a time: a sequential
// read/write loop over a reusable block buffer, optional zero-block
// skipping for sparse output, and a post-processing handoff to an
// external format converter or compressor.
package imaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/docker/go-units"
	"github.com/sirupsen/logrus"

	"github.com/diskimage-vm/diskimage/pkg/blockdev"
	"github.com/diskimage-vm/diskimage/pkg/gziputil"
	"github.com/diskimage-vm/diskimage/pkg/progressbar"
	"github.com/diskimage-vm/diskimage/pkg/qemuimgutil"
	"github.com/diskimage-vm/diskimage/pkg/sparseutil"
)

// Format is a disk image container format.
type Format string

const (
	FormatRaw   Format = "raw"
	FormatVHD   Format = "vhd"
	FormatVMDK  Format = "vmdk"
	FormatQcow2 Format = "qcow2"
)

// ParseFormat converts a user-supplied format name into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatRaw, FormatVHD, FormatVMDK, FormatQcow2:
		return f, nil
	default:
		return "", fmt.Errorf("unknown image format %q (must be raw, vhd, vmdk, or qcow2)", s)
	}
}

// DefaultBufferSize is the block size used when Options.BufferSize is 0.
const DefaultBufferSize = 64 * units.MiB

// Options configures one imaging operation. The zero value images to a
// raw file with the default buffer size.
type Options struct {
	// Format of the final image file.
	Format Format
	// Compress the result: format-native compression for container
	// formats that support it, gzip for raw.
	Compress bool
	// Sparse skips all-zero blocks, leaving holes in the raw output.
	Sparse bool
	// Progress renders a progress bar while copying.
	Progress bool
	// BufferSize is the block size in bytes.
	BufferSize int
}

func (o Options) withDefaults() Options {
	if o.Format == "" {
		o.Format = FormatRaw
	}
	if o.BufferSize == 0 {
		o.BufferSize = DefaultBufferSize
	}
	return o
}

// Validate reports the first invalid field of o.
func (o Options) Validate() error {
	if _, err := ParseFormat(string(o.Format)); err != nil {
		return err
	}
	if o.BufferSize <= 0 {
		return fmt.Errorf("buffer size must be positive, got %d", o.BufferSize)
	}
	return nil
}

// Converter transforms a raw image into a container format.
type Converter interface {
	Available() error
	Convert(ctx context.Context, source, dest, format string, compress bool) error
}

// Compressor produces a compressed sibling of a finished raw image
// without deleting the input.
type Compressor interface {
	Available() error
	Compress(ctx context.Context, input, output string) error
}

// Engine orchestrates one imaging operation at a time. The collaborator
// fields are set by New and may be replaced before the first ImageDisk
// call.
type Engine struct {
	Backend    blockdev.Backend
	Converter  Converter
	Compressor Compressor

	// ProgressFunc receives percent-deduplicated updates instead of the
	// terminal bar when set.
	ProgressFunc func(percent int, current int64)

	log *logrus.Entry
}

// New returns an Engine wired to the platform block device backend,
// qemu-img, and gzip, logging through log.
func New(log *logrus.Entry) *Engine {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Engine{
		Backend:    blockdev.New(),
		Converter:  &qemuimgutil.QemuImg{},
		Compressor: &gziputil.Gzip{},
		log:        log,
	}
}

// ImageDisk images the disk or file at source into dest.
//
// For non-raw formats the raw copy goes to an intermediate file next to
// dest, which never persists past the call. On success exactly one
// artifact exists at dest. On a copy failure with a raw target, the
// partial output is left in place for the caller to inspect or discard.
func (e *Engine) ImageDisk(ctx context.Context, source, dest string, opts Options) error {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return err
	}

	e.log.Infof("Starting disk imaging: %q -> %q (format %s, sparse %t, compress %t)",
		source, dest, opts.Format, opts.Sparse, opts.Compress)

	// Locate external tools before touching the disk.
	if opts.Format != FormatRaw {
		if err := e.Converter.Available(); err != nil {
			e.log.Error(err)
			return err
		}
	} else if opts.Compress {
		if err := e.Compressor.Available(); err != nil {
			e.log.Error(err)
			return err
		}
	}

	if err := e.Backend.Open(source); err != nil {
		e.log.Errorf("Failed to open source disk: %v", err)
		return err
	}
	defer e.Backend.Close()

	rawPath := dest
	if opts.Format != FormatRaw {
		// The container file must never be partially constructed under
		// its real name.
		rawPath = dest + ".tmp.raw"
	}
	out, err := os.Create(rawPath)
	if err != nil {
		e.log.Errorf("Failed to create output file: %v", err)
		return fmt.Errorf("failed to create %q: %w", rawPath, err)
	}

	written, skipped, copyErr := e.copyBlocks(out, opts)
	if closeErr := out.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		if opts.Format != FormatRaw {
			e.removeIfExists(rawPath)
		}
		e.log.Errorf("Disk imaging failed: %v", copyErr)
		return copyErr
	}
	e.log.Infof("Disk imaging complete: %s written, %s skipped",
		units.BytesSize(float64(written)), units.BytesSize(float64(skipped)))

	switch {
	case opts.Format != FormatRaw:
		e.log.Infof("Converting %q to a %s image %q", rawPath, opts.Format, dest)
		convErr := e.Converter.Convert(ctx, rawPath, dest, string(opts.Format), opts.Compress)
		e.removeIfExists(rawPath)
		if convErr != nil {
			// The converter may have left a partial container behind.
			e.removeIfExists(dest)
			e.log.Errorf("Format conversion failed: %v", convErr)
			return fmt.Errorf("format conversion failed: %w", convErr)
		}
	case opts.Compress:
		gzPath := dest + ".gz"
		e.log.Infof("Compressing %q", dest)
		if err := e.Compressor.Compress(ctx, dest, gzPath); err != nil {
			// The uncompressed image stays intact.
			e.removeIfExists(gzPath)
			e.log.Errorf("Compression failed: %v", err)
			return fmt.Errorf("compression failed: %w", err)
		}
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("failed to replace %q with its compressed copy: %w", dest, err)
		}
		if err := os.Rename(gzPath, dest); err != nil {
			return fmt.Errorf("failed to replace %q with its compressed copy: %w", dest, err)
		}
	}

	e.log.Infof("Imaging completed successfully: %q", dest)
	return nil
}

// copyBlocks runs the sequential read/write loop and returns the bytes
// written and the bytes skipped as sparse holes. Their sum equals the
// bytes read from the source.
func (e *Engine) copyBlocks(dst *os.File, opts Options) (written, skipped int64, err error) {
	var bar *progressbar.Reporter
	if opts.Progress {
		total := e.Backend.DiskSize()
		if e.ProgressFunc != nil {
			bar = progressbar.NewWithSink(total, e.ProgressFunc)
		} else {
			if bar, err = progressbar.New(total); err != nil {
				return 0, 0, err
			}
		}
		defer bar.Finish()
	}

	// One buffer for the whole run keeps memory bounded independent of
	// the device size.
	buf := make([]byte, opts.BufferSize)
	for {
		n, readErr := e.Backend.ReadBlock(buf)
		if readErr != nil {
			return written, skipped, fmt.Errorf("read failed at offset %d: %w", written+skipped, readErr)
		}
		if n == 0 {
			break
		}
		block := buf[:n]
		if opts.Sparse && sparseutil.IsZeroBlock(block) {
			if _, seekErr := dst.Seek(int64(n), io.SeekCurrent); seekErr != nil {
				return written, skipped, fmt.Errorf("seek failed at offset %d: %w", written+skipped, seekErr)
			}
			skipped += int64(n)
		} else {
			if _, writeErr := dst.Write(block); writeErr != nil {
				return written, skipped, fmt.Errorf("write failed at offset %d: %w", written+skipped, writeErr)
			}
			written += int64(n)
		}
		if bar != nil {
			bar.Update(written + skipped)
		}
	}

	if skipped > 0 {
		// Trailing skipped blocks only moved the cursor; fix the file
		// size so the image covers every byte read.
		if err := dst.Truncate(written + skipped); err != nil {
			return written, skipped, fmt.Errorf("failed to extend sparse output: %w", err)
		}
	}
	return written, skipped, nil
}

func (e *Engine) removeIfExists(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		e.log.WithError(err).Warnf("Failed to remove %q", path)
	}
}
