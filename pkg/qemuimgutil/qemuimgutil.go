// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

// Package qemuimgutil converts raw disk images into container formats
// by invoking qemu-img as a subprocess.
package qemuimgutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// DefaultBinary is the converter looked up in PATH when QemuImg.Binary
// is empty.
const DefaultBinary = "qemu-img"

// QemuImg is the qemu-img implementation of the imaging format converter.
type QemuImg struct {
	Binary string
}

func (q *QemuImg) binary() string {
	if q.Binary != "" {
		return q.Binary
	}
	return DefaultBinary
}

// Available reports whether the converter binary can be found in PATH.
func (q *QemuImg) Available() error {
	if _, err := exec.LookPath(q.binary()); err != nil {
		return fmt.Errorf("converter not found: %w", err)
	}
	return nil
}

// qemuFormat maps a user-facing format name to the name qemu-img uses.
// VHD is called "vpc" by qemu-img.
func qemuFormat(format string) string {
	if format == "vhd" {
		return "vpc"
	}
	return format
}

// SupportsCompression reports whether qemu-img can compress at
// conversion time for the given target format.
func SupportsCompression(format string) bool {
	switch format {
	case "qcow2", "vmdk":
		return true
	default:
		return false
	}
}

func convertArgs(source, dest, format string, compress bool) []string {
	args := []string{"convert", "-f", "raw", "-O", qemuFormat(format)}
	if compress && SupportsCompression(format) {
		args = append(args, "-c")
	}
	return append(args, source, dest)
}

// Convert transforms the raw image at source into dest with the given
// target format. The compress flag is ignored for formats without
// native compression. dest lifecycle on failure is owned by the caller.
func (q *QemuImg) Convert(ctx context.Context, source, dest, format string, compress bool) error {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, q.binary(), convertArgs(source, dest, format, compress)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to run %v: stdout=%q, stderr=%q: %w",
			cmd.Args, stdout.String(), stderr.String(), err)
	}
	return nil
}

// Info corresponds to the output of `qemu-img info --output=json FILE`.
type Info struct {
	Filename        string `json:"filename,omitempty"`
	Format          string `json:"format,omitempty"`
	VSize           int64  `json:"virtual-size,omitempty"`
	ActualSize      int64  `json:"actual-size,omitempty"`
	ClusterSize     int    `json:"cluster-size,omitempty"`
	BackingFilename string `json:"backing-filename,omitempty"`
}

func parseInfo(b []byte) (*Info, error) {
	var imgInfo Info
	if err := json.Unmarshal(b, &imgInfo); err != nil {
		return nil, err
	}
	return &imgInfo, nil
}

// GetInfo retrieves the information of a disk image.
func (q *QemuImg) GetInfo(ctx context.Context, f string) (*Info, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, q.binary(), "info", "--output=json", "--force-share", f)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to run %v: stdout=%q, stderr=%q: %w",
			cmd.Args, stdout.String(), stderr.String(), err)
	}
	return parseInfo(stdout.Bytes())
}
