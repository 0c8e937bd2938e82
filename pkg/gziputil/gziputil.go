// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

// Package gziputil compresses finished raw images by invoking an
// external gzip as a subprocess.
package gziputil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
)

// DefaultBinary is the compressor looked up in PATH when Gzip.Binary
// is empty.
const DefaultBinary = "gzip"

// Gzip is the gzip implementation of the imaging compressor.
type Gzip struct {
	Binary string
}

func (g *Gzip) binary() string {
	if g.Binary != "" {
		return g.Binary
	}
	return DefaultBinary
}

// Available reports whether the compressor binary can be found in PATH.
func (g *Gzip) Available() error {
	if _, err := exec.LookPath(g.binary()); err != nil {
		return fmt.Errorf("compressor not found: %w", err)
	}
	return nil
}

// Compress writes a gzip-compressed copy of input to output.
// input is never modified or deleted; output lifecycle on failure is
// owned by the caller.
func (g *Gzip) Compress(ctx context.Context, input, output string) error {
	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", input, err)
	}
	defer in.Close()

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", output, err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, g.binary(), "-c")
	cmd.Stdin = in
	cmd.Stdout = out
	cmd.Stderr = &stderr
	err = cmd.Run()
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to run %v: stderr=%q: %w", cmd.Args, stderr.String(), err)
	}
	return nil
}
