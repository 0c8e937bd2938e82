// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

package gziputil

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
)

func TestCompress(t *testing.T) {
	g := &Gzip{}
	if err := g.Available(); err != nil {
		t.Skipf("gzip does not seem installed: %v", err)
	}
	tmpDir := t.TempDir()

	input := filepath.Join(tmpDir, "disk.raw")
	want := bytes.Repeat([]byte("diskimage"), 100000)
	assert.NilError(t, os.WriteFile(input, want, 0o644))

	output := filepath.Join(tmpDir, "disk.raw.gz")
	assert.NilError(t, g.Compress(context.Background(), input, output))

	// The input must be preserved untouched.
	got, err := os.ReadFile(input)
	assert.NilError(t, err)
	assert.DeepEqual(t, want, got)

	f, err := os.Open(output)
	assert.NilError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	assert.NilError(t, err)
	decompressed, err := io.ReadAll(zr)
	assert.NilError(t, err)
	assert.DeepEqual(t, want, decompressed)
}

func TestCompressMissingInput(t *testing.T) {
	g := &Gzip{}
	tmpDir := t.TempDir()
	err := g.Compress(context.Background(), filepath.Join(tmpDir, "nope.raw"), filepath.Join(tmpDir, "out.gz"))
	assert.ErrorContains(t, err, "failed to open")
}
