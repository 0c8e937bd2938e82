// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

package qemuimgutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
)

func TestConvertArgs(t *testing.T) {
	t.Run("qcow2", func(t *testing.T) {
		args := convertArgs("in.raw", "out.qcow2", "qcow2", false)
		assert.DeepEqual(t, []string{"convert", "-f", "raw", "-O", "qcow2", "in.raw", "out.qcow2"}, args)
	})
	t.Run("qcow2 compressed", func(t *testing.T) {
		args := convertArgs("in.raw", "out.qcow2", "qcow2", true)
		assert.DeepEqual(t, []string{"convert", "-f", "raw", "-O", "qcow2", "-c", "in.raw", "out.qcow2"}, args)
	})
	t.Run("vhd maps to vpc", func(t *testing.T) {
		args := convertArgs("in.raw", "out.vhd", "vhd", false)
		assert.DeepEqual(t, []string{"convert", "-f", "raw", "-O", "vpc", "in.raw", "out.vhd"}, args)
	})
	t.Run("vhd ignores compress", func(t *testing.T) {
		// vpc has no native compression, so -c must not be passed.
		args := convertArgs("in.raw", "out.vhd", "vhd", true)
		assert.DeepEqual(t, []string{"convert", "-f", "raw", "-O", "vpc", "in.raw", "out.vhd"}, args)
	})
}

func TestSupportsCompression(t *testing.T) {
	assert.Assert(t, SupportsCompression("qcow2"))
	assert.Assert(t, SupportsCompression("vmdk"))
	assert.Assert(t, !SupportsCompression("vhd"))
	assert.Assert(t, !SupportsCompression("raw"))
}

func TestParseInfo(t *testing.T) {
	// qemu-img create -f qcow2 foo.qcow2 4G
	// (QEMU 8.0)
	const s = `{
    "virtual-size": 4294967296,
    "filename": "foo.qcow2",
    "cluster-size": 65536,
    "format": "qcow2",
    "actual-size": 200704,
    "dirty-flag": false
}`
	info, err := parseInfo([]byte(s))
	assert.NilError(t, err)
	assert.Equal(t, "foo.qcow2", info.Filename)
	assert.Equal(t, "qcow2", info.Format)
	assert.Equal(t, int64(4294967296), info.VSize)
	assert.Equal(t, int64(200704), info.ActualSize)
	assert.Equal(t, 65536, info.ClusterSize)
}

func TestConvert(t *testing.T) {
	q := &QemuImg{}
	if err := q.Available(); err != nil {
		t.Skipf("qemu-img does not seem installed: %v", err)
	}
	tmpDir := t.TempDir()

	source := filepath.Join(tmpDir, "source.raw")
	data := make([]byte, 1<<20)
	for i := range data {
		data[i] = byte(i)
	}
	assert.NilError(t, os.WriteFile(source, data, 0o644))

	dest := filepath.Join(tmpDir, "dest.qcow2")
	assert.NilError(t, q.Convert(context.Background(), source, dest, "qcow2", false))

	info, err := q.GetInfo(context.Background(), dest)
	assert.NilError(t, err)
	assert.Equal(t, "qcow2", info.Format)
	assert.Equal(t, int64(1<<20), info.VSize)
}

func TestConvertMissingSource(t *testing.T) {
	q := &QemuImg{}
	if err := q.Available(); err != nil {
		t.Skipf("qemu-img does not seem installed: %v", err)
	}
	tmpDir := t.TempDir()
	err := q.Convert(context.Background(), filepath.Join(tmpDir, "nope.raw"), filepath.Join(tmpDir, "out.qcow2"), "qcow2", false)
	assert.ErrorContains(t, err, "failed to run")
}
