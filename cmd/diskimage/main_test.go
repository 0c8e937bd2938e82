// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"crypto/rand"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/docker/go-units"
	"gotest.tools/v3/assert"

	"github.com/diskimage-vm/diskimage/pkg/config"
)

func TestParseBufferSize(t *testing.T) {
	n, err := parseBufferSize("64")
	assert.NilError(t, err)
	assert.Equal(t, 64*units.MiB, n)

	n, err = parseBufferSize("32KiB")
	assert.NilError(t, err)
	assert.Equal(t, 32*units.KiB, n)

	_, err = parseBufferSize("0")
	assert.ErrorContains(t, err, "must be positive")
	_, err = parseBufferSize("lots")
	assert.ErrorContains(t, err, "invalid buffer size")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(errors.New("usage")))
	assert.Equal(t, 2, exitCode(operationError{errors.New("imaging failed")}))
}

func TestSetConfigKey(t *testing.T) {
	cfg := &config.Config{}
	assert.NilError(t, setConfigKey(cfg, "format", "qcow2"))
	assert.Equal(t, "qcow2", cfg.Format)
	assert.ErrorContains(t, setConfigKey(cfg, "format", "iso"), "unknown image format")

	assert.NilError(t, setConfigKey(cfg, "sparse", "true"))
	assert.Assert(t, cfg.Sparse != nil && *cfg.Sparse)
	assert.ErrorContains(t, setConfigKey(cfg, "sparse", "yep"), "must be true or false")

	assert.NilError(t, setConfigKey(cfg, "bufferSize", "16MiB"))
	assert.Equal(t, "16MiB", cfg.BufferSize)
	assert.ErrorContains(t, setConfigKey(cfg, "bufferSize", "-1"), "must be positive")

	assert.ErrorContains(t, setConfigKey(cfg, "color", "red"), "unknown config key")
}

func TestRootCommandImagesFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	tmpDir := t.TempDir()

	want := make([]byte, 256*1024+99)
	_, err := rand.Read(want)
	assert.NilError(t, err)
	want[0] = 0xaa
	source := filepath.Join(tmpDir, "source.img")
	assert.NilError(t, os.WriteFile(source, want, 0o644))
	dest := filepath.Join(tmpDir, "dest.raw")

	app := newApp()
	var out bytes.Buffer
	app.SetOut(&out)
	app.SetErr(&out)
	app.SetArgs([]string{source, dest, "--buffer", "64KiB", "--sparse"})
	assert.NilError(t, app.Execute())

	got, err := os.ReadFile(dest)
	assert.NilError(t, err)
	assert.DeepEqual(t, want, got)
}

func TestImageCommandRejectsUnknownFormat(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	tmpDir := t.TempDir()

	app := newApp()
	app.SetOut(new(bytes.Buffer))
	app.SetErr(new(bytes.Buffer))
	app.SetArgs([]string{"image", filepath.Join(tmpDir, "src"), filepath.Join(tmpDir, "dst"), "--format", "iso"})
	err := app.Execute()
	assert.ErrorContains(t, err, "unknown image format")
	assert.Equal(t, 1, exitCode(err))
}
