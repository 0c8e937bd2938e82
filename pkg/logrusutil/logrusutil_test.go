// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

package logrusutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"gotest.tools/v3/assert"
)

func TestRedirectToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diskimage.log")
	f, err := RedirectToFile(path)
	assert.NilError(t, err)
	defer func() {
		logrus.SetOutput(os.Stderr)
		_ = f.Close()
	}()

	logrus.Info("first event")
	logrus.Info("second event")

	b, err := os.ReadFile(path)
	assert.NilError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Equal(t, 2, len(lines))
	assert.Assert(t, strings.Contains(lines[0], "first event"))
	assert.Assert(t, strings.Contains(lines[1], "second event"))
}

func TestRedirectToFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diskimage.log")
	assert.NilError(t, os.WriteFile(path, []byte("existing line\n"), 0o644))

	f, err := RedirectToFile(path)
	assert.NilError(t, err)
	defer func() {
		logrus.SetOutput(os.Stderr)
		_ = f.Close()
	}()

	logrus.Info("new event")

	b, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Assert(t, strings.HasPrefix(string(b), "existing line\n"))
	assert.Assert(t, strings.Contains(string(b), "new event"))
}
