// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

// warnIfPrivilegeNeeded warns when reading a raw device without root.
// The operation itself proceeds; the open will fail with a permission
// error if access is really denied.
func warnIfPrivilegeNeeded(source string) {
	fi, err := os.Stat(source)
	if err != nil || fi.Mode()&os.ModeDevice == 0 {
		return
	}
	if os.Geteuid() != 0 {
		logrus.Warnf("Reading %q usually requires root privileges", source)
	}
}
