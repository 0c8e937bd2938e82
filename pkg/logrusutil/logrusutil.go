// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

// Package logrusutil configures the standard logger for the CLI.
package logrusutil

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// RedirectToFile sends the standard logger to an append-only log file,
// one line per event. The caller owns closing the returned file.
func RedirectToFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %q: %w", path, err)
	}
	logrus.SetOutput(f)
	return f, nil
}
