// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

package main

// warnIfPrivilegeNeeded is a no-op on Windows; raw device access is
// gated by the Administrators group, which the open reports on its own.
func warnIfPrivilegeNeeded(string) {}
