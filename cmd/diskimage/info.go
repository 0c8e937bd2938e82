// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/docker/go-units"
	"github.com/lima-vm/go-qcow2reader"
	"github.com/spf13/cobra"

	"github.com/diskimage-vm/diskimage/pkg/qemuimgutil"
)

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "Show the detected format and size of an image file",
		Args:  WrapArgsError(cobra.ExactArgs(1)),
		RunE:  infoAction,
	}
}

func infoAction(cmd *cobra.Command, args []string) error {
	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	img, err := qcow2reader.Open(f)
	if err != nil {
		return fmt.Errorf("failed to detect the format of %q: %w", path, err)
	}
	defer img.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Image:        %s\n", path)
	fmt.Fprintf(out, "Format:       %s\n", img.Type())
	if size := img.Size(); size >= 0 {
		fmt.Fprintf(out, "Virtual size: %s (%d bytes)\n", units.BytesSize(float64(size)), size)
	}

	// qemu-img reports details the reader does not, such as the
	// allocated size; include them when the tool is around.
	q := &qemuimgutil.QemuImg{}
	if q.Available() != nil {
		return nil
	}
	info, err := q.GetInfo(cmd.Context(), path)
	if err != nil {
		return nil
	}
	fmt.Fprintf(out, "Actual size:  %s (%d bytes)\n", units.BytesSize(float64(info.ActualSize)), info.ActualSize)
	if info.ClusterSize > 0 {
		fmt.Fprintf(out, "Cluster size: %d\n", info.ClusterSize)
	}
	return nil
}
