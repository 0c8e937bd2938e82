// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/diskimage-vm/diskimage/pkg/diskutil"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List block devices usable as imaging sources",
		Args:    WrapArgsError(cobra.NoArgs),
		RunE:    listAction,
	}
}

func listAction(cmd *cobra.Command, _ []string) error {
	disks, err := diskutil.List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 4, 8, 4, ' ', 0)
	fmt.Fprintln(w, "DEVICE\tSIZE\tMODEL\tREMOVABLE")
	for _, d := range disks {
		size := "-"
		if d.Size > 0 {
			size = units.BytesSize(float64(d.Size))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", d.Path, size, d.Model, d.Removable)
	}
	return w.Flush()
}
