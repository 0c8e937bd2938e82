// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strconv"

	"github.com/docker/go-units"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/diskimage-vm/diskimage/pkg/config"
	"github.com/diskimage-vm/diskimage/pkg/imaging"
)

func newImageCommand() *cobra.Command {
	imageCommand := &cobra.Command{
		Use:   "image SOURCE DESTINATION",
		Short: "Image a disk or file into an image file",
		Example: `  Byte-for-byte raw copy:
  $ diskimage image /dev/sdb backup.raw

  Sparse raw copy with a progress bar:
  $ diskimage image /dev/sdb backup.raw --sparse --progress

  Compressed VMDK:
  $ diskimage image /dev/sdb backup.vmdk --format vmdk --compress`,
		Args: WrapArgsError(cobra.ExactArgs(2)),
		RunE: imageAction,
	}
	addImagingFlags(imageCommand)
	return imageCommand
}

func addImagingFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "", `Image format [raw, vhd, vmdk, qcow2] (default "raw")`)
	cmd.Flags().Bool("compress", false, "Compress the result (format-native for qcow2/vmdk, gzip for raw)")
	cmd.Flags().Bool("sparse", false, "Skip all-zero blocks to produce sparse output")
	cmd.Flags().Bool("progress", false, "Show a progress bar")
	cmd.Flags().String("buffer", "", `Block buffer size; a bare number means MiB (default "64MiB")`)
}

func imageAction(cmd *cobra.Command, args []string) error {
	opts, err := imagingOptions(cmd)
	if err != nil {
		return err
	}
	source, dest := args[0], args[1]
	warnIfPrivilegeNeeded(source)

	engine := imaging.New(logrus.WithField("source", source))
	if err := engine.ImageDisk(cmd.Context(), source, dest, opts); err != nil {
		return operationError{err}
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Disk imaging completed successfully.")
	return nil
}

// imagingOptions merges flags over the persisted defaults.
func imagingOptions(cmd *cobra.Command) (imaging.Options, error) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Warn("Ignoring unreadable config file")
		cfg = &config.Config{}
	}
	var opts imaging.Options

	formatStr, _ := cmd.Flags().GetString("format")
	if formatStr == "" {
		formatStr = cfg.Format
	}
	if formatStr != "" {
		format, err := imaging.ParseFormat(formatStr)
		if err != nil {
			return opts, err
		}
		opts.Format = format
	}

	opts.Compress = boolFlag(cmd, "compress", cfg.Compress)
	opts.Sparse = boolFlag(cmd, "sparse", cfg.Sparse)
	opts.Progress = boolFlag(cmd, "progress", cfg.Progress)

	bufStr, _ := cmd.Flags().GetString("buffer")
	if bufStr == "" {
		bufStr = cfg.BufferSize
	}
	if bufStr != "" {
		n, err := parseBufferSize(bufStr)
		if err != nil {
			return opts, err
		}
		opts.BufferSize = n
	}
	return opts, nil
}

func boolFlag(cmd *cobra.Command, name string, configured *bool) bool {
	if cmd.Flags().Changed(name) || configured == nil {
		v, _ := cmd.Flags().GetBool(name)
		return v
	}
	return *configured
}

// parseBufferSize accepts human sizes like "64MiB"; a bare number is
// taken as MiB.
func parseBufferSize(s string) (int, error) {
	if mib, err := strconv.Atoi(s); err == nil {
		if mib <= 0 {
			return 0, fmt.Errorf("buffer size must be positive, got %q", s)
		}
		return mib * units.MiB, nil
	}
	n, err := units.RAMInBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid buffer size %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("buffer size must be positive, got %q", s)
	}
	return int(n), nil
}
