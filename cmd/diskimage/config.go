// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/diskimage-vm/diskimage/pkg/config"
	"github.com/diskimage-vm/diskimage/pkg/imaging"
)

func newConfigCommand() *cobra.Command {
	configCommand := &cobra.Command{
		Use:   "config",
		Short: "Manage persisted imaging defaults",
		Example: `  Show the current defaults:
  $ diskimage config show

  Always produce sparse images:
  $ diskimage config set sparse true

  Default to qcow2 output:
  $ diskimage config set format qcow2`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	configCommand.AddCommand(
		newConfigShowCommand(),
		newConfigSetCommand(),
		newConfigUnsetCommand(),
	)
	return configCommand
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the persisted defaults",
		Args:  WrapArgsError(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.Path()
			if err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", path)
			fmt.Fprintf(out, "format: %s\n", orUnset(cfg.Format))
			fmt.Fprintf(out, "sparse: %s\n", boolOrUnset(cfg.Sparse))
			fmt.Fprintf(out, "compress: %s\n", boolOrUnset(cfg.Compress))
			fmt.Fprintf(out, "progress: %s\n", boolOrUnset(cfg.Progress))
			fmt.Fprintf(out, "bufferSize: %s\n", orUnset(cfg.BufferSize))
			return nil
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a persisted default (format, sparse, compress, progress, bufferSize)",
		Args:  WrapArgsError(cobra.ExactArgs(2)),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := setConfigKey(cfg, args[0], args[1]); err != nil {
				return err
			}
			return config.Save(cfg)
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Remove a persisted default",
		Args:  WrapArgsError(cobra.ExactArgs(1)),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			switch args[0] {
			case "format":
				cfg.Format = ""
			case "sparse":
				cfg.Sparse = nil
			case "compress":
				cfg.Compress = nil
			case "progress":
				cfg.Progress = nil
			case "bufferSize":
				cfg.BufferSize = ""
			default:
				return fmt.Errorf("unknown config key %q", args[0])
			}
			return config.Save(cfg)
		},
	}
}

func setConfigKey(cfg *config.Config, key, value string) error {
	switch key {
	case "format":
		format, err := imaging.ParseFormat(value)
		if err != nil {
			return err
		}
		cfg.Format = string(format)
	case "sparse", "compress", "progress":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false, got %q", key, value)
		}
		switch key {
		case "sparse":
			cfg.Sparse = &b
		case "compress":
			cfg.Compress = &b
		case "progress":
			cfg.Progress = &b
		}
	case "bufferSize":
		if _, err := parseBufferSize(value); err != nil {
			return err
		}
		cfg.BufferSize = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "<unset>"
	}
	return s
}

func boolOrUnset(b *bool) string {
	if b == nil {
		return "<unset>"
	}
	return strconv.FormatBool(*b)
}
