// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/diskimage-vm/diskimage/pkg/logrusutil"
	"github.com/diskimage-vm/diskimage/pkg/version"
)

// logFilePath is set by --log-file so the failure diagnostic can point
// at the log destination.
var logFilePath string

func main() {
	if err := newApp().Execute(); err != nil {
		logrus.Error(err)
		if logFilePath != "" {
			fmt.Fprintf(os.Stderr, "diskimage: operation failed. See %s for details.\n", logFilePath)
		}
		os.Exit(exitCode(err))
	}
}

// operationError marks a failure of an imaging operation, as opposed to
// a usage error.
type operationError struct{ error }

func (e operationError) Unwrap() error { return e.error }

// exitCode returns 2 for operation failures and 1 for usage errors.
func exitCode(err error) int {
	var opErr operationError
	if errors.As(err, &opErr) {
		return 2
	}
	return 1
}

func newApp() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "diskimage [SOURCE DESTINATION]",
		Short:   "Image block devices into raw, VHD, VMDK, or QCOW2 files",
		Version: strings.TrimPrefix(version.Version, "v"),
		Example: `  Image a disk into a raw file:
  $ diskimage /dev/sdb backup.raw --sparse --progress

  Image into a compressed qcow2:
  $ diskimage image /dev/sdb backup.qcow2 --format qcow2 --compress

  List candidate source disks:
  $ diskimage list`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	rootCmd.PersistentFlags().String("log-level", "", "Set the logging level [trace, debug, info, warn, error]")
	rootCmd.PersistentFlags().String("log-format", "text", "Set the logging format [text, json]")
	rootCmd.PersistentFlags().String("log-file", "", "Append log events to this file instead of stderr")
	rootCmd.PersistentFlags().Bool("debug", false, "Debug mode")
	rootCmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		return processGlobalFlags(rootCmd)
	}

	// The bare two-argument form is a shorthand for "diskimage image".
	addImagingFlags(rootCmd)
	rootCmd.Args = cobra.ArbitraryArgs
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		if len(args) != 2 {
			return fmt.Errorf("accepts SOURCE and DESTINATION, received %d arg(s).\nSee '%s --help'", len(args), cmd.CommandPath())
		}
		return imageAction(cmd, args)
	}

	rootCmd.AddCommand(
		newImageCommand(),
		newListCommand(),
		newInfoCommand(),
		newConfigCommand(),
	)
	return rootCmd
}

func processGlobalFlags(rootCmd *cobra.Command) error {
	// --log-level will override --debug
	if debug, _ := rootCmd.Flags().GetBool("debug"); debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	l, _ := rootCmd.Flags().GetString("log-level")
	if l != "" {
		lvl, err := logrus.ParseLevel(l)
		if err != nil {
			return err
		}
		logrus.SetLevel(lvl)
	}

	logFormat, _ := rootCmd.Flags().GetString("log-format")
	switch logFormat {
	case "json":
		logrus.StandardLogger().SetFormatter(new(logrus.JSONFormatter))
	case "text":
		// logrus uses the text format by default.
	default:
		return fmt.Errorf("unsupported log-format: %q", logFormat)
	}

	if logFile, _ := rootCmd.Flags().GetString("log-file"); logFile != "" {
		if _, err := logrusutil.RedirectToFile(logFile); err != nil {
			return err
		}
		logFilePath = logFile
	}
	return nil
}

// WrapArgsError annotates cobra args error with some context, so the error message is more user-friendly.
func WrapArgsError(argFn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		err := argFn(cmd, args)
		if err == nil {
			return nil
		}

		return fmt.Errorf("%q %s.\nSee '%s --help'.\n\nUsage:  %s\n\n%s",
			cmd.CommandPath(), err.Error(),
			cmd.CommandPath(),
			cmd.UseLine(), cmd.Short,
		)
	}
}
