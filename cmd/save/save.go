// Package save is a subcommand of the root command. It writes the CPUID data
// of every logical processor to a capture file for offline analysis.
package save

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cpuidtopo/internal/capture"
	"cpuidtopo/internal/common"
)

const cmdName = "save"

var examples = []string{
	fmt.Sprintf("  Save this system's CPUID data:   $ %s %s cpuid.txt", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName + " <file>",
	Short:         "Save CPUID data to a capture file",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	GroupID:       "primary",
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
}

func runCmd(cmd *cobra.Command, args []string) error {
	// saving a loaded capture back out is allowed; it rewrites the file in
	// canonical order
	src, err := common.NewSource()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		slog.Error(err.Error())
		cmd.SilenceUsage = true
		return err
	}
	path := args[0]
	if err := capture.Save(path, src); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		slog.Error(err.Error())
		cmd.SilenceUsage = true
		return err
	}
	fmt.Printf("CPUID data for %d processors written to %s\n", src.NumProcessors(), path)
	return nil
}
