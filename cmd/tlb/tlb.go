// Package tlb is a subcommand of the root command. It reports the
// translation caches described by CPUID and which logical processors share
// each one.
package tlb

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cpuidtopo/internal/cachetlb"
	"cpuidtopo/internal/common"
	"cpuidtopo/internal/cpuid"
	"cpuidtopo/internal/report"
	"cpuidtopo/internal/topology"
)

const cmdName = "tlb"

var examples = []string{
	fmt.Sprintf("  TLBs of this system:          $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  TLBs from a saved capture:    $ %s %s --input cpuid.txt", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Show TLBs and the processors sharing them",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

func init() {
	Cmd.Flags().StringSliceVar(&common.FlagFormat, common.FlagFormatName, []string{report.FormatTxt}, fmt.Sprintf("choose output format(s) from: %s", strings.Join(append([]string{report.FormatAll}, report.FormatOptions...), ", ")))
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if err := common.ValidateFormats(common.FlagFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	dc := common.DisplayCommand{Cmd: cmd, TablesFunc: tables}
	return dc.Run()
}

func tables(src cpuid.Source) []report.TableValues {
	apicIDs := topology.GatherApicIDs(src)
	tlbs := cachetlb.EnumerateTlbs(src, apicIDs)
	return []report.TableValues{report.TlbTable(tlbs)}
}
