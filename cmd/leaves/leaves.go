// Package leaves is a subcommand of the root command. It dumps the raw
// registers of every CPUID leaf this software interprets.
package leaves

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cpuidtopo/internal/common"
	"cpuidtopo/internal/cpuid"
	"cpuidtopo/internal/report"
	"cpuidtopo/internal/topology"
)

const cmdName = "leaves"

var examples = []string{
	fmt.Sprintf("  Raw leaves from the first processor:   $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Raw leaves from every processor:       $ %s %s --all", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Dump raw CPUID leaf registers",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var flagAll bool

const flagAllName = "all"

func init() {
	Cmd.Flags().BoolVar(&flagAll, flagAllName, false, "dump leaves from every logical processor, not just the first")
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

// tables dumps one table per processor. Leaves 4 and 18h differ across
// processors on hybrid parts, which is the reason --all exists.
func tables(src cpuid.Source) []report.TableValues {
	apicIDs := topology.GatherApicIDs(src)
	if !flagAll && len(apicIDs) > 1 {
		apicIDs = apicIDs[:1]
	}
	var out []report.TableValues
	for processor, apicID := range apicIDs {
		src.BindAffinity(processor)
		out = append(out, report.RawLeavesTable(src, processor, apicID))
	}
	return out
}
