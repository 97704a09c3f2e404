// Package topology is a subcommand of the root command. It shows the thread,
// core, and package structure of the system's processors.
package topology

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"cpuidtopo/internal/common"
	"cpuidtopo/internal/cpuid"
	"cpuidtopo/internal/report"
	"cpuidtopo/internal/topology"
)

const cmdName = "topology"

var examples = []string{
	fmt.Sprintf("  Topology of this system:          $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Topology as the OS reports it:    $ %s %s --os", common.AppName, cmdName),
	fmt.Sprintf("  Topology from a saved capture:    $ %s %s --input cpuid.txt", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Show thread, core, and package structure",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var flagOs bool

const flagOsName = "os"

func init() {
	Cmd.Flags().BoolVar(&flagOs, flagOsName, false, "show the operating system's view of the topology instead of CPUID's")
	Cmd.Flags().StringSliceVar(&common.FlagFormat, common.FlagFormatName, []string{report.FormatTxt}, fmt.Sprintf("choose output format(s) from: %s", strings.Join(append([]string{report.FormatAll}, report.FormatOptions...), ", ")))
	Cmd.SetUsageFunc(usageFunc)
}

func usageFunc(cmd *cobra.Command) error {
	cmd.Printf("Usage: %s [flags]\n\n", cmd.CommandPath())
	cmd.Printf("Examples:\n%s\n\n", cmd.Example)
	cmd.Println("Flags:")
	for _, group := range getFlagGroups() {
		cmd.Printf("  %s:\n", group.GroupName)
		for _, flag := range group.Flags {
			flagDefault := ""
			if cmd.Flags().Lookup(flag.Name).DefValue != "" {
				flagDefault = fmt.Sprintf(" (default: %s)", cmd.Flags().Lookup(flag.Name).DefValue)
			}
			cmd.Printf("    --%-20s %s%s\n", flag.Name, flag.Help, flagDefault)
		}
	}
	cmd.Println("\nGlobal Flags:")
	cmd.Parent().PersistentFlags().VisitAll(func(pf *pflag.Flag) {
		flagDefault := ""
		if cmd.Parent().PersistentFlags().Lookup(pf.Name).DefValue != "" {
			flagDefault = fmt.Sprintf(" (default: %s)", pf.DefValue)
		}
		cmd.Printf("  --%-20s %s%s\n", pf.Name, pf.Usage, flagDefault)
	})
	return nil
}

func getFlagGroups() []common.FlagGroup {
	return []common.FlagGroup{
		{
			GroupName: "View Options",
			Flags: []common.Flag{
				{
					Name: flagOsName,
					Help: "show the operating system's view of the topology instead of CPUID's",
				},
			},
		},
		{
			GroupName: "Output Options",
			Flags: []common.Flag{
				{
					Name: common.FlagFormatName,
					Help: fmt.Sprintf("choose output format(s) from: %s", strings.Join(append([]string{report.FormatAll}, report.FormatOptions...), ", ")),
				},
			},
		},
	}
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if flagOs && common.FlagInput != "" {
		err := fmt.Errorf("--%s reads this system's OS state and cannot be combined with --%s", flagOsName, common.FlagInputName)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	if err := common.ValidateFormats(common.FlagFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	tablesFunc := cpuidTables
	if flagOs {
		tablesFunc = osTables
	}
	dc := common.DisplayCommand{Cmd: cmd, TablesFunc: tablesFunc}
	return dc.Run()
}

// cpuidTables builds the CPUID view: the classic three-domain reduction, the
// full domain map when more domains exist, and the legacy derivation shown
// for comparison.
func cpuidTables(src cpuid.Source) []report.TableValues {
	apicIDs := topology.GatherApicIDs(src)
	src.BindAffinity(0)

	var tables []report.TableValues
	if leaf, ok := topology.DetectTopologyLeaf(src); ok {
		packageShift, lpShift := topology.ThreeDomainShifts(src, leaf)
		tables = append(tables, report.ThreeDomainTable(packageShift, lpShift, apicIDs))

		layout := topology.EnumerateDomains(src, leaf, topology.CollapseUnknown)
		if len(layout.Domains) > 2 {
			m := topology.BuildMaskMatrix(layout)
			tables = append(tables, report.ProcessorMapTable(layout, m, apicIDs))
		}
	}
	legacy := topology.LegacyLayout(src)
	legacyTable := report.DomainLayoutTable("Legacy Derivation (for comparison)", legacy)
	tables = append(tables, legacyTable)
	return tables
}
