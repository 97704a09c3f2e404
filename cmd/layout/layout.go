// Package layout is a subcommand of the root command. It shows how the APIC
// ID is partitioned into topology domain bit fields and the masks derived
// from that partitioning.
package layout

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

const cmdName = "layout"

var examples = []string{
	fmt.Sprintf("  APIC ID bit layout of this system:   $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Layout from a saved capture:         $ %s %s --input cpuid.txt", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Show the APIC ID bit layout and topology masks",
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

// tables shows the layout exactly as the hardware reported it, then (only
// when unknown domain codes were seen) the collapsed form software should act
// on, then the mask matrix derived from the collapsed form.
func tables(src cpuid.Source) []report.TableValues {
	src.BindAffinity(0)
	leaf, ok := topology.DetectTopologyLeaf(src)
	if !ok {
		legacy := topology.LegacyLayout(src)
		m := topology.BuildMaskMatrix(legacy)
		return []report.TableValues{
			report.DomainLayoutTable("APIC ID Layout", legacy),
			report.MaskMatrixTable(legacy, m),
		}
	}
	exact := topology.EnumerateDomains(src, leaf, topology.Exact)
	out := []report.TableValues{report.DomainLayoutTable("APIC ID Layout", exact)}
	masked := exact
	if exact.HasUnknownDomains() {
		masked = topology.EnumerateDomains(src, leaf, topology.CollapseUnknown)
		out = append(out, report.DomainLayoutTable("APIC ID Layout (unknown domains collapsed)", masked))
	}
	out = append(out, report.MaskMatrixTable(masked, topology.BuildMaskMatrix(masked)))
	return out
}
