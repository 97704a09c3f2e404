// Package common defines data structures and functions that are used by
// multiple application commands, e.g., topology, layout, cache, tlb.
package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cpuidtopo/internal/capture"
	"cpuidtopo/internal/cpuid"
	"cpuidtopo/internal/report"
)

var AppName = filepath.Base(os.Args[0])

// AppContext represents the application context that can be accessed from all commands.
type AppContext struct {
	OutputDir string // OutputDir is the directory where the application will write output files.
	Version   string // Version is the version of the application.
}

type Flag struct {
	Name string
	Help string
}
type FlagGroup struct {
	GroupName string
	Flags     []Flag
}

var (
	FlagInput  string
	FlagFormat []string
)

const (
	FlagInputName  = "input"
	FlagFormatName = "format"
	FlagOutputName = "output"
)

// NewSource returns the CPUID source every display command reads from: a
// replay source when --input names a capture file, otherwise the live
// hardware.
func NewSource() (cpuid.Source, error) {
	if FlagInput != "" {
		return capture.Load(FlagInput)
	}
	return cpuid.NewNativeSource(), nil
}

// TablesFunc builds a command's tables from a CPUID source.
type TablesFunc func(src cpuid.Source) []report.TableValues

// DisplayCommand is the common flow/logic for all commands that read CPUID
// data and render report tables, i.e., 'topology', 'layout', 'cache', 'tlb',
// 'leaves'. The individual commands populate the struct with the details
// specific to the command and then call Run.
type DisplayCommand struct {
	Cmd        *cobra.Command
	TablesFunc TablesFunc
}

// stdout formats are printed directly; the rest only make sense as files.
var stdoutFormats = []string{report.FormatTxt, report.FormatJson, report.FormatYaml}

func (dc *DisplayCommand) Run() error {
	appContext := dc.Cmd.Parent().Context().Value(AppContext{}).(AppContext)

	src, err := NewSource()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		slog.Error(err.Error())
		dc.Cmd.SilenceUsage = true
		return err
	}

	tables := dc.TablesFunc(src)

	formats := FlagFormat
	if slices.Contains(formats, report.FormatAll) {
		formats = report.FormatOptions
	}

	var reportFilePaths []string
	for _, format := range formats {
		out, err := report.Create(format, tables, AppName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			slog.Error(err.Error())
			dc.Cmd.SilenceUsage = true
			return err
		}
		if appContext.OutputDir == "" && slices.Contains(stdoutFormats, format) {
			fmt.Print(string(out))
			continue
		}
		path, err := writeReportFile(appContext.OutputDir, dc.Cmd.Name(), format, out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			slog.Error(err.Error())
			dc.Cmd.SilenceUsage = true
			return err
		}
		reportFilePaths = append(reportFilePaths, path)
	}
	printReportFilePaths(reportFilePaths)
	return nil
}

// writeReportFile places one rendered report under the output directory,
// creating the directory on first use. An empty directory means the current
// directory; only xlsx reports land there without --output.
func writeReportFile(outputDir, commandName, format string, out []byte) (string, error) {
	if outputDir != "" {
		if err := CreateOutputDir(outputDir); err != nil {
			return "", err
		}
	}
	path := filepath.Join(outputDir, fmt.Sprintf("%s-%s.%s", AppName, commandName, format))
	if err := os.WriteFile(path, out, 0644); err != nil { // #nosec G306
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}

// printReportFilePaths lists the written files, but not when output is piped
// so that redirected stdout stays machine readable.
func printReportFilePaths(paths []string) {
	if len(paths) == 0 || !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	fmt.Println("Report files:")
	for _, path := range paths {
		fmt.Printf("  %s\n", path)
	}
}

// CreateOutputDir creates the output directory if it does not exist
func CreateOutputDir(outputDir string) error {
	err := os.MkdirAll(outputDir, 0755) // #nosec G301
	if err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// ValidateFormats confirms every requested format is renderable.
func ValidateFormats(formats []string) error {
	for _, format := range formats {
		if format != report.FormatAll && !slices.Contains(report.FormatOptions, format) {
			return fmt.Errorf("format options are %s", strings.Join(append(slices.Clone(report.FormatOptions), report.FormatAll), ", "))
		}
	}
	return nil
}
