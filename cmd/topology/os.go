package topology

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"log/slog"
	"os"
	"strings"

	"cpuidtopo/internal/cpuid"
	"cpuidtopo/internal/report"
)

const cpuinfoPath = "/proc/cpuinfo"

// osTables builds the operating system's view of the topology from
// /proc/cpuinfo, independent of this software's own CPUID decoding. Useful
// for cross-checking the CPUID-derived tables.
func osTables(src cpuid.Source) []report.TableValues {
	t := report.TableValues{
		Name:        "OS Topology",
		HasRows:     true,
		NoDataFound: "Could not read " + cpuinfoPath + ".",
	}
	file, err := os.Open(cpuinfoPath)
	if err != nil {
		slog.Error("failed to open cpuinfo", slog.String("path", cpuinfoPath), slog.String("error", err.Error()))
		return []report.TableValues{t}
	}
	defer file.Close()

	var processors, apicIDs, packages, cores []string
	var processor, apicID, packageID, coreID string
	flush := func() {
		if processor == "" {
			return
		}
		processors = append(processors, processor)
		apicIDs = append(apicIDs, apicID)
		packages = append(packages, packageID)
		cores = append(cores, coreID)
		processor, apicID, packageID, coreID = "", "", "", ""
	}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, found := strings.Cut(scanner.Text(), ":")
		if !found {
			// blank line separates processor stanzas
			flush()
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "processor":
			flush()
			processor = value
		case "apicid":
			apicID = value
		case "physical id":
			packageID = value
		case "core id":
			coreID = value
		}
	}
	flush()
	if err := scanner.Err(); err != nil {
		slog.Error("failed to read cpuinfo", slog.String("path", cpuinfoPath), slog.String("error", err.Error()))
	}

	t.Fields = []report.Field{
		{Name: "Processor", Values: processors},
		{Name: "APIC ID", Values: apicIDs},
		{Name: "Package", Values: packages},
		{Name: "Core", Values: cores},
	}
	return []report.TableValues{t}
}
