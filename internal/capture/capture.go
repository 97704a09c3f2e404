// Package capture reads and writes CPUID capture files, the plain-text
// format that lets a capture taken on one system be replayed and analyzed on
// another.
//
// The format is line oriented. "L <leaf>" starts a leaf's data,
// "S <subleaf> <eax> <ebx> <ecx> <edx>" records one sub-leaf's registers, and
// "A <apicID>" appends one logical processor's hardware ID. All numbers are
// decimal. Leaves whose data differs per processor (4 and 18h) appear once
// per processor, in processor order.
package capture

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"

	"cpuidtopo/internal/cpuid"
	"cpuidtopo/internal/topology"
)

// Load parses a capture file into a replay source. Malformed lines are
// logged and skipped so a damaged capture still yields whatever can be
// recovered from it.
func Load(path string) (*cpuid.SimSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open capture file")
	}
	defer file.Close()

	src := cpuid.NewSimSource()
	seenApicIDs := mapset.NewSet[uint32]()
	lineNum := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "L":
			leaf, ok := parseValues(fields[1:], 1)
			if !ok {
				logMalformed(path, lineNum, scanner.Text())
				continue
			}
			src.BeginLeaf(leaf[0])
		case "S":
			v, ok := parseValues(fields[1:], 5)
			if !ok {
				logMalformed(path, lineNum, scanner.Text())
				continue
			}
			src.AddSubleaf(v[0], cpuid.Registers{EAX: v[1], EBX: v[2], ECX: v[3], EDX: v[4]})
		case "A":
			v, ok := parseValues(fields[1:], 1)
			if !ok {
				logMalformed(path, lineNum, scanner.Text())
				continue
			}
			if !seenApicIDs.Add(v[0]) {
				slog.Warn("duplicate APIC ID in capture file", slog.String("path", path), slog.Any("apicID", v[0]))
			}
			src.AddProcessor(v[0])
		default:
			logMalformed(path, lineNum, scanner.Text())
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read capture file")
	}
	if src.NumProcessors() == 0 {
		return nil, errors.Errorf("capture file %s contains no processors", path)
	}
	return src, nil
}

// parseValues parses exactly want decimal uint32 values.
func parseValues(fields []string, want int) ([]uint32, bool) {
	if len(fields) != want {
		return nil, false
	}
	values := make([]uint32, want)
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return nil, false
		}
		values[i] = uint32(v)
	}
	return values, true
}

func logMalformed(path string, lineNum int, line string) {
	slog.Warn("skipping malformed capture line", slog.String("path", path), slog.Int("line", lineNum), slog.String("text", line))
}

// Save walks every leaf this software interprets on the given source and
// writes a capture file. Asymmetric leaves (4 and 18h) are dumped once per
// logical processor; the rest once. The hardware ID list is written last so
// replay has the full register data before processors are bound.
func Save(path string, src cpuid.Source) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create capture file")
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	maxLeaf := cpuid.MaxLeaf(src)

	writeSingle(w, src, cpuid.LeafBasicInfo)
	if maxLeaf >= cpuid.LeafVersionInfo {
		writeSingle(w, src, cpuid.LeafVersionInfo)
	}
	if maxLeaf >= cpuid.LeafCacheParams {
		writePerProcessor(w, src, cpuid.LeafCacheParams)
	}
	if maxLeaf >= cpuid.LeafExtTopology {
		writeSingle(w, src, cpuid.LeafExtTopology)
	}
	if maxLeaf >= cpuid.LeafTlbParams {
		writePerProcessor(w, src, cpuid.LeafTlbParams)
	}
	if maxLeaf >= cpuid.LeafExtTopologyV2 {
		writeSingle(w, src, cpuid.LeafExtTopologyV2)
	}
	for _, apicID := range topology.GatherApicIDs(src) {
		fmt.Fprintf(w, "A %d\n", apicID)
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "failed to write capture file")
	}
	return nil
}

// writeSingle dumps a symmetric leaf once, always from processor 0 so the
// interleaved per-processor dumps cannot change which processor's view of a
// shared leaf is recorded.
func writeSingle(w *bufio.Writer, src cpuid.Source, leaf uint32) {
	src.BindAffinity(0)
	fmt.Fprintf(w, "L %d\n", leaf)
	for subleaf := uint32(0); ; subleaf++ {
		regs := src.Read(leaf, subleaf)
		writeSubleaf(w, subleaf, regs)
		if !cpuid.MoreSubleaves(src, leaf, subleaf, regs) {
			break
		}
	}
}

func writePerProcessor(w *bufio.Writer, src cpuid.Source, leaf uint32) {
	for processor := 0; processor < src.NumProcessors(); processor++ {
		src.BindAffinity(processor)
		fmt.Fprintf(w, "L %d\n", leaf)
		for subleaf := uint32(0); ; subleaf++ {
			regs := src.Read(leaf, subleaf)
			writeSubleaf(w, subleaf, regs)
			if !cpuid.MoreSubleaves(src, leaf, subleaf, regs) {
				break
			}
		}
	}
}

func writeSubleaf(w *bufio.Writer, subleaf uint32, regs cpuid.Registers) {
	fmt.Fprintf(w, "S %d %d %d %d %d\n", subleaf, regs.EAX, regs.EBX, regs.ECX, regs.EDX)
}

