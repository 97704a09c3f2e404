package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strconv"
	"strings"

	"cpuidtopo/internal/topology"
)

func hex32(v uint32) string {
	return fmt.Sprintf("0x%08X", v)
}

func hexID(v uint32) string {
	return fmt.Sprintf("0x%X", v)
}

// DomainLayoutTable shows a layout as one row per domain, lowest first, plus
// the implicit package row. Width is the number of APIC ID bits the domain
// occupies by itself.
func DomainLayoutTable(name string, layout topology.Layout) TableValues {
	t := TableValues{
		Name:        name,
		HasRows:     true,
		NoDataFound: "No topology domains enumerated.",
	}
	var kinds, shifts, widths, masks []string
	previousShift := uint32(0)
	for _, d := range layout.Domains {
		kinds = append(kinds, d.Kind.String())
		shifts = append(shifts, strconv.FormatUint(uint64(d.Shift), 10))
		widths = append(widths, strconv.FormatUint(uint64(d.Shift-previousShift), 10))
		masks = append(masks, hex32(layoutDomainMask(previousShift, d.Shift)))
		previousShift = d.Shift
	}
	if len(layout.Domains) > 0 {
		kinds = append(kinds, "Package")
		shifts = append(shifts, "-")
		widths = append(widths, strconv.FormatUint(uint64(layout.ApicIDBits-previousShift), 10))
		masks = append(masks, hex32(layoutDomainMask(previousShift, layout.ApicIDBits)))
	}
	t.Fields = []Field{
		{Name: "Domain", Values: kinds},
		{Name: "Shift", Values: shifts},
		{Name: "ID Bits", Values: widths},
		{Name: "Bit Mask", Values: masks},
	}
	if layout.Description != "" {
		t.Notes = append(t.Notes, layout.Description)
	}
	return t
}

// layoutDomainMask is the mask of bits [low, high) of the APIC ID.
func layoutDomainMask(low, high uint32) uint32 {
	if high > 32 {
		high = 32
	}
	var mask uint32
	for b := low; b < high; b++ {
		mask |= uint32(1) << b
	}
	return mask
}

// MaskMatrixTable shows every absolute and relative mask a layout yields.
// Rows are the inner domains, columns the enclosing ones; the diagonal cell
// is listed as the Absolute column.
func MaskMatrixTable(layout topology.Layout, m topology.MaskMatrix) TableValues {
	t := TableValues{
		Name:        "Topology Masks",
		HasRows:     true,
		NoDataFound: "No topology domains enumerated.",
	}
	names := make([]string, 0, len(layout.Domains)+1)
	for _, d := range layout.Domains {
		names = append(names, d.Kind.String())
	}
	names = append(names, "Package")

	domainCol := Field{Name: "Domain"}
	absoluteCol := Field{Name: "Absolute"}
	relativeCols := make([]Field, len(names)-1)
	for j := 1; j < len(names); j++ {
		relativeCols[j-1] = Field{Name: "In " + names[j]}
	}
	for i := 0; i < len(names); i++ {
		domainCol.Values = append(domainCol.Values, names[i])
		absoluteCol.Values = append(absoluteCol.Values, hex32(m.Absolute(i)))
		for j := 1; j < len(names); j++ {
			if j <= i {
				relativeCols[j-1].Values = append(relativeCols[j-1].Values, "-")
				continue
			}
			relativeCols[j-1].Values = append(relativeCols[j-1].Values, hex32(m.Relative(i, j)))
		}
	}
	t.Fields = append([]Field{domainCol, absoluteCol}, relativeCols...)
	return t
}

// ThreeDomainTable reduces a topology leaf to the classic thread/core/package
// view: the three masks and each processor's identifiers under them.
func ThreeDomainTable(packageShift, lpShift uint32, apicIDs []uint32) TableValues {
	smtMask := layoutDomainMask(0, lpShift)
	coreMask := layoutDomainMask(lpShift, packageShift)
	packageMask := ^layoutDomainMask(0, packageShift)

	t := TableValues{
		Name:    "Thread / Core / Package",
		HasRows: true,
	}
	var processors, ids, packages, cores, threads []string
	for processor, apicID := range apicIDs {
		processors = append(processors, strconv.Itoa(processor))
		ids = append(ids, hexID(apicID))
		packages = append(packages, strconv.FormatUint(uint64(apicID>>packageShift), 10))
		cores = append(cores, strconv.FormatUint(uint64((apicID&coreMask)>>lpShift), 10))
		threads = append(threads, strconv.FormatUint(uint64(apicID&smtMask), 10))
	}
	t.Fields = []Field{
		{Name: "Processor", Values: processors},
		{Name: "APIC ID", Values: ids},
		{Name: "Package", Values: packages},
		{Name: "Core", Values: cores},
		{Name: "Thread", Values: threads},
	}
	t.Notes = append(t.Notes,
		fmt.Sprintf("Thread mask: %s  Core mask: %s  Package mask: %s",
			hex32(smtMask), hex32(coreMask), hex32(packageMask)))
	return t
}

// ProcessorMapTable lists each processor's identifier at every domain of a
// layout, derived through the mask matrix.
func ProcessorMapTable(layout topology.Layout, m topology.MaskMatrix, apicIDs []uint32) TableValues {
	t := TableValues{
		Name:        "Processor Map",
		HasRows:     true,
		NoDataFound: "No processors enumerated.",
	}
	processorCol := Field{Name: "Processor"}
	apicCol := Field{Name: "APIC ID"}
	domainCols := make([]Field, 0, len(layout.Domains)+1)
	for _, d := range layout.Domains {
		domainCols = append(domainCols, Field{Name: d.Kind.String()})
	}
	domainCols = append(domainCols, Field{Name: "Package"})

	packageIdx := m.PackageIndex()
	for processor, apicID := range apicIDs {
		processorCol.Values = append(processorCol.Values, strconv.Itoa(processor))
		apicCol.Values = append(apicCol.Values, hexID(apicID))
		for i := range domainCols {
			var id uint32
			if i < packageIdx {
				// identifier within the immediately enclosing domain
				id = m.RelativeID(apicID, i, i+1)
			} else {
				id = m.AbsoluteID(apicID, packageIdx)
			}
			domainCols[i].Values = append(domainCols[i].Values, strconv.FormatUint(uint64(id), 10))
		}
	}
	t.Fields = append([]Field{processorCol, apicCol}, domainCols...)
	return t
}

func formatSharers(apicIDs []uint32) string {
	ids := make([]string, 0, len(apicIDs))
	for _, id := range apicIDs {
		ids = append(ids, hexID(id))
	}
	return strings.Join(ids, ",")
}
