package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"cpuidtopo/internal/cachetlb"
)

var sizePrinter = message.NewPrinter(language.English)

// friendlySize formats a cache size in the largest unit that divides it
// evenly, with thousands separators for the odd sizes that stay in bytes.
func friendlySize(bytes uint64) string {
	const kb = 1024
	const mb = 1024 * kb
	switch {
	case bytes >= mb && bytes%mb == 0:
		return sizePrinter.Sprintf("%d MB", bytes/mb)
	case bytes >= kb && bytes%kb == 0:
		return sizePrinter.Sprintf("%d KB", bytes/kb)
	default:
		return sizePrinter.Sprintf("%d B", bytes)
	}
}

// CacheTable shows the deduplicated caches, one row per physical instance.
func CacheTable(caches []cachetlb.CacheInfo) TableValues {
	t := TableValues{
		Name:        "Caches",
		HasRows:     true,
		NoDataFound: "Cache parameters (CPUID leaf 4) not supported.",
	}
	var levels, types, sizes, ways, partitions, lineSizes, sets, attributes, ids, masks, sharers []string
	for _, c := range caches {
		levels = append(levels, "L"+strconv.FormatUint(uint64(c.Level), 10))
		types = append(types, c.Type.String())
		sizes = append(sizes, friendlySize(c.SizeBytes))
		ways = append(ways, strconv.FormatUint(uint64(c.Ways), 10))
		partitions = append(partitions, strconv.FormatUint(uint64(c.Partitions), 10))
		lineSizes = append(lineSizes, strconv.FormatUint(uint64(c.LineSize), 10))
		sets = append(sets, sizePrinter.Sprintf("%d", c.Sets))
		attributes = append(attributes, cacheAttributes(c))
		ids = append(ids, hexID(c.ID))
		masks = append(masks, hex32(c.Mask))
		sharers = append(sharers, formatSharers(c.SharerApicIDs))
	}
	t.Fields = []Field{
		{Name: "Level", Values: levels},
		{Name: "Type", Values: types},
		{Name: "Size", Values: sizes},
		{Name: "Ways", Values: ways},
		{Name: "Partitions", Values: partitions},
		{Name: "Line Size", Values: lineSizes},
		{Name: "Sets", Values: sets},
		{Name: "Attributes", Values: attributes},
		{Name: "ID", Values: ids},
		{Name: "Mask", Values: masks},
		{Name: "Shared By APIC IDs", Values: sharers},
	}
	return t
}

func cacheAttributes(c cachetlb.CacheInfo) string {
	var attrs []string
	if c.SelfInitializing {
		attrs = append(attrs, "self-init")
	}
	if c.FullyAssociative {
		attrs = append(attrs, "fully-assoc")
	}
	if c.Inclusive {
		attrs = append(attrs, "inclusive")
	}
	if c.DirectMapped {
		attrs = append(attrs, "direct-mapped")
	} else {
		attrs = append(attrs, "complex-indexed")
	}
	if !c.WbinvdFlushesLowerLevels {
		attrs = append(attrs, "wbinvd-not-guaranteed")
	}
	return strings.Join(attrs, ", ")
}

// TlbTable shows the deduplicated translation caches, one row per physical
// instance.
func TlbTable(tlbs []cachetlb.TlbInfo) TableValues {
	t := TableValues{
		Name:        "TLBs",
		HasRows:     true,
		NoDataFound: "Deterministic address translation parameters (CPUID leaf 18h) not supported.",
	}
	var levels, types, pageSizes, ways, sets, partitioning, assoc, ids, masks, sharers []string
	for _, tlb := range tlbs {
		levels = append(levels, "L"+strconv.FormatUint(uint64(tlb.Level), 10))
		types = append(types, tlb.Type.String())
		pageSizes = append(pageSizes, tlb.PageSizes())
		ways = append(ways, strconv.FormatUint(uint64(tlb.Ways), 10))
		sets = append(sets, sizePrinter.Sprintf("%d", tlb.Sets))
		partitioning = append(partitioning, strconv.FormatUint(uint64(tlb.Partitioning), 10))
		assoc = append(assoc, strconv.FormatBool(tlb.FullyAssociative))
		ids = append(ids, hexID(tlb.ID))
		masks = append(masks, hex32(tlb.Mask))
		sharers = append(sharers, formatSharers(tlb.SharerApicIDs))
	}
	t.Fields = []Field{
		{Name: "Level", Values: levels},
		{Name: "Type", Values: types},
		{Name: "Page Sizes", Values: pageSizes},
		{Name: "Ways", Values: ways},
		{Name: "Sets", Values: sets},
		{Name: "Partitioning", Values: partitioning},
		{Name: "Fully Associative", Values: assoc},
		{Name: "ID", Values: ids},
		{Name: "Mask", Values: masks},
		{Name: "Shared By APIC IDs", Values: sharers},
	}
	return t
}
