package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strconv"

	"cpuidtopo/internal/cpuid"
)

// interpretedLeaves is every leaf this software decodes, in leaf order.
var interpretedLeaves = []uint32{
	cpuid.LeafBasicInfo,
	cpuid.LeafVersionInfo,
	cpuid.LeafCacheParams,
	cpuid.LeafExtTopology,
	cpuid.LeafTlbParams,
	cpuid.LeafExtTopologyV2,
}

// RawLeavesTable dumps the raw registers of every interpreted leaf as read
// from the given processor. The caller binds the processor first.
func RawLeavesTable(src cpuid.Source, processor int, apicID uint32) TableValues {
	t := TableValues{
		Name:    fmt.Sprintf("CPUID Leaves (Processor %d, APIC ID %s)", processor, hexID(apicID)),
		HasRows: true,
	}
	maxLeaf := cpuid.MaxLeaf(src)
	var leaves, subleaves, eax, ebx, ecx, edx []string
	appendRow := func(leaf, subleaf uint32, regs cpuid.Registers) {
		leaves = append(leaves, fmt.Sprintf("0x%X", leaf))
		subleaves = append(subleaves, strconv.FormatUint(uint64(subleaf), 10))
		eax = append(eax, hex32(regs.EAX))
		ebx = append(ebx, hex32(regs.EBX))
		ecx = append(ecx, hex32(regs.ECX))
		edx = append(edx, hex32(regs.EDX))
	}
	for _, leaf := range interpretedLeaves {
		if leaf > maxLeaf {
			continue
		}
		for subleaf := uint32(0); ; subleaf++ {
			regs := src.Read(leaf, subleaf)
			appendRow(leaf, subleaf, regs)
			if !cpuid.MoreSubleaves(src, leaf, subleaf, regs) {
				break
			}
		}
	}
	t.Fields = []Field{
		{Name: "Leaf", Values: leaves},
		{Name: "Sub-leaf", Values: subleaves},
		{Name: "EAX", Values: eax},
		{Name: "EBX", Values: ebx},
		{Name: "ECX", Values: ecx},
		{Name: "EDX", Values: edx},
	}
	return t
}
