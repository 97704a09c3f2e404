package cachetlb

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strings"

	"cpuidtopo/internal/cpuid"
	"cpuidtopo/internal/topology"
)

// TlbType is the leaf 18h translation cache type field.
type TlbType uint32

const (
	TlbTypeInvalid TlbType = iota
	TlbTypeData
	TlbTypeInstruction
	TlbTypeUnified
	TlbTypeLoadOnly
	TlbTypeStoreOnly
)

func (t TlbType) String() string {
	switch t {
	case TlbTypeData:
		return "Data TLB"
	case TlbTypeInstruction:
		return "Instruction TLB"
	case TlbTypeUnified:
		return "Unified TLB"
	case TlbTypeLoadOnly:
		return "Load Only TLB"
	case TlbTypeStoreOnly:
		return "Store Only TLB"
	default:
		return "Invalid"
	}
}

// TlbInfo describes one physically distinct translation cache and the logical
// processors sharing it.
type TlbInfo struct {
	Type  TlbType
	Level uint32

	ID   uint32
	Mask uint32

	Ways uint32
	Sets uint32

	FullyAssociative bool
	Partitioning     uint32

	Page4K bool
	Page2M bool
	Page4M bool
	Page1G bool

	SharerApicIDs []uint32

	// Regs is the defining register quad with EAX cleared; only sub-leaf 0
	// carries a value there (the maximum sub-leaf number) and it must not
	// distinguish otherwise identical TLBs.
	Regs cpuid.Registers
}

// PageSizes returns the supported page sizes as a display string.
func (t TlbInfo) PageSizes() string {
	var sizes []string
	if t.Page4K {
		sizes = append(sizes, "4KB")
	}
	if t.Page2M {
		sizes = append(sizes, "2MB")
	}
	if t.Page4M {
		sizes = append(sizes, "4MB")
	}
	if t.Page1G {
		sizes = append(sizes, "1GB")
	}
	return strings.Join(sizes, ", ")
}

// EnumerateTlbs walks leaf 18h on every logical processor and returns the
// deduplicated TLB records. Unlike leaf 4 the sub-leaf count is bounded by
// sub-leaf 0's EAX, and invalid sub-leaves inside the range are skipped
// rather than terminating the walk. Returns nil when leaf 18h is absent.
func EnumerateTlbs(src cpuid.Source, apicIDs []uint32) []TlbInfo {
	if cpuid.MaxLeaf(src) < cpuid.LeafTlbParams {
		return nil
	}
	var tlbs []TlbInfo
	for processor, apicID := range apicIDs {
		src.BindAffinity(processor)
		maxSubleaf := src.Read(cpuid.LeafTlbParams, 0).TlbMaxSubleaf()
		for subleaf := uint32(0); subleaf <= maxSubleaf; subleaf++ {
			regs := src.Read(cpuid.LeafTlbParams, subleaf)
			if TlbType(regs.TlbTypeField()) == TlbTypeInvalid {
				continue
			}
			shift := topology.ShiftForCount(regs.TlbMaxSharingIDs())
			mask := sharingMask(shift)
			id := apicID & mask

			regs.EAX = 0
			index := findTlb(tlbs, id, regs)
			if index < 0 {
				tlbs = append(tlbs, newTlbInfo(id, mask, regs))
				index = len(tlbs) - 1
			}
			tlbs[index].SharerApicIDs = append(tlbs[index].SharerApicIDs, apicID)
		}
	}
	return tlbs
}

func findTlb(tlbs []TlbInfo, id uint32, regs cpuid.Registers) int {
	for i := range tlbs {
		if tlbs[i].ID == id && tlbs[i].Regs == regs {
			return i
		}
	}
	return -1
}

func newTlbInfo(id, mask uint32, regs cpuid.Registers) TlbInfo {
	return TlbInfo{
		Type:  TlbType(regs.TlbTypeField()),
		Level: regs.TlbLevel(),
		ID:    id,
		Mask:  mask,

		Ways: regs.TlbWays(),
		Sets: regs.TlbSets(),

		FullyAssociative: regs.TlbFullyAssociative(),
		Partitioning:     regs.TlbPartitioning(),

		Page4K: regs.TlbPage4K(),
		Page2M: regs.TlbPage2M(),
		Page4M: regs.TlbPage4M(),
		Page1G: regs.TlbPage1G(),

		Regs: regs,
	}
}
