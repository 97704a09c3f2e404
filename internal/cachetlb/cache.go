// Package cachetlb enumerates the caches and translation caches (TLBs)
// reported by CPUID across every logical processor and merges repeated
// descriptions of the same physical resource into canonical shared-resource
// records.
//
// A record's identity is the pair (resource ID, defining register quad). The
// resource ID is the processor's APIC ID under the sharing mask derived from
// the resource's maximum-addressable-sharers count. The ID alone is not
// sufficient: distinct resources can produce the same ID under independently
// derived masks, so the full quad must also match.
package cachetlb

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"cpuidtopo/internal/cpuid"
	"cpuidtopo/internal/topology"
)

// CacheType is the leaf 4 cache type field.
type CacheType uint32

const (
	CacheTypeNone CacheType = iota // no more caches
	CacheTypeData
	CacheTypeInstruction
	CacheTypeUnified
)

func (t CacheType) String() string {
	switch t {
	case CacheTypeData:
		return "Data Cache"
	case CacheTypeInstruction:
		return "Instruction Cache"
	case CacheTypeUnified:
		return "Unified Cache"
	default:
		return "None"
	}
}

// CacheInfo describes one physically distinct cache and the logical
// processors sharing it.
type CacheInfo struct {
	Type  CacheType
	Level uint32

	// ID is the masked APIC ID identifying this cache instance; Mask is the
	// sharing mask that produced it.
	ID   uint32
	Mask uint32

	Ways       uint32
	Partitions uint32
	LineSize   uint32
	Sets       uint32
	SizeBytes  uint64

	SelfInitializing         bool
	FullyAssociative         bool
	WbinvdFlushesLowerLevels bool
	Inclusive                bool
	ComplexIndexing          bool
	DirectMapped             bool

	// SharerApicIDs lists the hardware IDs of every processor confirmed to
	// share this cache, in processor-iteration order.
	SharerApicIDs []uint32

	// Regs is the defining register quad, kept for identity comparison.
	Regs cpuid.Registers
}

// EnumerateCaches walks leaf 4 on every logical processor and returns the
// deduplicated cache records. apicIDs holds the per-processor hardware IDs
// in processor-index order (see topology.GatherApicIDs). Returns nil when
// leaf 4 is not supported.
//
// No sub-leaf number relationship can be assumed between one processor's
// enumeration of a cache and another's, so every sub-leaf of every processor
// is matched against all existing records.
func EnumerateCaches(src cpuid.Source, apicIDs []uint32) []CacheInfo {
	if cpuid.MaxLeaf(src) < cpuid.LeafCacheParams {
		return nil
	}
	var caches []CacheInfo
	for processor, apicID := range apicIDs {
		src.BindAffinity(processor)
		for subleaf := uint32(0); ; subleaf++ {
			regs := src.Read(cpuid.LeafCacheParams, subleaf)
			if CacheType(regs.CacheTypeField()) == CacheTypeNone {
				break
			}
			shift := topology.ShiftForCount(regs.CacheMaxSharingIDs())
			mask := sharingMask(shift)
			id := apicID & mask

			index := findCache(caches, id, regs)
			if index < 0 {
				caches = append(caches, newCacheInfo(id, mask, regs))
				index = len(caches) - 1
			}
			caches[index].SharerApicIDs = append(caches[index].SharerApicIDs, apicID)
		}
	}
	return caches
}

// sharingMask converts a sharing shift into the mask applied to APIC IDs to
// produce a resource ID.
func sharingMask(shift uint32) uint32 {
	if shift >= 32 {
		return 0
	}
	return ^((uint32(1) << shift) - 1)
}

// findCache returns the index of the record matching both the resource ID
// and the full defining quad, or -1. The IDs were generated independently,
// possibly under different masks, so the quad comparison confirms they
// describe the same cache.
func findCache(caches []CacheInfo, id uint32, regs cpuid.Registers) int {
	for i := range caches {
		if caches[i].ID == id && caches[i].Regs == regs {
			return i
		}
	}
	return -1
}

func newCacheInfo(id, mask uint32, regs cpuid.Registers) CacheInfo {
	info := CacheInfo{
		Type:  CacheType(regs.CacheTypeField()),
		Level: regs.CacheLevel(),
		ID:    id,
		Mask:  mask,

		Ways:       regs.CacheWays(),
		Partitions: regs.CachePartitions(),
		LineSize:   regs.CacheLineSize(),
		Sets:       regs.CacheSets(),

		SelfInitializing:         regs.CacheSelfInitializing(),
		FullyAssociative:         regs.CacheFullyAssociative(),
		WbinvdFlushesLowerLevels: !regs.CacheWbinvdNotGuaranteed(),
		Inclusive:                regs.CacheInclusive(),
		ComplexIndexing:          regs.CacheComplexIndexing(),

		Regs: regs,
	}
	info.DirectMapped = !info.ComplexIndexing
	info.SizeBytes = uint64(info.Ways) * uint64(info.Partitions) * uint64(info.LineSize) * uint64(info.Sets)
	return info
}
