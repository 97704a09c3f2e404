// Package cpuid provides raw CPUID register data for every logical processor
// on the system, either live from the hardware instruction or replayed from a
// previously captured table.
package cpuid

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// CPUID leaves used by the topology, cache, and TLB enumeration algorithms.
const (
	LeafBasicInfo     = 0x0  // EAX reports the maximum supported standard leaf
	LeafVersionInfo   = 0x1  // legacy APIC ID and addressable ID counts
	LeafCacheParams   = 0x4  // deterministic cache parameters, asymmetric across processors
	LeafExtTopology   = 0xB  // extended topology, at most three domains
	LeafTlbParams     = 0x18 // deterministic address translation parameters, asymmetric
	LeafExtTopologyV2 = 0x1F // V2 extended topology, more than three domains
)

// Registers holds the four register values returned by one CPUID invocation.
type Registers struct {
	EAX uint32
	EBX uint32
	ECX uint32
	EDX uint32
}

// Source supplies CPUID register data and processor affinity control. It is
// passed explicitly to every enumeration routine so that "which processor is
// currently bound" is owned by the caller rather than hidden in package state.
//
// Read returns the registers for the given leaf/sub-leaf on the processor
// most recently bound with BindAffinity. Enumeration loops must treat the
// bind-then-read sequence for one processor as a unit; none of the provided
// implementations are safe for concurrent use.
type Source interface {
	Read(leaf uint32, subleaf uint32) Registers
	BindAffinity(processor int)
	NumProcessors() int
	IsNative() bool
}

// MaxLeaf returns the maximum supported standard leaf reported by leaf 0.
func MaxLeaf(src Source) uint32 {
	return src.Read(LeafBasicInfo, 0).EAX
}

// MoreSubleaves applies a leaf's sub-leaf termination rule after the current
// sub-leaf has been consumed, so walkers that want the terminating entry
// itself (capture, raw dumps) still see it. Leaves without sub-leaf structure
// have exactly one sub-leaf.
func MoreSubleaves(src Source, leaf, subleaf uint32, regs Registers) bool {
	switch leaf {
	case LeafCacheParams:
		return regs.CacheTypeField() != 0
	case LeafTlbParams:
		return subleaf < src.Read(leaf, 0).TlbMaxSubleaf()
	case LeafExtTopology, LeafExtTopologyV2:
		return regs.TopologySubleafValid()
	default:
		return false
	}
}
