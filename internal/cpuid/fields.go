package cpuid

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Bit-field accessors for the leaves this application decodes. The bit ranges
// are the hardware contract defined by the SDM; each accessor notes the field
// it extracts. Accessors are preferred over overlapping struct definitions so
// that no bit-layout assumptions leak into the data model.

// TopologySubleafValid reports whether a leaf 0Bh/1Fh sub-leaf describes a
// domain. EBX is zero past the last valid sub-leaf.
func (r Registers) TopologySubleafValid() bool {
	return r.EBX != 0
}

// TopologyDomainShift returns EAX[4:0] of a leaf 0Bh/1Fh sub-leaf: the number
// of APIC ID bits occupied by this domain and all domains below it.
func (r Registers) TopologyDomainShift() uint32 {
	return r.EAX & 0x1F
}

// TopologyDomainType returns ECX[15:8] of a leaf 0Bh/1Fh sub-leaf: the
// hardware domain type code.
func (r Registers) TopologyDomainType() uint32 {
	return (r.ECX >> 8) & 0xFF
}

// TopologyApicID returns EDX of a leaf 0Bh/1Fh sub-leaf: the full 32-bit
// x2APIC ID of the processor executing the instruction.
func (r Registers) TopologyApicID() uint32 {
	return r.EDX
}

// HasHTT returns leaf 1 EDX[28]. When set, the maximum-addressable-IDs field
// in EBX is valid.
func (r Registers) HasHTT() bool {
	return r.EDX&(1<<28) != 0
}

// LegacyMaxPackageIDs returns leaf 1 EBX[23:16]: the maximum number of
// addressable IDs for logical processors in the physical package.
func (r Registers) LegacyMaxPackageIDs() uint32 {
	return (r.EBX >> 16) & 0xFF
}

// LegacyApicID returns leaf 1 EBX[31:24]: the 8-bit initial APIC ID.
func (r Registers) LegacyApicID() uint32 {
	return r.EBX >> 24
}

// LegacyMaxCoreIDs returns leaf 4 sub-leaf 0 EAX[31:26] + 1: the maximum
// number of addressable core IDs in the physical package.
func (r Registers) LegacyMaxCoreIDs() uint32 {
	return (r.EAX >> 26) + 1
}

// Leaf 4 deterministic cache parameter fields.

// CacheTypeField returns EAX[4:0]: 0 means no more caches.
func (r Registers) CacheTypeField() uint32 {
	return r.EAX & 0x1F
}

// CacheLevel returns EAX[7:5]; levels start at 1.
func (r Registers) CacheLevel() uint32 {
	return (r.EAX >> 5) & 0x7
}

// CacheSelfInitializing returns EAX[8].
func (r Registers) CacheSelfInitializing() bool {
	return r.EAX&(1<<8) != 0
}

// CacheFullyAssociative returns EAX[9].
func (r Registers) CacheFullyAssociative() bool {
	return r.EAX&(1<<9) != 0
}

// CacheMaxSharingIDs returns EAX[25:14] + 1: the maximum number of
// addressable IDs for logical processors sharing this cache.
func (r Registers) CacheMaxSharingIDs() uint32 {
	return ((r.EAX >> 14) & 0xFFF) + 1
}

// CacheWays returns EBX[31:22] + 1.
func (r Registers) CacheWays() uint32 {
	return (r.EBX >> 22) + 1
}

// CachePartitions returns EBX[21:12] + 1.
func (r Registers) CachePartitions() uint32 {
	return ((r.EBX >> 12) & 0x3FF) + 1
}

// CacheLineSize returns EBX[11:0] + 1, in bytes.
func (r Registers) CacheLineSize() uint32 {
	return (r.EBX & 0xFFF) + 1
}

// CacheSets returns ECX + 1.
func (r Registers) CacheSets() uint32 {
	return r.ECX + 1
}

// CacheWbinvdNotGuaranteed returns EDX[0]. When clear, WBINVD from any
// sharing processor flushes lower cache levels that share this cache.
func (r Registers) CacheWbinvdNotGuaranteed() bool {
	return r.EDX&1 != 0
}

// CacheInclusive returns EDX[1].
func (r Registers) CacheInclusive() bool {
	return r.EDX&2 != 0
}

// CacheComplexIndexing returns EDX[2]. Clear means direct mapped.
func (r Registers) CacheComplexIndexing() bool {
	return r.EDX&4 != 0
}

// Leaf 18h deterministic address translation parameter fields.

// TlbMaxSubleaf returns sub-leaf 0 EAX: the index of the last sub-leaf.
// Subsequent sub-leaves do not use EAX.
func (r Registers) TlbMaxSubleaf() uint32 {
	return r.EAX
}

// TlbTypeField returns EDX[4:0]: 0 marks an invalid sub-leaf.
func (r Registers) TlbTypeField() uint32 {
	return r.EDX & 0x1F
}

// TlbLevel returns EDX[7:5]; levels start at 1.
func (r Registers) TlbLevel() uint32 {
	return (r.EDX >> 5) & 0x7
}

// TlbFullyAssociative returns EDX[8].
func (r Registers) TlbFullyAssociative() bool {
	return r.EDX&(1<<8) != 0
}

// TlbMaxSharingIDs returns EDX[25:14] + 1: the maximum number of addressable
// IDs for logical processors sharing this translation cache.
func (r Registers) TlbMaxSharingIDs() uint32 {
	return ((r.EDX >> 14) & 0xFFF) + 1
}

// TlbPage4K, TlbPage2M, TlbPage4M, and TlbPage1G return EBX[0] through
// EBX[3]: the page sizes this translation cache holds entries for.
func (r Registers) TlbPage4K() bool { return r.EBX&1 != 0 }
func (r Registers) TlbPage2M() bool { return r.EBX&2 != 0 }
func (r Registers) TlbPage4M() bool { return r.EBX&4 != 0 }
func (r Registers) TlbPage1G() bool { return r.EBX&8 != 0 }

// TlbPartitioning returns EBX[10:8].
func (r Registers) TlbPartitioning() uint32 {
	return (r.EBX >> 8) & 0x7
}

// TlbWays returns EBX[31:16].
func (r Registers) TlbWays() uint32 {
	return r.EBX >> 16
}

// TlbSets returns ECX.
func (r Registers) TlbSets() uint32 {
	return r.ECX
}
