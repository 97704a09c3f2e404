// Package topology decodes the processor topology hierarchy from CPUID: the
// domains an APIC ID is partitioned into, the bit shift of each domain, and
// the masks that extract per-domain identifiers.
package topology

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"math/bits"

	"cpuidtopo/internal/cpuid"
)

// DomainKind is the hardware-reported domain type code from the extended
// topology leaves. The named values match the codes defined for CPUID leaves
// 0Bh and 1Fh; any other code is a domain this software does not recognize,
// which is expected on future hardware and never an error.
type DomainKind uint32

const (
	DomainInvalid DomainKind = iota
	DomainLogicalProcessor
	DomainCore
	DomainModule
	DomainTile
	DomainDie
	DomainDieGroup
)

// Known reports whether the kind is one of the enumerated values. Invalid is
// a known enumeration; callers check for it directly.
func (k DomainKind) Known() bool {
	return k <= DomainDieGroup
}

func (k DomainKind) String() string {
	switch k {
	case DomainInvalid:
		return "Invalid"
	case DomainLogicalProcessor:
		return "Logical Processor"
	case DomainCore:
		return "Core"
	case DomainModule:
		return "Module"
	case DomainTile:
		return "Tile"
	case DomainDie:
		return "Die"
	case DomainDieGroup:
		return "DieGrp"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", uint32(k))
	}
}

// Domain is one level of the topology hierarchy. Shift is the number of low
// APIC ID bits occupied by this domain and all domains below it.
type Domain struct {
	Kind  DomainKind
	Shift uint32
}

// Layout is an ordered sequence of domains, lowest first. Index 0 is always
// the logical processor domain. The package domain is implicit: it owns all
// APIC ID bits above the last explicit domain's shift.
type Layout struct {
	Domains     []Domain
	ApicIDBits  uint32
	Description string
}

// HasUnknownDomains reports whether any domain carries an unrecognized type
// code.
func (l Layout) HasUnknownDomains() bool {
	for _, d := range l.Domains {
		if !d.Kind.Known() {
			return true
		}
	}
	return false
}

// ShiftForCount returns the number of low identifier bits needed to uniquely
// represent count values, rounded up to a power-of-two boundary so that
// identifier sub-ranges never overlap. A count of 0 is treated as 1; at
// least a zero-width domain always exists.
func ShiftForCount(count uint32) uint32 {
	if count == 0 {
		count = 1
	}
	return uint32(bits.Len32(count*2-1)) - 1
}

// Mode selects how unknown domain codes are folded into a Layout.
type Mode int

const (
	// Exact keeps every sub-leaf as its own domain, preserving raw codes.
	// This shows the literal bit layout the hardware reported.
	Exact Mode = iota
	// CollapseUnknown folds an unrecognized sub-leaf into the preceding
	// known domain by overwriting its shift. The result contains only
	// recognized kinds and is suitable for deriving masks software acts on.
	CollapseUnknown
)

// EnumerateDomains walks the sub-leaves of a topology leaf (0Bh or 1Fh) on
// the currently bound processor and returns the ordered domain layout.
// Sub-leaf 0 is defined to be the logical processor domain, so in
// CollapseUnknown mode an unknown sub-leaf always has a known predecessor.
func EnumerateDomains(src cpuid.Source, leaf uint32, mode Mode) Layout {
	layout := Layout{ApicIDBits: 32}
	for subleaf := uint32(0); ; subleaf++ {
		regs := src.Read(leaf, subleaf)
		if !regs.TopologySubleafValid() {
			break
		}
		kind := DomainKind(regs.TopologyDomainType())
		shift := regs.TopologyDomainShift()
		if mode == CollapseUnknown && !kind.Known() && len(layout.Domains) > 0 {
			layout.Domains[len(layout.Domains)-1].Shift = shift
			continue
		}
		layout.Domains = append(layout.Domains, Domain{Kind: kind, Shift: shift})
	}
	return layout
}

// ThreeDomainShifts enumerates a topology leaf assuming exactly three
// domains: thread, core, package. The last sub-leaf's shift is the package
// boundary regardless of its reported kind; checking for the core code
// instead would mistake any higher domain for the package.
func ThreeDomainShifts(src cpuid.Source, leaf uint32) (packageShift, lpShift uint32) {
	for subleaf := uint32(0); ; subleaf++ {
		regs := src.Read(leaf, subleaf)
		if !regs.TopologySubleafValid() {
			break
		}
		if DomainKind(regs.TopologyDomainType()) == DomainLogicalProcessor {
			lpShift = regs.TopologyDomainShift()
		}
		packageShift = regs.TopologyDomainShift()
	}
	return packageShift, lpShift
}

// DetectTopologyLeaf returns the preferred topology leaf for this source:
// 1Fh when present and populated, else 0Bh, else ok=false and callers fall
// back to the legacy derivation.
func DetectTopologyLeaf(src cpuid.Source) (leaf uint32, ok bool) {
	maxLeaf := cpuid.MaxLeaf(src)
	if maxLeaf >= cpuid.LeafExtTopologyV2 && src.Read(cpuid.LeafExtTopologyV2, 0).TopologySubleafValid() {
		return cpuid.LeafExtTopologyV2, true
	}
	if maxLeaf >= cpuid.LeafExtTopology && src.Read(cpuid.LeafExtTopology, 0).TopologySubleafValid() {
		return cpuid.LeafExtTopology, true
	}
	return 0, false
}

// LegacyLayout derives a topology layout from CPUID.1 and CPUID.4, the
// method that predates the extended topology leaves. APIC IDs are 8 bits in
// this scheme and the addressable-ID fields overflow on large modern parts,
// so this is only used when leaves 0Bh and 1Fh are both absent.
func LegacyLayout(src cpuid.Source) Layout {
	layout := Layout{ApicIDBits: 8}

	versionInfo := src.Read(cpuid.LeafVersionInfo, 0)
	if !versionInfo.HasHTT() {
		// No multiprocessing fields at all: one logical processor per package.
		layout.Domains = []Domain{{Kind: DomainLogicalProcessor, Shift: ShiftForCount(1)}}
		layout.Description = "Legacy path where CPUID.HTT = 0"
		return layout
	}

	maxPackageIDs := versionInfo.LegacyMaxPackageIDs()
	if cpuid.MaxLeaf(src) >= cpuid.LeafCacheParams {
		maxCoreIDs := src.Read(cpuid.LeafCacheParams, 0).LegacyMaxCoreIDs()
		lpsPerCore := maxPackageIDs / maxCoreIDs
		layout.Domains = []Domain{
			{Kind: DomainLogicalProcessor, Shift: ShiftForCount(lpsPerCore)},
			{Kind: DomainCore, Shift: ShiftForCount(maxPackageIDs)},
		}
		layout.Description = "Legacy path using CPUID.1 and CPUID.4 (may not be correct if Leaf B or Leaf 1F exist)"
		return layout
	}

	// No leaf 4: a package equals a core, only SMT within it is reported.
	layout.Domains = []Domain{{Kind: DomainLogicalProcessor, Shift: ShiftForCount(maxPackageIDs)}}
	layout.Description = "Legacy path using CPUID.1 with HTT = 1 but no CPUID.4"
	return layout
}

// GatherApicIDs binds each logical processor in turn and collects its
// hardware ID, preferring the x2APIC ID from leaf 1Fh, then leaf 0Bh, then
// the 8-bit initial APIC ID from leaf 1.
func GatherApicIDs(src cpuid.Source) []uint32 {
	maxLeaf := cpuid.MaxLeaf(src)
	apicIDs := make([]uint32, 0, src.NumProcessors())
	for processor := 0; processor < src.NumProcessors(); processor++ {
		src.BindAffinity(processor)
		apicIDs = append(apicIDs, readApicID(src, maxLeaf))
	}
	return apicIDs
}

func readApicID(src cpuid.Source, maxLeaf uint32) uint32 {
	if maxLeaf >= cpuid.LeafExtTopologyV2 {
		if regs := src.Read(cpuid.LeafExtTopologyV2, 0); regs.TopologySubleafValid() {
			return regs.TopologyApicID()
		}
	}
	if maxLeaf >= cpuid.LeafExtTopology {
		if regs := src.Read(cpuid.LeafExtTopology, 0); regs.TopologySubleafValid() {
			return regs.TopologyApicID()
		}
	}
	return src.Read(cpuid.LeafVersionInfo, 0).LegacyApicID()
}
