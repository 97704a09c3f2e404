package cpuid

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// SimSource replays CPUID data captured from another system. Most leaves are
// symmetric across processors and stored once. Leaves 4 and 18h report
// per-processor data, so each repeated description of one of those leaves is
// associated with the next processor index in capture order. Processor
// identity for the remaining context-sensitive fields (the APIC ID in leaves
// 1, 0Bh, and 1Fh) is reconstructed from the captured hardware ID list.
type SimSource struct {
	shared  map[uint32]map[uint32]Registers
	perProc map[uint32][]map[uint32]Registers
	apicIDs []uint32
	current uint32 // leaf selected by the last BeginLeaf
	bound   int
}

// asymmetricLeaf reports whether a leaf's data differs per processor and is
// therefore captured once per processor.
func asymmetricLeaf(leaf uint32) bool {
	return leaf == LeafCacheParams || leaf == LeafTlbParams
}

// NewSimSource returns an empty replay source. Populate it with BeginLeaf,
// AddSubleaf, and AddProcessor in capture-file order.
func NewSimSource() *SimSource {
	return &SimSource{
		shared:  map[uint32]map[uint32]Registers{},
		perProc: map[uint32][]map[uint32]Registers{},
	}
}

// BeginLeaf starts a new leaf's data. For asymmetric leaves each call opens
// the table for the next processor index.
func (s *SimSource) BeginLeaf(leaf uint32) {
	s.current = leaf
	if asymmetricLeaf(leaf) {
		s.perProc[leaf] = append(s.perProc[leaf], map[uint32]Registers{})
	}
}

// AddSubleaf associates one register quad with the leaf most recently begun.
func (s *SimSource) AddSubleaf(subleaf uint32, regs Registers) {
	if asymmetricLeaf(s.current) {
		tables := s.perProc[s.current]
		if len(tables) == 0 {
			// sub-leaf before any leaf directive; drop it
			return
		}
		tables[len(tables)-1][subleaf] = regs
		return
	}
	table := s.shared[s.current]
	if table == nil {
		table = map[uint32]Registers{}
		s.shared[s.current] = table
	}
	table[subleaf] = regs
}

// AddProcessor appends one more logical processor with the given hardware ID.
// Append order defines the processor index.
func (s *SimSource) AddProcessor(apicID uint32) {
	s.apicIDs = append(s.apicIDs, apicID)
}

// ApicIDs returns the captured hardware IDs in processor-index order.
func (s *SimSource) ApicIDs() []uint32 {
	return s.apicIDs
}

// Read returns the captured registers for the leaf/sub-leaf on the currently
// bound processor. Missing entries read as zero, which every decoder treats
// as "not supported".
func (s *SimSource) Read(leaf uint32, subleaf uint32) Registers {
	if asymmetricLeaf(leaf) {
		tables := s.perProc[leaf]
		if s.bound >= len(tables) {
			return Registers{}
		}
		return tables[s.bound][subleaf]
	}
	regs := s.shared[leaf][subleaf]
	if s.bound >= len(s.apicIDs) {
		return regs
	}
	// The capture stores the topology leaves once; the APIC ID fields are
	// rebuilt for whichever processor is bound.
	switch leaf {
	case LeafExtTopology, LeafExtTopologyV2:
		if regs.TopologySubleafValid() {
			regs.EDX = s.apicIDs[s.bound]
		}
	case LeafVersionInfo:
		regs.EBX = regs.EBX&^(uint32(0xFF)<<24) | s.apicIDs[s.bound]<<24
	}
	return regs
}

// BindAffinity selects the processor whose data subsequent reads return.
// Out-of-range indexes are ignored, matching the live source's best-effort
// binding.
func (s *SimSource) BindAffinity(processor int) {
	if processor >= 0 && processor < len(s.apicIDs) {
		s.bound = processor
	}
}

// NumProcessors returns the number of captured processors.
func (s *SimSource) NumProcessors() int {
	return len(s.apicIDs)
}

// IsNative reports that this source replays captured data.
func (s *SimSource) IsNative() bool {
	return false
}
