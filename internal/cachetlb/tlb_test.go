package cachetlb

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpuidtopo/internal/cpuid"
)

// dtlbQuad is a 4-way 64-set L1 data TLB for 4 KB pages shared by 2 logical
// processors. EAX carries the max sub-leaf count and is set per test.
var dtlbQuad = cpuid.Registers{
	EBX: 0x00040001,       // 4 ways, 4 KB pages
	ECX: 64,               // sets
	EDX: 1 | 1<<5 | 1<<14, // data TLB, level 1, max sharing ID 1
}

func newTlbSource(apicIDs []uint32, perProcSubleaves ...[]cpuid.Registers) *cpuid.SimSource {
	src := cpuid.NewSimSource()
	src.BeginLeaf(cpuid.LeafBasicInfo)
	src.AddSubleaf(0, cpuid.Registers{EAX: cpuid.LeafTlbParams})
	for _, subleaves := range perProcSubleaves {
		src.BeginLeaf(cpuid.LeafTlbParams)
		for i, regs := range subleaves {
			src.AddSubleaf(uint32(i), regs)
		}
	}
	for _, apicID := range apicIDs {
		src.AddProcessor(apicID)
	}
	return src
}

func TestEnumerateTlbsMergesSharedTlb(t *testing.T) {
	apicIDs := []uint32{0x00, 0x01}
	subleaf0 := dtlbQuad
	subleaf0.EAX = 0 // no further sub-leaves
	src := newTlbSource(apicIDs, []cpuid.Registers{subleaf0}, []cpuid.Registers{subleaf0})

	tlbs := EnumerateTlbs(src, apicIDs)
	require.Len(t, tlbs, 1)
	tlb := tlbs[0]
	assert.Equal(t, TlbTypeData, tlb.Type)
	assert.Equal(t, uint32(1), tlb.Level)
	assert.Equal(t, uint32(4), tlb.Ways)
	assert.Equal(t, uint32(64), tlb.Sets)
	assert.True(t, tlb.Page4K)
	assert.False(t, tlb.Page2M)
	assert.False(t, tlb.FullyAssociative)
	assert.Equal(t, uint32(0xFFFFFFFE), tlb.Mask)
	assert.Equal(t, apicIDs, tlb.SharerApicIDs)
}

func TestEnumerateTlbsIgnoresSubleafZeroEAX(t *testing.T) {
	// the same TLB appears at sub-leaf 0 on one processor (EAX holds the max
	// sub-leaf count there) and at sub-leaf 1 on the other; the differing EAX
	// must not prevent the merge
	apicIDs := []uint32{0x00, 0x01}
	atSubleaf0 := dtlbQuad
	atSubleaf0.EAX = 1
	invalid := cpuid.Registers{EAX: 1} // max sub-leaf 1, type 0
	atSubleaf1 := dtlbQuad
	src := newTlbSource(apicIDs,
		[]cpuid.Registers{atSubleaf0, {}},
		[]cpuid.Registers{invalid, atSubleaf1})

	tlbs := EnumerateTlbs(src, apicIDs)
	require.Len(t, tlbs, 1)
	assert.Equal(t, uint32(0), tlbs[0].Regs.EAX)
	assert.Equal(t, apicIDs, tlbs[0].SharerApicIDs)
}

func TestEnumerateTlbsSkipsInvalidSubleaves(t *testing.T) {
	// an invalid sub-leaf inside the range does not terminate the walk
	apicIDs := []uint32{0x00}
	first := dtlbQuad
	first.EAX = 2
	second := cpuid.Registers{} // invalid
	third := dtlbQuad
	third.EBX = 0x00080003 // 8 ways, 4 KB and 2 MB pages
	src := newTlbSource(apicIDs, []cpuid.Registers{first, second, third})

	tlbs := EnumerateTlbs(src, apicIDs)
	require.Len(t, tlbs, 2)
	assert.Equal(t, uint32(4), tlbs[0].Ways)
	assert.Equal(t, uint32(8), tlbs[1].Ways)
	assert.True(t, tlbs[1].Page2M)
}

func TestEnumerateTlbsRespectsMaxSubleaf(t *testing.T) {
	// data past the advertised max sub-leaf is never read
	apicIDs := []uint32{0x00}
	subleaf0 := dtlbQuad
	subleaf0.EAX = 0
	beyond := dtlbQuad
	beyond.ECX = 128
	src := newTlbSource(apicIDs, []cpuid.Registers{subleaf0, beyond})

	tlbs := EnumerateTlbs(src, apicIDs)
	require.Len(t, tlbs, 1)
	assert.Equal(t, uint32(64), tlbs[0].Sets)
}

func TestEnumerateTlbsLeafNotSupported(t *testing.T) {
	src := cpuid.NewSimSource()
	src.BeginLeaf(cpuid.LeafBasicInfo)
	src.AddSubleaf(0, cpuid.Registers{EAX: cpuid.LeafCacheParams})
	src.AddProcessor(0)
	assert.Nil(t, EnumerateTlbs(src, []uint32{0}))
}
