package cpuid

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReplaySource() *SimSource {
	src := NewSimSource()
	src.BeginLeaf(LeafBasicInfo)
	src.AddSubleaf(0, Registers{EAX: LeafExtTopologyV2})

	src.BeginLeaf(LeafVersionInfo)
	src.AddSubleaf(0, Registers{EBX: 0xAA<<24 | 2<<16, EDX: 1 << 28})

	// leaf 4 differs per processor
	src.BeginLeaf(LeafCacheParams)
	src.AddSubleaf(0, Registers{EAX: 0x121, ECX: 63})
	src.BeginLeaf(LeafCacheParams)
	src.AddSubleaf(0, Registers{EAX: 0x121, ECX: 127})

	src.BeginLeaf(LeafExtTopologyV2)
	src.AddSubleaf(0, Registers{EAX: 1, EBX: 2, ECX: 1 << 8, EDX: 0})
	src.AddSubleaf(1, Registers{})

	src.AddProcessor(4)
	src.AddProcessor(5)
	return src
}

func TestSimSourceSubstitutesTopologyApicID(t *testing.T) {
	src := newReplaySource()

	src.BindAffinity(0)
	assert.Equal(t, uint32(4), src.Read(LeafExtTopologyV2, 0).TopologyApicID())
	src.BindAffinity(1)
	assert.Equal(t, uint32(5), src.Read(LeafExtTopologyV2, 0).TopologyApicID())

	// the invalid terminating sub-leaf reads back as stored
	assert.Equal(t, Registers{}, src.Read(LeafExtTopologyV2, 1))
}

func TestSimSourceSubstitutesLegacyApicID(t *testing.T) {
	src := newReplaySource()

	src.BindAffinity(1)
	regs := src.Read(LeafVersionInfo, 0)
	assert.Equal(t, uint32(5), regs.LegacyApicID())
	// the rest of EBX is untouched
	assert.Equal(t, uint32(2), regs.LegacyMaxPackageIDs())
}

func TestSimSourceAsymmetricLeaf(t *testing.T) {
	src := newReplaySource()

	src.BindAffinity(0)
	assert.Equal(t, uint32(64), src.Read(LeafCacheParams, 0).CacheSets())
	src.BindAffinity(1)
	assert.Equal(t, uint32(128), src.Read(LeafCacheParams, 0).CacheSets())

	// missing sub-leaves read as zero
	assert.Equal(t, Registers{}, src.Read(LeafCacheParams, 7))
	assert.Equal(t, Registers{}, src.Read(LeafTlbParams, 0))
}

func TestSimSourceBindAffinityBounds(t *testing.T) {
	src := newReplaySource()
	require.Equal(t, 2, src.NumProcessors())

	src.BindAffinity(1)
	src.BindAffinity(-1)
	src.BindAffinity(99)
	// out-of-range binds leave the previous binding in place
	assert.Equal(t, uint32(5), src.Read(LeafExtTopologyV2, 0).TopologyApicID())
}

func TestSimSourceApicIDs(t *testing.T) {
	src := newReplaySource()
	assert.Equal(t, []uint32{4, 5}, src.ApicIDs())
	assert.False(t, src.IsNative())
}
