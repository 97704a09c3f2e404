package capture

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpuidtopo/internal/cachetlb"
	"cpuidtopo/internal/cpuid"
	"cpuidtopo/internal/topology"
)

func TestLoad(t *testing.T) {
	content := "L 0\n" +
		"S 0 31 1970169159 1818588270 1231384169\n" +
		"L 1\n" +
		"S 0 657054 134219776 2147154879 3219913727\n" +
		"A 0\n" +
		"A 1\n"
	path := writeCapture(t, content)

	src, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, src.NumProcessors())
	assert.False(t, src.IsNative())
	assert.Equal(t, uint32(31), cpuid.MaxLeaf(src))
	assert.Equal(t, uint32(657054), src.Read(cpuid.LeafVersionInfo, 0).EAX)
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	content := "L 0\n" +
		"S 0 31 0 0 0\n" +
		"S 1 2 3\n" + // too few register values
		"Q 5\n" + // unknown directive
		"L x\n" + // non-numeric leaf
		"A 99999999999999999999\n" + // does not fit in 32 bits
		"A 0\n"
	path := writeCapture(t, content)

	src, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, src.NumProcessors())
	assert.Equal(t, uint32(31), cpuid.MaxLeaf(src))
}

func TestLoadNoProcessors(t *testing.T) {
	path := writeCapture(t, "L 0\nS 0 31 0 0 0\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	src := newTwoPackageSource()
	dir := t.TempDir()
	first := filepath.Join(dir, "capture.txt")
	require.NoError(t, Save(first, src))

	loaded, err := Load(first)
	require.NoError(t, err)

	// the replayed source yields the same analyses as the original
	assert.Equal(t, topology.GatherApicIDs(src), topology.GatherApicIDs(loaded))

	srcLayout := topology.EnumerateDomains(src, cpuid.LeafExtTopologyV2, topology.Exact)
	loadedLayout := topology.EnumerateDomains(loaded, cpuid.LeafExtTopologyV2, topology.Exact)
	assert.Equal(t, srcLayout.Domains, loadedLayout.Domains)

	apicIDs := topology.GatherApicIDs(loaded)
	assert.Equal(t,
		cachetlb.EnumerateCaches(src, topology.GatherApicIDs(src)),
		cachetlb.EnumerateCaches(loaded, apicIDs))
	assert.Equal(t,
		cachetlb.EnumerateTlbs(src, topology.GatherApicIDs(src)),
		cachetlb.EnumerateTlbs(loaded, apicIDs))

	// saving the loaded capture reproduces the file byte for byte
	second := filepath.Join(dir, "capture2.txt")
	require.NoError(t, Save(second, loaded))
	firstBytes, err := os.ReadFile(first)
	require.NoError(t, err)
	secondBytes, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstBytes), string(secondBytes))
}

func writeCapture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// newTwoPackageSource models four logical processors in two packages, with
// one cache and one TLB per processor pair.
func newTwoPackageSource() *cpuid.SimSource {
	src := cpuid.NewSimSource()
	apicIDs := []uint32{0, 1, 8, 9}

	src.BeginLeaf(cpuid.LeafBasicInfo)
	src.AddSubleaf(0, cpuid.Registers{EAX: cpuid.LeafExtTopologyV2})

	src.BeginLeaf(cpuid.LeafVersionInfo)
	src.AddSubleaf(0, cpuid.Registers{EBX: 4 << 16, EDX: 1 << 28})

	for range apicIDs {
		src.BeginLeaf(cpuid.LeafCacheParams)
		src.AddSubleaf(0, cpuid.Registers{EAX: 0x1C004121, EBX: 0x01C0003F, ECX: 0x3F})
		src.AddSubleaf(1, cpuid.Registers{})
	}

	src.BeginLeaf(cpuid.LeafExtTopology)
	src.AddSubleaf(0, cpuid.Registers{EAX: 1, EBX: 2, ECX: uint32(topology.DomainLogicalProcessor) << 8})
	src.AddSubleaf(1, cpuid.Registers{EAX: 3, EBX: 4, ECX: uint32(topology.DomainCore) << 8})
	src.AddSubleaf(2, cpuid.Registers{})

	for range apicIDs {
		src.BeginLeaf(cpuid.LeafTlbParams)
		src.AddSubleaf(0, cpuid.Registers{EBX: 0x00040001, ECX: 64, EDX: 1 | 1<<5 | 1<<14})
	}

	src.BeginLeaf(cpuid.LeafExtTopologyV2)
	src.AddSubleaf(0, cpuid.Registers{EAX: 1, EBX: 2, ECX: uint32(topology.DomainLogicalProcessor) << 8})
	src.AddSubleaf(1, cpuid.Registers{EAX: 3, EBX: 4, ECX: uint32(topology.DomainCore) << 8})
	src.AddSubleaf(2, cpuid.Registers{})

	for _, apicID := range apicIDs {
		src.AddProcessor(apicID)
	}
	return src
}
