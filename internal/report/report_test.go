package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpuidtopo/internal/cachetlb"
	"cpuidtopo/internal/cpuid"
	"cpuidtopo/internal/topology"
)

func TestCreateRejectsRaggedFields(t *testing.T) {
	tables := []TableValues{{
		Name:    "Bad",
		HasRows: true,
		Fields: []Field{
			{Name: "A", Values: []string{"1", "2"}},
			{Name: "B", Values: []string{"1"}},
		},
	}}
	_, err := Create(FormatTxt, tables, "test")
	assert.Error(t, err)
}

func TestCreateTextReport(t *testing.T) {
	tables := []TableValues{
		{
			Name:    "Rows",
			HasRows: true,
			Fields: []Field{
				{Name: "Name", Values: []string{"alpha", "beta"}},
				{Name: "Value", Values: []string{"1", "2"}},
			},
			Notes: []string{"a note"},
		},
		{
			Name: "Pairs",
			Fields: []Field{
				{Name: "Key", Values: []string{"value"}},
			},
		},
		{
			Name:        "Empty",
			NoDataFound: "Nothing to see.",
		},
	}
	out, err := Create(FormatTxt, tables, "test")
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "Rows\n====\n")
	assert.Contains(t, text, "alpha")
	assert.Contains(t, text, "a note")
	assert.Contains(t, text, "Key: value")
	assert.Contains(t, text, "Nothing to see.")
}

func TestCreateJsonReport(t *testing.T) {
	tables := []TableValues{{
		Name:    "Things",
		HasRows: true,
		Fields: []Field{
			{Name: "Name", Values: []string{"alpha", "beta"}},
			{Name: "Value", Values: []string{"1", "2"}},
		},
	}}
	out, err := Create(FormatJson, tables, "test")
	require.NoError(t, err)

	var decoded map[string][]map[string]string
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded["Things"], 2)
	assert.Equal(t, "alpha", decoded["Things"][0]["Name"])
	assert.Equal(t, "2", decoded["Things"][1]["Value"])
}

func TestCreateYamlReport(t *testing.T) {
	tables := []TableValues{{
		Name:   "Pairs",
		Fields: []Field{{Name: "Key", Values: []string{"value"}}},
	}}
	out, err := Create(FormatYaml, tables, "test")
	require.NoError(t, err)
	assert.Contains(t, string(out), "Pairs:")
	assert.Contains(t, string(out), "Key: value")
}

func TestCreateXlsxReport(t *testing.T) {
	tables := []TableValues{{
		Name:    "Things",
		HasRows: true,
		Fields:  []Field{{Name: "Name", Values: []string{"alpha"}}},
	}}
	out, err := Create(FormatXlsx, tables, "test")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestFriendlySize(t *testing.T) {
	assert.Equal(t, "32 KB", friendlySize(32*1024))
	assert.Equal(t, "2 MB", friendlySize(2*1024*1024))
	assert.Equal(t, "1,152 KB", friendlySize(1152*1024))
	assert.Equal(t, "100 B", friendlySize(100))
}

func TestDomainLayoutTable(t *testing.T) {
	layout := topology.Layout{
		Domains: []topology.Domain{
			{Kind: topology.DomainLogicalProcessor, Shift: 1},
			{Kind: topology.DomainCore, Shift: 3},
		},
		ApicIDBits:  32,
		Description: "via CPUID leaf 1F",
	}
	table := DomainLayoutTable("APIC ID Layout", layout)
	require.Len(t, table.Fields, 4)
	assert.Equal(t, []string{"Logical Processor", "Core", "Package"}, table.Fields[0].Values)
	assert.Equal(t, []string{"1", "3", "-"}, table.Fields[1].Values)
	assert.Equal(t, []string{"1", "2", "29"}, table.Fields[2].Values)
	assert.Equal(t, []string{"0x00000001", "0x00000006", "0xFFFFFFF8"}, table.Fields[3].Values)
	assert.Contains(t, table.Notes, "via CPUID leaf 1F")
}

func TestThreeDomainTable(t *testing.T) {
	table := ThreeDomainTable(3, 1, []uint32{0, 1, 8, 11})
	require.Len(t, table.Fields, 5)
	assert.Equal(t, []string{"0", "0", "1", "1"}, table.Fields[2].Values) // package
	assert.Equal(t, []string{"0", "0", "0", "1"}, table.Fields[3].Values) // core
	assert.Equal(t, []string{"0", "1", "0", "1"}, table.Fields[4].Values) // thread
	require.Len(t, table.Notes, 1)
	assert.Contains(t, table.Notes[0], "0x00000001")
	assert.Contains(t, table.Notes[0], "0x00000006")
	assert.Contains(t, table.Notes[0], "0xFFFFFFF8")
}

func TestMaskMatrixTable(t *testing.T) {
	layout := topology.Layout{
		Domains: []topology.Domain{
			{Kind: topology.DomainLogicalProcessor, Shift: 1},
			{Kind: topology.DomainCore, Shift: 3},
		},
	}
	table := MaskMatrixTable(layout, topology.BuildMaskMatrix(layout))
	require.Len(t, table.Fields, 4)
	assert.Equal(t, []string{"Logical Processor", "Core", "Package"}, table.Fields[0].Values)
	// absolute masks down the diagonal column
	assert.Equal(t, []string{"0xFFFFFFFF", "0xFFFFFFFE", "0xFFFFFFF8"}, table.Fields[1].Values)
	// relative to package
	assert.Equal(t, "In Package", table.Fields[3].Name)
	assert.Equal(t, []string{"0x00000007", "0x00000006", "-"}, table.Fields[3].Values)
}

func TestCacheTable(t *testing.T) {
	caches := []cachetlb.CacheInfo{{
		Type:                     cachetlb.CacheTypeData,
		Level:                    1,
		ID:                       0,
		Mask:                     0xFFFFFFFE,
		Ways:                     8,
		Partitions:               1,
		LineSize:                 64,
		Sets:                     64,
		SizeBytes:                32 * 1024,
		SelfInitializing:         true,
		WbinvdFlushesLowerLevels: true,
		DirectMapped:             true,
		SharerApicIDs:            []uint32{0, 1},
	}}
	table := CacheTable(caches)
	row := map[string]string{}
	for _, field := range table.Fields {
		require.Len(t, field.Values, 1)
		row[field.Name] = field.Values[0]
	}
	assert.Equal(t, "L1", row["Level"])
	assert.Equal(t, "Data Cache", row["Type"])
	assert.Equal(t, "32 KB", row["Size"])
	assert.Equal(t, "0xFFFFFFFE", row["Mask"])
	assert.Equal(t, "0x0,0x1", row["Shared By APIC IDs"])
	assert.Contains(t, row["Attributes"], "self-init")
	assert.Contains(t, row["Attributes"], "direct-mapped")
}

func TestTlbTable(t *testing.T) {
	tlbs := []cachetlb.TlbInfo{{
		Type:          cachetlb.TlbTypeData,
		Level:         1,
		Mask:          0xFFFFFFFE,
		Ways:          4,
		Sets:          64,
		Page4K:        true,
		Page2M:        true,
		SharerApicIDs: []uint32{2, 3},
	}}
	table := TlbTable(tlbs)
	row := map[string]string{}
	for _, field := range table.Fields {
		require.Len(t, field.Values, 1)
		row[field.Name] = field.Values[0]
	}
	assert.Equal(t, "Data TLB", row["Type"])
	assert.Equal(t, "4KB, 2MB", row["Page Sizes"])
	assert.Equal(t, "0x2,0x3", row["Shared By APIC IDs"])
}

func TestRawLeavesTable(t *testing.T) {
	src := cpuid.NewSimSource()
	src.BeginLeaf(cpuid.LeafBasicInfo)
	src.AddSubleaf(0, cpuid.Registers{EAX: cpuid.LeafVersionInfo, EBX: 0x756E6547})
	src.BeginLeaf(cpuid.LeafVersionInfo)
	src.AddSubleaf(0, cpuid.Registers{EAX: 0x000A06A4})
	src.AddProcessor(0)

	table := RawLeavesTable(src, 0, 0)
	require.Len(t, table.Fields, 6)
	// leaves above the reported maximum are omitted
	assert.Equal(t, []string{"0x0", "0x1"}, table.Fields[0].Values)
	assert.Equal(t, []string{"0x00000001", "0x000A06A4"}, table.Fields[2].Values)
	assert.True(t, strings.HasPrefix(table.Name, "CPUID Leaves"))
}
