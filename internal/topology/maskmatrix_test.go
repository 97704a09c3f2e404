package topology

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeDomainLayout() Layout {
	// 2 threads per core, 4 cores per package
	return Layout{
		Domains: []Domain{
			{Kind: DomainLogicalProcessor, Shift: 1},
			{Kind: DomainCore, Shift: 3},
		},
		ApicIDBits: 32,
	}
}

func TestBuildMaskMatrixThreeDomains(t *testing.T) {
	m := BuildMaskMatrix(threeDomainLayout())
	require.Equal(t, 2, m.PackageIndex())

	assert.Equal(t, uint32(0xFFFFFFFF), m.Absolute(0))
	assert.Equal(t, uint32(0xFFFFFFFE), m.Absolute(1))
	assert.Equal(t, uint32(0xFFFFFFF8), m.Absolute(2))

	assert.Equal(t, uint32(0x1), m.Relative(0, 1)) // thread within core
	assert.Equal(t, uint32(0x6), m.Relative(1, 2)) // core within package
	assert.Equal(t, uint32(0x7), m.Relative(0, 2)) // thread within package
}

func TestMaskMatrixConsistency(t *testing.T) {
	layouts := []Layout{
		threeDomainLayout(),
		{Domains: []Domain{
			{Kind: DomainLogicalProcessor, Shift: 1},
			{Kind: DomainCore, Shift: 4},
			{Kind: DomainModule, Shift: 6},
			{Kind: DomainDie, Shift: 9},
		}},
		{Domains: []Domain{{Kind: DomainLogicalProcessor, Shift: 0}}},
	}
	for _, layout := range layouts {
		m := BuildMaskMatrix(layout)
		n := m.PackageIndex()
		for i := 0; i < n; i++ {
			for j := i + 1; j <= n; j++ {
				relative := m.Relative(i, j)
				// a relative mask is the inner absolute mask with the outer
				// domain's bits removed
				assert.Equal(t, m.Absolute(i)&^m.Absolute(j), relative)
				assert.Zero(t, relative&m.Absolute(j))
			}
		}
		// absolute masks nest going up the hierarchy
		for i := 0; i < n; i++ {
			assert.Equal(t, m.Absolute(i+1), m.Absolute(i)&m.Absolute(i+1))
		}
	}
}

func TestMaskMatrixIDs(t *testing.T) {
	m := BuildMaskMatrix(threeDomainLayout())
	const apicID = 0b1011 // package 1, core 1, thread 1

	assert.Equal(t, uint32(1), m.AbsoluteID(apicID, m.PackageIndex()))
	assert.Equal(t, uint32(1), m.RelativeID(apicID, 1, m.PackageIndex()))
	assert.Equal(t, uint32(1), m.RelativeID(apicID, 0, 1))
	assert.Equal(t, uint32(0b101), m.AbsoluteID(apicID, 1)) // global core number

	assert.Equal(t, uint32(0), m.BaseShift(0))
	assert.Equal(t, uint32(1), m.BaseShift(1))
	assert.Equal(t, uint32(3), m.BaseShift(2))
}

func TestBuildMaskMatrixWideShift(t *testing.T) {
	// a shift that consumes the whole identifier must not wrap
	m := BuildMaskMatrix(Layout{Domains: []Domain{{Kind: DomainLogicalProcessor, Shift: 32}}})
	assert.Equal(t, uint32(0xFFFFFFFF), m.Absolute(0))
	assert.Equal(t, uint32(0), m.Absolute(1))
	assert.Equal(t, uint32(0xFFFFFFFF), m.Relative(0, 1))
}
