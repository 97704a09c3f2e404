package topology

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// MaskMatrix holds, for every pair of domains in a layout, the APIC ID mask
// that identifies the lower domain relative to the higher one. The diagonal
// holds absolute masks: all bits at or above the domain's own boundary,
// identifying the domain globally. An absolute mask alone cannot express
// "core ID within a package" because it still contains the package's high
// bits; the off-diagonal relative masks strip those, leaving exactly the
// bits meaningful at one level nested inside another. The implicit package
// domain occupies the final index.
type MaskMatrix struct {
	masks  [][]uint32
	shifts []uint32
}

// BuildMaskMatrix derives the full mask matrix from a domain layout. The
// layout is expected to contain only known domains (CollapseUnknown mode or
// a legacy layout).
func BuildMaskMatrix(layout Layout) MaskMatrix {
	n := len(layout.Domains)
	m := MaskMatrix{
		masks:  make([][]uint32, n+1),
		shifts: make([]uint32, n),
	}
	for i, d := range layout.Domains {
		m.shifts[i] = d.Shift
	}

	// Absolute pass: each domain's global mask is every bit at or above the
	// boundary of the domain below it.
	previousShift := uint32(0)
	for i := 0; i <= n; i++ {
		m.masks[i] = make([]uint32, n+1)
		m.masks[i][i] = ^(shiftMask(previousShift))
		if i < n {
			previousShift = layout.Domains[i].Shift
		}
	}

	// Relative pass: remove the higher domain's bits from the lower
	// domain's global mask, leaving the ID of the lower domain within the
	// higher one.
	for i := 0; i < n; i++ {
		for j := i + 1; j <= n; j++ {
			m.masks[i][j] = ^m.masks[j][j] & m.masks[i][i]
		}
	}
	return m
}

// shiftMask returns the mask of the low shift bits. Shifts of 32 or more
// cover the whole identifier.
func shiftMask(shift uint32) uint32 {
	if shift >= 32 {
		return ^uint32(0)
	}
	return (uint32(1) << shift) - 1
}

// PackageIndex returns the index of the implicit package domain, one past
// the last explicit domain.
func (m MaskMatrix) PackageIndex() int {
	return len(m.masks) - 1
}

// Absolute returns the mask identifying domain i globally.
func (m MaskMatrix) Absolute(i int) uint32 {
	return m.masks[i][i]
}

// Relative returns the mask extracting domain i's identifier relative to the
// enclosing domain j, where i < j and j may be PackageIndex().
func (m MaskMatrix) Relative(i, j int) uint32 {
	return m.masks[i][j]
}

// BaseShift returns the number of bits below domain i, i.e. the right shift
// that turns a masked APIC ID into a small dense identifier. Domain 0 sits
// at bit 0; the package's base is the last explicit domain's shift.
func (m MaskMatrix) BaseShift(i int) uint32 {
	if i == 0 {
		return 0
	}
	return m.shifts[i-1]
}

// RelativeID extracts domain i's identifier within domain j from an APIC ID.
func (m MaskMatrix) RelativeID(apicID uint32, i, j int) uint32 {
	return (apicID & m.masks[i][j]) >> m.BaseShift(i)
}

// AbsoluteID extracts domain i's global identifier from an APIC ID.
func (m MaskMatrix) AbsoluteID(apicID uint32, i int) uint32 {
	return (apicID & m.masks[i][i]) >> m.BaseShift(i)
}
