//go:build amd64

package cpuid

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// cpuidLow exposes the CPUID instruction to the Go layer.
// Implemented in cpuid_amd64.s.
func cpuidLow(leaf, subleaf uint32) (eax, ebx, ecx, edx uint32)
