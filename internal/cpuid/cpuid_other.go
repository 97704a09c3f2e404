//go:build !amd64

package cpuid

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// CPUID does not exist off x86. Zero registers decode as "leaf not
// supported" everywhere, so enumeration degrades to the minimal layout
// rather than failing.
func cpuidLow(leaf, subleaf uint32) (eax, ebx, ecx, edx uint32) {
	return 0, 0, 0, 0
}
