package cpuid

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"runtime"
)

// NativeSource executes the CPUID instruction on the live system. Because
// several leaves return processor-specific data, the constructor locks the
// calling goroutine to its OS thread so that BindAffinity pins all
// subsequent reads to the requested processor.
type NativeSource struct{}

// NewNativeSource returns a Source backed by the hardware CPUID instruction.
// The caller's goroutine is locked to its OS thread for the lifetime of the
// process; this application reads CPUID once at startup, so the thread is
// never unlocked.
func NewNativeSource() *NativeSource {
	runtime.LockOSThread()
	return &NativeSource{}
}

// Read executes CPUID with the given leaf and sub-leaf on the currently
// bound processor.
func (s *NativeSource) Read(leaf uint32, subleaf uint32) Registers {
	eax, ebx, ecx, edx := cpuidLow(leaf, subleaf)
	return Registers{EAX: eax, EBX: ebx, ECX: ecx, EDX: edx}
}

// BindAffinity pins the calling thread to the given logical processor.
// Binding failures are logged and otherwise ignored; subsequent reads then
// reflect whichever processor the scheduler selects.
func (s *NativeSource) BindAffinity(processor int) {
	bindAffinity(processor)
}

// NumProcessors returns the number of logical processors available to this
// process.
func (s *NativeSource) NumProcessors() int {
	return runtime.NumCPU()
}

// IsNative reports that this source reads the hardware directly.
func (s *NativeSource) IsNative() bool {
	return true
}
