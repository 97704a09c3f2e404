//go:build linux

package cpuid

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"log/slog"

	"golang.org/x/sys/unix"
)

func bindAffinity(processor int) {
	var set unix.CPUSet
	set.Set(processor)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		slog.Warn("failed to set processor affinity", slog.Int("processor", processor), slog.String("error", err.Error()))
	}
}
