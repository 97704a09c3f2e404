//go:build !linux

package cpuid

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import "log/slog"

func bindAffinity(processor int) {
	slog.Warn("processor affinity binding is not supported on this platform", slog.Int("processor", processor))
}
