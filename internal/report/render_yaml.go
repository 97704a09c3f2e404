package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import "gopkg.in/yaml.v2"

func createYamlReport(allTableValues []TableValues) (out []byte, err error) {
	return yaml.Marshal(structuredReport(allTableValues))
}
