// Package report generates reports in various formats such as txt, json, yaml, xlsx.
package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"
)

const (
	FormatTxt  = "txt"
	FormatJson = "json"
	FormatYaml = "yaml"
	FormatXlsx = "xlsx"
	FormatAll  = "all"
)

const noDataFound = "No data found."

var FormatOptions = []string{FormatTxt, FormatJson, FormatYaml, FormatXlsx}

// Field represents the values for a field in a table
type Field struct {
	Name   string
	Values []string
}

// TableValues holds one table's fields and their values
type TableValues struct {
	Name        string
	HasRows     bool   // table is meant to be displayed in row form, i.e., a field may have multiple values
	NoDataFound string // message to display when no data is found
	Notes       []string
	Fields      []Field
}

// Create generates a report in the specified format based on the provided
// tables. The function ensures that all fields have the same number of values
// before generating the report. If the format is not supported, the function
// panics with an error message.
func Create(format string, allTableValues []TableValues, targetName string) (out []byte, err error) {
	// make sure that all fields have the same number of values
	for _, tableValues := range allTableValues {
		numRows := -1
		for _, fieldValues := range tableValues.Fields {
			if numRows == -1 {
				numRows = len(fieldValues.Values)
				continue
			}
			if len(fieldValues.Values) != numRows {
				return nil, fmt.Errorf("expected %d value(s) for field, found %d", numRows, len(fieldValues.Values))
			}
		}
	}
	switch format {
	case FormatTxt:
		return createTextReport(allTableValues)
	case FormatJson:
		return createJsonReport(allTableValues)
	case FormatYaml:
		return createYamlReport(allTableValues)
	case FormatXlsx:
		return createXlsxReport(allTableValues, targetName)
	}
	panic(fmt.Sprintf("expected one of %s, got %s", strings.Join(FormatOptions, ", "), format))
}
