// Package exchange moves article lists, keyword results, linking maps and
// master keywords in and out of CSV, XLSX and JSON files.
package exchange

import (
	"path/filepath"
	"strings"

	"seosuite/internal/core"
)

// Format is a tabular file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
	// FormatText is the "title | url | keyword" bulk text format.
	FormatText Format = "text"
)

// FormatFromPath picks a format from a file extension. Unknown extensions are
// treated as bulk text.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	case ".json":
		return FormatJSON
	default:
		return FormatText
	}
}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatCSV, FormatXLSX, FormatJSON, FormatText:
		return f, nil
	default:
		return "", core.NewConfigurationError("format", "unsupported format %q (supported: csv, xlsx, json, text)", name)
	}
}

// columns maps lowercased header names to their index.
type columns map[string]int

func readHeader(header []string, required ...string) (columns, error) {
	cols := columns{}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, seen := cols[name]; !seen && name != "" {
			cols[name] = i
		}
	}
	var missing []string
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, core.NewValidationError("header", "missing column(s): %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

// get returns the trimmed cell for column name, or "" when the row is short
// or the column is absent.
func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
