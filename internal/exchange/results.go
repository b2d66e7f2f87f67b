package exchange

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"seosuite/internal/core"
)

// ResultHeader is the header row of keyword result exports.
var ResultHeader = []string{"url", "keyword", "frequency", "score"}

const resultSheet = "Keywords"

// resultRows flattens a batch into one row per keyword. URLs without keywords
// get a single row with empty keyword columns so they stay visible.
func resultRows(results []core.URLResult) [][]any {
	var rows [][]any
	for _, r := range results {
		if len(r.Keywords) == 0 {
			rows = append(rows, []any{r.URL, "", "", ""})
			continue
		}
		for _, kw := range r.Keywords {
			rows = append(rows, []any{r.URL, kw.Keyword, kw.Frequency, kw.Score})
		}
	}
	return rows
}

// WriteResultsCSV writes keyword results as url,keyword,frequency,score rows.
func WriteResultsCSV(w io.Writer, results []core.URLResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ResultHeader); err != nil {
		return err
	}
	for _, row := range resultRows(results) {
		record := make([]string, len(row))
		for i, v := range row {
			switch val := v.(type) {
			case int:
				record[i] = strconv.Itoa(val)
			case float64:
				record[i] = strconv.FormatFloat(val, 'f', 2, 64)
			default:
				record[i] = fmt.Sprint(val)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteResultsXLSX writes keyword results to a "Keywords" sheet.
func WriteResultsXLSX(w io.Writer, results []core.URLResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", resultSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := append([][]any{toAny(ResultHeader)}, resultRows(results)...)
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(resultSheet, cell, v); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteResultsJSON writes the whole batch, metadata included.
func WriteResultsJSON(w io.Writer, batch core.BatchResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(batch)
}

// WriteResults writes a batch in the given format.
func WriteResults(w io.Writer, batch core.BatchResult, format Format) error {
	switch format {
	case FormatCSV:
		return WriteResultsCSV(w, batch.Results)
	case FormatXLSX:
		return WriteResultsXLSX(w, batch.Results)
	case FormatJSON:
		return WriteResultsJSON(w, batch)
	default:
		return core.NewConfigurationError("format", "keyword results cannot be written as %q", format)
	}
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
