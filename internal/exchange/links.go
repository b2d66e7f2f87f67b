package exchange

import (
	"encoding/csv"
	"io"

	"seosuite/internal/core"
	"seosuite/internal/store"
)

// LinkHeader is the header row of linking map exports.
var LinkHeader = []string{"source_title", "source_url", "target_title", "target_url", "anchor"}

// WriteLinksCSV writes one row per link in map order. The anchor is the
// target's keyword.
func WriteLinksCSV(w io.Writer, m core.LinkingMap) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(LinkHeader); err != nil {
		return err
	}
	for _, e := range m.Entries {
		for _, t := range e.LinkedArticles {
			if err := cw.Write([]string{e.Article.Title, e.Article.URL, t.Title, t.URL, t.Keyword}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// MasterKeywordHeader is the header row of master keyword files.
var MasterKeywordHeader = []string{"keyword", "intent"}

// ReadMasterKeywordsCSV reads keyword,intent rows. The intent column is
// optional and blank rows are skipped.
func ReadMasterKeywordsCSV(r io.Reader) ([]store.KeywordInput, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, core.NewValidationError("header", "file is empty")
	}
	cols, err := readHeader(rows[0], "keyword")
	if err != nil {
		return nil, err
	}

	inputs := []store.KeywordInput{}
	for _, row := range rows[1:] {
		keyword := cols.get(row, "keyword")
		if keyword == "" {
			continue
		}
		inputs = append(inputs, store.KeywordInput{Keyword: keyword, Intent: cols.get(row, "intent")})
	}
	return inputs, nil
}

// WriteMasterKeywordsCSV writes keywords as keyword,intent rows.
func WriteMasterKeywordsCSV(w io.Writer, keywords []store.MasterKeyword) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(MasterKeywordHeader); err != nil {
		return err
	}
	for _, k := range keywords {
		if err := cw.Write([]string{k.Keyword, k.Intent}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
