package exchange

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"seosuite/internal/core"
	"seosuite/internal/parser"
)

// ArticleHeader is the header row of article files.
var ArticleHeader = []string{"title", "url", "keyword"}

// ReadArticlesCSV reads articles from CSV with a title,url,keyword header.
// Columns may appear in any order. Rows missing a field are skipped and IDs
// are the 1-based position among kept rows.
func ReadArticlesCSV(r io.Reader) ([]core.Article, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return articlesFromRows(rows)
}

// ReadArticlesXLSX reads articles from the first sheet of a workbook whose
// first row is the title,url,keyword header.
func ReadArticlesXLSX(r io.Reader) ([]core.Article, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, core.NewValidationError("xlsx", "failed to open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.NewValidationError("xlsx", "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return articlesFromRows(rows)
}

// ReadArticlesFile loads articles from a .csv, .xlsx or bulk text file.
func ReadArticlesFile(path string) ([]core.Article, error) {
	format := FormatFromPath(path)
	switch format {
	case FormatText:
		return parser.NewParser().ParseBulkFile(path)
	case FormatJSON:
		return nil, core.NewValidationError("path", "articles cannot be read from JSON: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	if format == FormatXLSX {
		return ReadArticlesXLSX(file)
	}
	return ReadArticlesCSV(file)
}

func articlesFromRows(rows [][]string) ([]core.Article, error) {
	if len(rows) == 0 {
		return nil, core.NewValidationError("header", "file is empty")
	}
	cols, err := readHeader(rows[0], ArticleHeader...)
	if err != nil {
		return nil, err
	}

	articles := []core.Article{}
	for _, row := range rows[1:] {
		a := core.Article{
			Title:   cols.get(row, "title"),
			URL:     cols.get(row, "url"),
			Keyword: cols.get(row, "keyword"),
		}
		if a.Title == "" || a.URL == "" || a.Keyword == "" {
			continue
		}
		a.ID = strconv.Itoa(len(articles) + 1)
		articles = append(articles, a)
	}
	return articles, nil
}

// WriteArticlesCSV writes articles with the title,url,keyword header.
func WriteArticlesCSV(w io.Writer, articles []core.Article) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ArticleHeader); err != nil {
		return err
	}
	for _, a := range articles {
		if err := cw.Write([]string{a.Title, a.URL, a.Keyword}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, core.NewValidationError("csv", "%v", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
