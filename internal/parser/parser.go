package parser

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"

	"seosuite/internal/core"
	"seosuite/internal/slug"
)

// Field delimiters tried in order for each bulk line.
var defaultDelimiters = []string{"|", ",", ";"}

var (
	// Matches markdown links: [text](url)
	markdownLinkRegex = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)

	// Matches raw URLs in text
	rawURLRegex = regexp.MustCompile(`https?://[^\s)]+`)
)

// Parser turns raw user input into article records and URL lists.
type Parser struct {
	delimiters []string
}

// NewParser creates a Parser using the "|", "," then ";" delimiter order.
func NewParser() *Parser {
	return &Parser{delimiters: defaultDelimiters}
}

// ManualEntry is one row of form-style article input.
type ManualEntry struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Keyword string `json:"keyword"`
}

// ParseBulk parses one "title | url | keyword" record per line.
// Lines that do not yield three non-empty fields with any delimiter are dropped
// without error. IDs are the 1-based position among kept lines.
func (p *Parser) ParseBulk(text string) []core.Article {
	var articles []core.Article

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields, ok := p.splitRecord(line)
		if !ok {
			continue
		}

		articles = append(articles, core.Article{
			ID:      strconv.Itoa(len(articles) + 1),
			Title:   fields[0],
			URL:     fields[1],
			Keyword: fields[2],
		})
	}

	return articles
}

// ParseBulkFile reads a file and parses it with ParseBulk.
func (p *Parser) ParseBulkFile(filePath string) ([]core.Article, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}
	return p.ParseBulk(string(content)), nil
}

// splitRecord returns the first three trimmed fields of line using the first
// delimiter that produces at least three parts.
func (p *Parser) splitRecord(line string) ([3]string, bool) {
	var fields [3]string
	for _, delim := range p.delimiters {
		parts := strings.Split(line, delim)
		if len(parts) < 3 {
			continue
		}
		for i := 0; i < 3; i++ {
			fields[i] = strings.TrimSpace(parts[i])
			if fields[i] == "" {
				return fields, false
			}
		}
		return fields, true
	}
	return fields, false
}

// ParseManual converts form-style rows into articles. Incomplete rows are skipped
// but still consume a position, so IDs stay tied to the row they came from.
func (p *Parser) ParseManual(entries []ManualEntry) []core.Article {
	articles := make([]core.Article, 0, len(entries))
	for i, e := range entries {
		title := strings.TrimSpace(e.Title)
		link := strings.TrimSpace(e.URL)
		keyword := strings.TrimSpace(e.Keyword)
		if title == "" || link == "" || keyword == "" {
			continue
		}
		articles = append(articles, core.Article{
			ID:      fmt.Sprintf("manual_%d", i),
			Title:   title,
			URL:     link,
			Keyword: keyword,
		})
	}
	return articles
}

// FormatBulk renders articles as "title | url | keyword" lines for display.
// Fields that contain a delimiter do not survive ParseBulk, so callers that
// reload articles keep the []core.Article itself.
func FormatBulk(articles []core.Article) string {
	lines := make([]string, len(articles))
	for i, a := range articles {
		lines[i] = fmt.Sprintf("%s | %s | %s", a.Title, a.URL, a.Keyword)
	}
	return strings.Join(lines, "\n")
}

// CombineColumns zips three newline separated columns into bulk lines.
func CombineColumns(titles, urls, keywords string) (string, error) {
	t := nonEmptyLines(titles)
	u := nonEmptyLines(urls)
	k := nonEmptyLines(keywords)

	if len(t) == 0 {
		return "", core.NewValidationError("titles", "at least one line is required")
	}
	if len(t) != len(u) || len(u) != len(k) {
		return "", core.NewValidationError("columns",
			"line counts differ: %d titles, %d urls, %d keywords", len(t), len(u), len(k))
	}

	lines := make([]string, len(t))
	for i := range t {
		lines[i] = fmt.Sprintf("%s | %s | %s", t[i], u[i], k[i])
	}
	return strings.Join(lines, "\n"), nil
}

// ConvertedURL is one line of URL-to-record conversion.
type ConvertedURL struct {
	URL     string `json:"url"`
	Keyword string `json:"keyword,omitempty"`
	Line    string `json:"line,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ConvertURLs builds "keyword | url | keyword" bulk lines from a list of URLs,
// deriving the keyword from each URL's last path segment.
func ConvertURLs(text string) []ConvertedURL {
	p := NewParser()
	lines := nonEmptyLines(text)
	results := make([]ConvertedURL, 0, len(lines))
	for _, raw := range lines {
		if err := p.ValidateURL(raw); err != nil {
			results = append(results, ConvertedURL{URL: raw, Error: err.Error()})
			continue
		}
		keyword := slug.Keyword(raw)
		if keyword == "" {
			results = append(results, ConvertedURL{URL: raw, Error: "URL has no path segment to derive a keyword from"})
			continue
		}
		results = append(results, ConvertedURL{
			URL:     raw,
			Keyword: keyword,
			Line:    fmt.Sprintf("%s | %s | %s", keyword, raw, keyword),
		})
	}
	return results
}

// ParseURLList extracts URLs from plain or markdown text, one or more per line.
// Order is preserved and exact duplicates are removed.
func (p *Parser) ParseURLList(content string) []string {
	seen := make(map[string]bool)
	var urls []string

	add := func(u string) {
		u = strings.TrimRight(u, ".,;:!?")
		if !p.isValidURL(u) || seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}

	for _, line := range strings.Split(content, "\n") {
		if matches := markdownLinkRegex.FindAllStringSubmatch(line, -1); len(matches) > 0 {
			for _, match := range matches {
				add(match[2])
			}
			continue
		}

		for _, raw := range rawURLRegex.FindAllString(line, -1) {
			add(raw)
		}
	}

	return urls
}

// ValidateURL checks that rawURL is an absolute http(s) URL.
func (p *Parser) ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (must be http or https)", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL missing host")
	}

	return nil
}

func (p *Parser) isValidURL(rawURL string) bool {
	return p.ValidateURL(rawURL) == nil
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
