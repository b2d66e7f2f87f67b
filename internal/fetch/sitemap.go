package fetch

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"seosuite/internal/core"
	"seosuite/internal/metrics"
)

const (
	sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
	newsNamespace    = "http://www.google.com/schemas/sitemap-news/0.9"
)

// SitemapFetcher lists the page URLs announced by a sitemap.
type SitemapFetcher interface {
	FetchSitemap(ctx context.Context, sitemapURL string) ([]string, error)
}

// FetchSitemap downloads and parses a sitemap. Failures are *core.FetchError.
func (f *HTTPFetcher) FetchSitemap(ctx context.Context, sitemapURL string) ([]string, error) {
	start := time.Now()
	body, err := f.Get(ctx, sitemapURL)
	if err != nil {
		f.metrics.ObserveFetch(metrics.FetchError, time.Since(start))
		return nil, err
	}

	urls, err := ParseSitemap(bytes.NewReader(body))
	if err != nil {
		f.metrics.ObserveFetch(metrics.FetchError, time.Since(start))
		return nil, &core.FetchError{URL: sitemapURL, Err: err}
	}
	f.metrics.ObserveFetch(metrics.FetchOK, time.Since(start))
	return urls, nil
}

// ParseSitemap collects <loc> values followed by <news:link> values, without
// duplicates, in document order. Extension elements such as <image:loc> are
// ignored.
func ParseSitemap(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)
	decoder.Strict = true

	var locs, links []string
	sawElement := false
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid sitemap XML: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawElement = true

		switch {
		case start.Name.Local == "loc" && (start.Name.Space == sitemapNamespace || start.Name.Space == ""):
			value, err := elementText(decoder, start)
			if err != nil {
				return nil, err
			}
			locs = append(locs, value)
		case start.Name.Local == "link" && (start.Name.Space == newsNamespace || start.Name.Space == "news"):
			value, err := elementText(decoder, start)
			if err != nil {
				return nil, err
			}
			links = append(links, value)
		}
	}

	if !sawElement {
		return nil, fmt.Errorf("invalid sitemap XML: no elements found")
	}

	seen := make(map[string]bool, len(locs)+len(links))
	var urls []string
	for _, u := range append(locs, links...) {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls, nil
}

func elementText(decoder *xml.Decoder, start xml.StartElement) (string, error) {
	var value string
	if err := decoder.DecodeElement(&value, &start); err != nil {
		return "", fmt.Errorf("invalid sitemap XML: %w", err)
	}
	return strings.TrimSpace(value), nil
}
