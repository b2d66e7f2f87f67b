package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"seosuite/internal/core"
	"seosuite/internal/metrics"
)

// DefaultProxyURL is the public CORS proxy the browser tool routed requests through.
const DefaultProxyURL = "https://api.codetabs.com/v1/proxy?quest="

const (
	DefaultTimeout      = 15 * time.Second
	DefaultUserAgent    = "Mozilla/5.0 (compatible; seosuite/1.0; +https://github.com/seosuite)"
	defaultMaxBodyBytes = 10 << 20
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// PageFetcher retrieves and parses an HTML page.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (core.PageContent, error)
}

// Options configures an HTTPFetcher.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// ProxyURL, when set, is prefixed to the query-escaped target URL.
	ProxyURL     string
	MaxBodyBytes int64
}

// HTTPFetcher fetches pages and sitemaps over HTTP.
type HTTPFetcher struct {
	client  *http.Client
	opts    Options
	metrics *metrics.Metrics
}

// NewHTTPFetcher creates a fetcher. m may be nil.
func NewHTTPFetcher(opts Options, m *metrics.Metrics) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		metrics: m,
	}
}

// Fetch downloads rawURL and extracts its title, meta description, headings and body text.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (core.PageContent, error) {
	start := time.Now()
	body, err := f.Get(ctx, rawURL)
	if err != nil {
		f.metrics.ObserveFetch(metrics.FetchError, time.Since(start))
		return core.PageContent{}, err
	}

	page, err := ParsePage(bytes.NewReader(body))
	if err != nil {
		f.metrics.ObserveFetch(metrics.FetchError, time.Since(start))
		return core.PageContent{}, &core.FetchError{URL: rawURL, Err: err}
	}
	f.metrics.ObserveFetch(metrics.FetchOK, time.Since(start))
	return page, nil
}

// Get returns the raw response body for rawURL. Any failure is a *core.FetchError.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.requestURL(rawURL), nil)
	if err != nil {
		return nil, &core.FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &core.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &core.FetchError{URL: rawURL, Err: fmt.Errorf("status code %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes))
	if err != nil {
		return nil, &core.FetchError{URL: rawURL, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &core.FetchError{URL: rawURL, Err: fmt.Errorf("empty response body")}
	}
	return body, nil
}

func (f *HTTPFetcher) requestURL(rawURL string) string {
	if f.opts.ProxyURL == "" {
		return rawURL
	}
	return f.opts.ProxyURL + url.QueryEscape(rawURL)
}

// ParsePage extracts keyword-relevant text from an HTML document.
func ParsePage(r io.Reader) (core.PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return core.PageContent{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := core.PageContent{
		Title:     extractTitle(doc),
		FetchedAt: time.Now().UTC(),
	}
	if desc, ok := doc.Find("meta[name='description']").First().Attr("content"); ok {
		page.MetaDescription = strings.TrimSpace(desc)
	}

	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		if text := collapse(s.Text()); text != "" {
			page.Headings = append(page.Headings, text)
		}
	})

	// Remove common non-content elements before taking the body text
	doc.Find("script, style, noscript, template, iframe, nav, footer, form, .cookie-banner, .advertisement").Remove()
	page.MainContent = collapse(doc.Find("body").Text())

	return page, nil
}

// extractTitle tries the title element, then og:title, then the first h1.
func extractTitle(doc *goquery.Document) string {
	if title := collapse(doc.Find("head title").First().Text()); title != "" {
		return title
	}
	if ogTitle, _ := doc.Find("meta[property='og:title']").Attr("content"); strings.TrimSpace(ogTitle) != "" {
		return strings.TrimSpace(ogTitle)
	}
	return collapse(doc.Find("h1").First().Text())
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}
