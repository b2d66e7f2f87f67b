package fetch

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"seosuite/internal/core"
	"seosuite/internal/keywords"
	"seosuite/internal/logger"
	"seosuite/internal/metrics"
)

const DefaultConcurrency = 8

var (
	sitemapURLRegex = regexp.MustCompile(`^https?://.+\.xml$`)
	httpURLRegex    = regexp.MustCompile(`^https?://`)
)

// Request describes one keyword extraction batch.
type Request struct {
	URLs       []string             `json:"urls"`
	SitemapURL string               `json:"sitemap_url"`
	Config     core.ExtractorConfig `json:"config"`
}

// BatchOptions tunes batch processing.
type BatchOptions struct {
	Concurrency int
	// Timeout bounds each URL's fetch; zero leaves it to the fetcher.
	Timeout time.Duration
	// FetchSitemapPages extracts from page content in sitemap mode instead of
	// deriving keywords from URL slugs only.
	FetchSitemapPages bool
}

// BatchExtractor runs keyword extraction over many URLs concurrently.
type BatchExtractor struct {
	pages    PageFetcher
	sitemaps SitemapFetcher
	opts     BatchOptions
	metrics  *metrics.Metrics
}

// NewBatchExtractor creates a batch extractor. sitemaps may be nil when only URL
// mode is used; m may be nil.
func NewBatchExtractor(pages PageFetcher, sitemaps SitemapFetcher, opts BatchOptions, m *metrics.Metrics) *BatchExtractor {
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	return &BatchExtractor{pages: pages, sitemaps: sitemaps, opts: opts, metrics: m}
}

// ValidateRequest checks the input before anything is fetched.
func ValidateRequest(req Request) error {
	if err := keywords.ValidateConfig(req.Config); err != nil {
		return err
	}

	if req.Config.InputType == core.InputSitemap {
		sitemapURL := strings.TrimSpace(req.SitemapURL)
		if sitemapURL == "" {
			return core.NewValidationError("sitemap_url", "is required when input type is %q", core.InputSitemap)
		}
		if !sitemapURLRegex.MatchString(sitemapURL) {
			return core.NewValidationError("sitemap_url", "invalid sitemap URL format %q", sitemapURL)
		}
		return nil
	}

	if len(req.URLs) == 0 {
		return core.NewValidationError("urls", "at least one URL is required")
	}
	for i, u := range req.URLs {
		if !httpURLRegex.MatchString(strings.TrimSpace(u)) {
			return core.NewValidationError(fmt.Sprintf("urls[%d]", i), "invalid URL format %q", u)
		}
	}
	return nil
}

// Run validates req, resolves its URL list and extracts keywords from every URL.
// A failing URL never stops the others; a failing sitemap fails the whole run.
func (b *BatchExtractor) Run(ctx context.Context, req Request) (core.BatchResult, error) {
	if err := ValidateRequest(req); err != nil {
		return core.BatchResult{}, err
	}
	extractor, err := keywords.NewExtractor(req.Config)
	if err != nil {
		return core.BatchResult{}, err
	}

	start := time.Now()
	sitemapMode := req.Config.InputType == core.InputSitemap

	var urls []string
	if sitemapMode {
		if b.sitemaps == nil {
			return core.BatchResult{}, core.NewConfigurationError("fetch", "no sitemap fetcher configured")
		}
		urls, err = b.sitemaps.FetchSitemap(ctx, strings.TrimSpace(req.SitemapURL))
		if err != nil {
			logger.Error("Sitemap processing failed", err, "sitemap_url", req.SitemapURL)
			return core.BatchResult{}, err
		}
		logger.Info("Sitemap loaded", "sitemap_url", req.SitemapURL, "urls", len(urls))
	} else {
		for _, u := range req.URLs {
			urls = append(urls, strings.TrimSpace(u))
		}
	}

	results := make([]core.URLResult, len(urls))
	var g errgroup.Group
	g.SetLimit(b.opts.Concurrency)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			if sitemapMode && !b.opts.FetchSitemapPages {
				results[i] = slugResult(u, "")
				return nil
			}
			results[i] = b.process(ctx, extractor, u)
			return nil
		})
	}
	_ = g.Wait()

	meta := core.BatchMetadata{TotalURLs: len(urls), Duration: time.Since(start)}
	for _, r := range results {
		if r.Success {
			meta.SuccessfulExtractions++
		} else {
			meta.FailedExtractions++
		}
	}
	b.metrics.ObserveBatch(meta.SuccessfulExtractions, meta.FailedExtractions, meta.Duration)
	logger.Info("Keyword extraction finished",
		"urls", meta.TotalURLs,
		"successful", meta.SuccessfulExtractions,
		"failed", meta.FailedExtractions,
		"duration", meta.Duration.String())

	return core.BatchResult{Results: results, Metadata: meta}, nil
}

// process fetches one URL and ranks its keywords, falling back to the URL slug
// when the page cannot be fetched or yields nothing.
func (b *BatchExtractor) process(ctx context.Context, extractor *keywords.Extractor, rawURL string) core.URLResult {
	if b.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.Timeout)
		defer cancel()
	}

	page, err := b.pages.Fetch(ctx, rawURL)
	if err != nil {
		logger.Warn("Page fetch failed, using URL slug", "url", rawURL, "error", err)
		return slugResult(rawURL, err.Error())
	}

	found := extractor.Extract(page)
	if len(found) == 0 {
		result := slugResult(rawURL, "")
		result.Title = page.Title
		return result
	}

	return core.URLResult{
		URL:         rawURL,
		Success:     true,
		Title:       page.Title,
		Keywords:    found,
		ProcessedAt: time.Now().UTC(),
	}
}

// slugResult builds a result from the URL's last path segment. fetchErr is the
// reason content extraction was skipped, if any.
func slugResult(rawURL, fetchErr string) core.URLResult {
	result := core.URLResult{
		URL:         rawURL,
		Keywords:    keywords.FromURL(rawURL),
		Fallback:    true,
		Error:       fetchErr,
		ProcessedAt: time.Now().UTC(),
	}
	result.Success = len(result.Keywords) > 0
	if !result.Success {
		result.Keywords = []core.KeywordCandidate{}
		if result.Error == "" {
			result.Error = "no keywords found and the URL has no path segment"
		}
	}
	return result
}
