package fetch

import (
	"context"
	"time"

	"seosuite/internal/core"
	"seosuite/internal/logger"
	"seosuite/internal/metrics"
)

// PageCache stores parsed pages keyed by URL.
type PageCache interface {
	GetCachedPage(ctx context.Context, url string, maxAge time.Duration) (*core.PageContent, error)
	CachePage(ctx context.Context, url string, page core.PageContent) error
}

// CachedFetcher serves pages from a cache while they are younger than the TTL.
type CachedFetcher struct {
	next    PageFetcher
	cache   PageCache
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewCachedFetcher wraps next with cache. A zero ttl disables caching.
func NewCachedFetcher(next PageFetcher, cache PageCache, ttl time.Duration, m *metrics.Metrics) *CachedFetcher {
	return &CachedFetcher{next: next, cache: cache, ttl: ttl, metrics: m}
}

// Fetch returns the cached page when fresh, otherwise fetches and stores it.
// Cache errors are logged and never fail the fetch.
func (c *CachedFetcher) Fetch(ctx context.Context, rawURL string) (core.PageContent, error) {
	if c.ttl <= 0 || c.cache == nil {
		return c.next.Fetch(ctx, rawURL)
	}

	cached, err := c.cache.GetCachedPage(ctx, rawURL, c.ttl)
	if err != nil {
		logger.Warn("Page cache lookup failed", "url", rawURL, "error", err)
	} else if cached != nil {
		logger.Debug("Page cache hit", "url", rawURL)
		c.metrics.ObserveFetch(metrics.FetchCacheHit, 0)
		return *cached, nil
	}

	page, err := c.next.Fetch(ctx, rawURL)
	if err != nil {
		return core.PageContent{}, err
	}

	if err := c.cache.CachePage(ctx, rawURL, page); err != nil {
		logger.Warn("Failed to cache page", "url", rawURL, "error", err)
	}
	return page, nil
}
