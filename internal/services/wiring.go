// Package services wires the engines, fetchers and store together from
// configuration so the CLI and the HTTP API share one setup path.
package services

import (
	"seosuite/internal/config"
	"seosuite/internal/fetch"
	"seosuite/internal/logger"
	"seosuite/internal/metrics"
	"seosuite/internal/store"
)

// OpenStore opens the configured project store. SQLite without a DSN lives
// in the data directory.
func OpenStore(cfg *config.Config) (*store.Store, error) {
	if cfg.Database.Driver == store.DriverSQLite && cfg.Database.DSN == "" {
		return store.NewStore(cfg.App.DataDir)
	}
	return store.Open(cfg.Database.Driver, cfg.Database.DSN)
}

// NewBatchExtractor builds the HTTP fetcher, wraps it with the page cache
// when st is non-nil and the TTL is positive, and returns a batch extractor.
func NewBatchExtractor(cfg config.Fetch, st *store.Store, m *metrics.Metrics) *fetch.BatchExtractor {
	httpFetcher := fetch.NewHTTPFetcher(fetch.Options{
		Timeout:   cfg.TimeoutDuration(),
		UserAgent: cfg.UserAgent,
		ProxyURL:  cfg.ProxyURL,
	}, m)

	var pages fetch.PageFetcher = httpFetcher
	if ttl := cfg.CacheTTLDuration(); st != nil && ttl > 0 {
		pages = fetch.NewCachedFetcher(httpFetcher, st, ttl, m)
		logger.Debug("Page cache enabled", "ttl", ttl.String())
	}

	return fetch.NewBatchExtractor(pages, httpFetcher, fetch.BatchOptions{
		Concurrency:       cfg.Concurrency,
		Timeout:           cfg.TimeoutDuration(),
		FetchSitemapPages: cfg.FetchSitemapPages,
	}, m)
}
