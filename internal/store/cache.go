package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"seosuite/internal/core"
)

type cachedPage struct {
	URL             string    `db:"url"`
	Title           string    `db:"title"`
	MetaDescription string    `db:"meta_description"`
	Headings        string    `db:"headings"`
	MainContent     string    `db:"main_content"`
	FetchedAt       time.Time `db:"fetched_at"`
}

// CachePage stores a parsed page, replacing any earlier copy.
func (s *Store) CachePage(ctx context.Context, url string, page core.PageContent) error {
	headings, err := json.Marshal(page.Headings)
	if err != nil {
		return fmt.Errorf("failed to encode headings: %w", err)
	}
	fetchedAt := page.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = now()
	}

	query := s.db.Rebind(`
	INSERT INTO page_cache (url, title, meta_description, headings, main_content, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (url) DO UPDATE SET
		title = excluded.title,
		meta_description = excluded.meta_description,
		headings = excluded.headings,
		main_content = excluded.main_content,
		fetched_at = excluded.fetched_at`)

	_, err = s.db.ExecContext(ctx, query,
		url,
		page.Title,
		page.MetaDescription,
		string(headings),
		page.MainContent,
		fetchedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to cache page: %w", err)
	}
	return nil
}

// GetCachedPage returns the cached page for url when it is younger than maxAge.
// A miss returns nil and no error.
func (s *Store) GetCachedPage(ctx context.Context, url string, maxAge time.Duration) (*core.PageContent, error) {
	var row cachedPage
	query := s.db.Rebind(`
	SELECT url, title, meta_description, headings, main_content, fetched_at
	FROM page_cache WHERE url = ?`)

	err := s.db.GetContext(ctx, &row, query, url)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached page: %w", err)
	}
	if now().Sub(row.FetchedAt) > maxAge {
		return nil, nil
	}

	page := &core.PageContent{
		Title:           row.Title,
		MetaDescription: row.MetaDescription,
		MainContent:     row.MainContent,
		FetchedAt:       row.FetchedAt,
	}
	if err := json.Unmarshal([]byte(row.Headings), &page.Headings); err != nil {
		return nil, fmt.Errorf("failed to decode cached headings: %w", err)
	}
	return page, nil
}

// CleanupPageCache removes pages older than maxAge and reports how many went.
func (s *Store) CleanupPageCache(ctx context.Context, maxAge time.Duration) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM page_cache WHERE fetched_at < ?`), now().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("failed to clean page cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
