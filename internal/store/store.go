package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	// DefaultFileName is the SQLite database created inside the data directory.
	DefaultFileName = "seosuite.db"
)

// ErrNotFound is returned when a project or keyword does not exist.
var ErrNotFound = errors.New("not found")

// Store persists projects, their state, master keywords and cached pages.
type Store struct {
	db   *sqlx.DB
	path string
}

// NewStore opens (creating if needed) the SQLite database in dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return Open(DriverSQLite, filepath.Join(dataDir, DefaultFileName))
}

// Open connects with the given driver ("sqlite3" or "postgres") and creates
// the schema.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if driver == DriverSQLite {
		store.path = dsn
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.initialize(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// NewWithDB wraps an existing connection without creating the schema.
func NewWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// initialize creates the necessary tables
func (s *Store) initialize(ctx context.Context) error {
	projectsTable := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`

	// Holds the active project id
	settingsTable := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`

	stateTable := `
	CREATE TABLE IF NOT EXISTS project_state (
		project_id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`

	keywordsTable := `
	CREATE TABLE IF NOT EXISTS master_keywords (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		keyword TEXT NOT NULL,
		intent TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`

	keywordsIndex := `CREATE INDEX IF NOT EXISTS idx_master_keywords_project ON master_keywords (project_id);`

	pageCacheTable := `
	CREATE TABLE IF NOT EXISTS page_cache (
		url TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		meta_description TEXT NOT NULL,
		headings TEXT NOT NULL,
		main_content TEXT NOT NULL,
		fetched_at TIMESTAMP NOT NULL
	);`

	statements := []string{projectsTable, settingsTable, stateTable, keywordsTable, keywordsIndex, pageCacheTable}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Stats represents store statistics
type Stats struct {
	Projects    int       `json:"projects"`
	Keywords    int       `json:"keywords"`
	CachedPages int       `json:"cached_pages"`
	Size        int64     `json:"size"`
	LastUpdated time.Time `json:"last_updated"`
}

// Stats returns row counts and, for SQLite, the database file size.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	queries := map[string]*int{
		"SELECT COUNT(*) FROM projects":        &stats.Projects,
		"SELECT COUNT(*) FROM master_keywords": &stats.Keywords,
		"SELECT COUNT(*) FROM page_cache":      &stats.CachedPages,
	}

	for query, target := range queries {
		if err := s.db.GetContext(ctx, target, query); err != nil {
			return nil, fmt.Errorf("failed to get count: %w", err)
		}
	}

	if s.path != "" {
		if fileInfo, err := os.Stat(s.path); err == nil {
			stats.Size = fileInfo.Size()
			stats.LastUpdated = fileInfo.ModTime()
		}
	}

	return stats, nil
}

// withTx runs fn in a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func now() time.Time {
	return time.Now().UTC()
}
