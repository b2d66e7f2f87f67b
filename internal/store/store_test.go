package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seosuite/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewWithDB(sqlx.NewDb(db, DriverSQLite)), mock
}

func TestNewStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewStore(tmpDir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	if store.db == nil {
		t.Error("Store database should not be nil")
	}

	dbPath := filepath.Join(tmpDir, DefaultFileName)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file should be created")
	}
}

func TestNewStore_InvalidDirectory(t *testing.T) {
	// Try to create store in a file (not directory)
	tmpDir := t.TempDir()
	invalidPath := filepath.Join(tmpDir, "file.txt")
	_ = os.WriteFile(invalidPath, []byte("test"), 0644)

	_, err := NewStore(invalidPath)
	if err == nil {
		t.Error("Expected error when creating store in invalid directory")
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	active, err := store.ActiveProject(ctx)
	require.NoError(t, err)
	assert.Nil(t, active, "fresh store has no active project")

	first, err := store.CreateProject(ctx, "  Cameras  ")
	require.NoError(t, err)
	assert.Equal(t, "Cameras", first.Name)
	assert.NotEmpty(t, first.ID)

	second, err := store.CreateProject(ctx, "Locks")
	require.NoError(t, err)

	active, err = store.ActiveProject(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID, "the newest project becomes active")

	projects, err := store.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, first.ID, projects[0].ID)

	renamed, err := store.RenameProject(ctx, first.ID, "Security Cameras")
	require.NoError(t, err)
	assert.Equal(t, "Security Cameras", renamed.Name)

	require.NoError(t, store.SetActiveProject(ctx, first.ID))
	active, _ = store.ActiveProject(ctx)
	assert.Equal(t, first.ID, active.ID)

	// Deleting the active project activates the first remaining one
	require.NoError(t, store.DeleteProject(ctx, first.ID))
	active, err = store.ActiveProject(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)

	require.NoError(t, store.DeleteProject(ctx, second.ID))
	active, err = store.ActiveProject(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestProjectErrors(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.CreateProject(ctx, "   ")
	assert.True(t, core.IsValidation(err), "blank name should be a validation error, got %v", err)

	_, err = store.GetProject(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = store.RenameProject(ctx, "missing", "x")
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.True(t, errors.Is(store.DeleteProject(ctx, "missing"), ErrNotFound))
	assert.True(t, errors.Is(store.SetActiveProject(ctx, "missing"), ErrNotFound))
	assert.True(t, errors.Is(store.SaveState(ctx, "missing", ProjectState{}), ErrNotFound))
}

func TestSaveLoadState(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	project, err := store.CreateProject(ctx, "Cameras")
	require.NoError(t, err)

	empty, err := store.LoadState(ctx, project.ID)
	require.NoError(t, err)
	assert.Nil(t, empty.Linking.LinkingMap)

	state := ProjectState{
		Linking: LinkingState{
			Pillar:          core.PillarPage{Title: "Guide", URL: "https://example.com/guide", Keyword: "guide"},
			Articles:        []core.Article{{ID: "1", Title: "A | Acme", URL: "https://example.com/a", Keyword: "a"}},
			BulkInput:       "A | Acme | https://example.com/a | a",
			Strategy:        "balanced",
			LinksPerArticle: 3,
			LinkingMap: &core.LinkingMap{Strategy: "balanced", LinksPerArticle: 3, Entries: []core.LinkEntry{
				{Article: core.Article{ID: "1", Title: "A"}, LinkedArticles: []core.Target{{ID: core.PillarID, Pillar: true}}},
			}},
		},
		Extractor: ExtractorState{
			URLs:   []string{"https://example.com/a"},
			Config: core.DefaultExtractorConfig(),
		},
	}
	require.NoError(t, store.SaveState(ctx, project.ID, state))

	// Saving twice replaces
	state.Linking.Strategy = "authority"
	require.NoError(t, store.SaveState(ctx, project.ID, state))

	loaded, err := store.LoadState(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "authority", loaded.Linking.Strategy)
	assert.Equal(t, state.Linking.Pillar, loaded.Linking.Pillar)
	assert.Equal(t, state.Linking.Articles, loaded.Linking.Articles)
	require.NotNil(t, loaded.Linking.LinkingMap)
	assert.Equal(t, 1, loaded.Linking.LinkingMap.Len())
	assert.Equal(t, state.Extractor.Config, loaded.Extractor.Config)
}

func TestMasterKeywords(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	project, err := store.CreateProject(ctx, "Cameras")
	require.NoError(t, err)

	added, err := store.AddKeywords(ctx, project.ID, []KeywordInput{
		{Keyword: "security cameras"},
		{Keyword: "buy cameras", Intent: "Transactional"},
	})
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, IntentInformational, added[0].Intent)
	assert.Equal(t, IntentTransactional, added[1].Intent)

	more, err := store.AddKeywords(ctx, project.ID, []KeywordInput{{Keyword: "camera brands", Intent: "commercial"}})
	require.NoError(t, err)
	assert.Equal(t, 3, more[0].Position)

	intent := "navigational"
	updated, err := store.UpdateKeyword(ctx, project.ID, added[0].ID, KeywordUpdate{Intent: &intent})
	require.NoError(t, err)
	assert.Equal(t, "security cameras", updated.Keyword)
	assert.Equal(t, IntentNavigational, updated.Intent)

	require.NoError(t, store.DeleteKeyword(ctx, project.ID, added[1].ID))

	list, err := store.ListKeywords(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "security cameras", list[0].Keyword)
	assert.Equal(t, IntentNavigational, list[0].Intent)
	assert.Equal(t, "camera brands", list[1].Keyword)

	// Deleting the project removes its keywords
	require.NoError(t, store.DeleteProject(ctx, project.ID))
	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Keywords)
}

func TestMasterKeywordErrors(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	project, err := store.CreateProject(ctx, "Cameras")
	require.NoError(t, err)

	_, err = store.AddKeywords(ctx, project.ID, []KeywordInput{{Keyword: " "}})
	assert.True(t, core.IsValidation(err))

	_, err = store.AddKeywords(ctx, project.ID, []KeywordInput{{Keyword: "x", Intent: "curious"}})
	assert.True(t, core.IsValidation(err))

	_, err = store.AddKeywords(ctx, "missing", []KeywordInput{{Keyword: "x"}})
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = store.UpdateKeyword(ctx, project.ID, "missing", KeywordUpdate{})
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.True(t, errors.Is(store.DeleteKeyword(ctx, project.ID, "missing"), ErrNotFound))
}

func TestNormalizeIntent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"", IntentInformational, false},
		{"  COMMERCIAL ", IntentCommercial, false},
		{"navigational", IntentNavigational, false},
		{"other", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeIntent(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NormalizeIntent(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil || got != tt.expected {
			t.Errorf("NormalizeIntent(%q) = %q, %v; expected %q", tt.input, got, err, tt.expected)
		}
	}
}

func TestPageCache(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	page := core.PageContent{
		Title:           "Security Cameras",
		MetaDescription: "Guide",
		Headings:        []string{"Indoor", "Outdoor"},
		MainContent:     "Cameras for every home.",
	}
	require.NoError(t, store.CachePage(ctx, "https://example.com/a", page))

	cached, err := store.GetCachedPage(ctx, "https://example.com/a", time.Hour)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, page.Title, cached.Title)
	assert.Equal(t, page.Headings, cached.Headings)
	assert.Equal(t, page.MainContent, cached.MainContent)
	assert.WithinDuration(t, time.Now(), cached.FetchedAt, time.Minute)

	miss, err := store.GetCachedPage(ctx, "https://example.com/none", time.Hour)
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestPageCache_Expired(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	old := core.PageContent{Title: "Old", FetchedAt: time.Now().Add(-2 * time.Hour)}
	require.NoError(t, store.CachePage(ctx, "https://example.com/old", old))
	require.NoError(t, store.CachePage(ctx, "https://example.com/new", core.PageContent{Title: "New"}))

	cached, err := store.GetCachedPage(ctx, "https://example.com/old", time.Hour)
	require.NoError(t, err)
	assert.Nil(t, cached, "stale pages are not returned")

	removed, err := store.CleanupPageCache(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CachedPages)
	assert.Greater(t, stats.Size, int64(0))
}

func TestExportImportProject(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	project, err := store.CreateProject(ctx, "Cameras")
	require.NoError(t, err)
	_, err = store.AddKeywords(ctx, project.ID, []KeywordInput{{Keyword: "security cameras"}, {Keyword: "buy cameras", Intent: "transactional"}})
	require.NoError(t, err)
	require.NoError(t, store.SaveState(ctx, project.ID, ProjectState{Linking: LinkingState{Strategy: "cluster"}}))

	bundle, err := store.ExportProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, BundleVersion, bundle.Version)
	assert.Len(t, bundle.Keywords, 2)

	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			data, err := MarshalBundle(bundle, format)
			require.NoError(t, err)

			decoded, err := UnmarshalBundle(data)
			require.NoError(t, err)

			imported, err := store.ImportProject(ctx, decoded)
			require.NoError(t, err)
			assert.NotEqual(t, project.ID, imported.ID)
			assert.Equal(t, "Cameras", imported.Name)

			active, err := store.ActiveProject(ctx)
			require.NoError(t, err)
			assert.Equal(t, imported.ID, active.ID)

			keywords, err := store.ListKeywords(ctx, imported.ID)
			require.NoError(t, err)
			require.Len(t, keywords, 2)
			assert.Equal(t, "buy cameras", keywords[1].Keyword)
			assert.Equal(t, IntentTransactional, keywords[1].Intent)
			assert.NotEqual(t, bundle.Keywords[0].ID, keywords[0].ID)

			state, err := store.LoadState(ctx, imported.ID)
			require.NoError(t, err)
			assert.Equal(t, "cluster", state.Linking.Strategy)
		})
	}
}

func TestBundleErrors(t *testing.T) {
	_, err := MarshalBundle(Bundle{}, "xml")
	assert.True(t, core.IsConfiguration(err))

	_, err = UnmarshalBundle([]byte("  "))
	assert.True(t, core.IsValidation(err))

	_, err = UnmarshalBundle([]byte("{not json"))
	assert.True(t, core.IsValidation(err))

	store := newTestStore(t)
	_, err = store.ImportProject(context.Background(), Bundle{Version: BundleVersion + 1, Project: Project{Name: "x"}})
	assert.True(t, core.IsValidation(err))

	_, err = store.ImportProject(context.Background(), Bundle{Version: BundleVersion})
	assert.True(t, core.IsValidation(err), "a bundle without a project name is rejected")
}

func TestListProjects_QueryError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, name, created_at, updated_at FROM projects").
		WillReturnError(errors.New("connection reset"))

	_, err := store.ListProjects(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list projects")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProject_RollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO projects").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO settings").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := store.CreateProject(context.Background(), "Cameras")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to set active project"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachePage_ExecError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO page_cache").
		WithArgs("https://example.com/a", "A", "", "null", "", sqlmock.AnyArg()).
		WillReturnError(errors.New("locked"))

	err := store.CachePage(context.Background(), "https://example.com/a", core.PageContent{Title: "A"})
	assert.ErrorContains(t, err, "failed to cache page")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupPageCache_Mock(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM page_cache").WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := store.CleanupPageCache(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
