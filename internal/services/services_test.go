package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seosuite/internal/clustering"
	"seosuite/internal/config"
	"seosuite/internal/core"
	"seosuite/internal/fetch"
	"seosuite/internal/metrics"
	"seosuite/internal/parser"
	"seosuite/internal/store"
)

func linkingDefaults() config.Linking {
	return config.Linking{
		Strategy:        "balanced",
		LinksPerArticle: 3,
		Format:          "markdown",
		Locale:          config.Locale{Name: "en"},
		Templates:       []string{"See {links}."},
		Cluster:         clustering.DefaultOptions(),
	}
}

const bulk = `Indoor Cameras | https://example.com/1 | indoor security cameras
Outdoor Cameras | https://example.com/2 | outdoor security cameras
Smart Locks | https://example.com/3 | smart door locks
Door Bells | https://example.com/4 | video door bells`

var pillar = core.PillarPage{Title: "Guide", URL: "https://example.com/guide", Keyword: "home security"}

func TestLinkerGenerate(t *testing.T) {
	m := metrics.New(nil)
	l := NewLinker(linkingDefaults(), m)

	res, err := l.Generate(LinkRequest{Pillar: pillar, BulkInput: bulk})
	require.NoError(t, err)

	assert.Equal(t, "balanced", res.Map.Strategy)
	assert.Equal(t, 3, res.Map.LinksPerArticle)
	require.Len(t, res.Map.Entries, 4)
	require.Len(t, res.Rendered, 4)
	assert.Equal(t, 4, res.Stats.TotalArticles)
	assert.Equal(t, 12, res.Stats.TotalLinks)

	// Article 1 starts at offset 0 with budget 2: pillar, 2, 3
	assert.Equal(t,
		"See [home security](https://example.com/guide), [outdoor security cameras](https://example.com/2), and [smart door locks](https://example.com/3).",
		res.Rendered[0].Text)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.LinkRuns.WithLabelValues("balanced")))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.LinksRendered))
}

func TestLinkerOverrides(t *testing.T) {
	l := NewLinker(linkingDefaults(), nil)

	res, err := l.Generate(LinkRequest{
		Pillar:          pillar,
		BulkInput:       bulk,
		Strategy:        "authority",
		LinksPerArticle: 2,
		Format:          "html",
		Locale:          "ar",
		Templates:       []string{"{links}"},
	})
	require.NoError(t, err)
	assert.Equal(t, "authority", res.Map.Strategy)
	assert.Equal(t,
		`<p><a href="https://example.com/guide" target="_blank">home security</a> و<a href="https://example.com/2" target="_blank">outdoor security cameras</a></p>`,
		res.Rendered[0].Text)
}

func TestLinkerSeedIsReproducible(t *testing.T) {
	l := NewLinker(linkingDefaults(), nil)
	req := LinkRequest{Pillar: pillar, BulkInput: bulk, Strategy: "cluster", Seed: 42,
		Templates: []string{"A {links}", "B {links}", "C {links}"}}

	first, err := l.Generate(req)
	require.NoError(t, err)
	second, err := l.Generate(req)
	require.NoError(t, err)
	assert.Equal(t, first.Map, second.Map)
	assert.Equal(t, first.Rendered, second.Rendered)
}

func TestLinkerArticles(t *testing.T) {
	l := NewLinker(linkingDefaults(), nil)

	got := l.Articles(LinkRequest{
		BulkInput: "A | https://example.com/a | a",
		Manual: []parser.ManualEntry{
			{Title: "", URL: "https://example.com/x", Keyword: "x"},
			{Title: "B", URL: "https://example.com/b", Keyword: "b"},
		},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "manual_1", got[1].ID)

	explicit := []core.Article{{ID: "z", Title: "Z", URL: "https://example.com/z", Keyword: "z"}}
	assert.Equal(t, explicit, l.Articles(LinkRequest{Articles: explicit, BulkInput: "A | b | c"}))
}

func TestLinkerErrors(t *testing.T) {
	l := NewLinker(linkingDefaults(), nil)

	_, err := l.Generate(LinkRequest{Pillar: pillar})
	assert.True(t, core.IsValidation(err), "no articles: %v", err)

	_, err = l.Generate(LinkRequest{Pillar: pillar, BulkInput: bulk, Strategy: "random"})
	assert.True(t, core.IsConfiguration(err), "unknown strategy: %v", err)

	_, err = l.Generate(LinkRequest{Pillar: pillar, BulkInput: bulk, Templates: []string{"nothing"}})
	assert.True(t, core.IsConfiguration(err), "bad template: %v", err)

	_, err = l.Generate(LinkRequest{Pillar: pillar, BulkInput: bulk, Locale: "fr"})
	assert.True(t, core.IsConfiguration(err), "bad locale: %v", err)

	_, err = l.Clusters(LinkRequest{})
	assert.True(t, core.IsValidation(err))
}

func TestLinkerClusters(t *testing.T) {
	l := NewLinker(linkingDefaults(), nil)

	clusters, err := l.Clusters(LinkRequest{BulkInput: bulk})
	require.NoError(t, err)
	// indoor/outdoor security cameras share two words; locks and bells share only "door"
	require.Len(t, clusters, 3)
	assert.Len(t, clusters[0].Articles, 2)
}

func TestOpenStore(t *testing.T) {
	cfg := &config.Config{
		App:      config.App{DataDir: t.TempDir()},
		Database: config.Database{Driver: store.DriverSQLite},
	}
	st, err := OpenStore(cfg)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	_, err = st.CreateProject(context.Background(), "Cameras")
	assert.NoError(t, err)
}

func TestNewBatchExtractorUsesCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `<html><head><title>Security Cameras</title></head><body><p>security cameras for homes</p></body></html>`)
	}))
	defer srv.Close()

	st, err := store.NewStore(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	extractor := NewBatchExtractor(config.Fetch{Concurrency: 2, CacheTTL: "1h", Timeout: "5s"}, st, nil)
	req := fetch.Request{URLs: []string{srv.URL + "/cameras"}, Config: core.DefaultExtractorConfig()}

	for i := 0; i < 2; i++ {
		res, err := extractor.Run(context.Background(), req)
		require.NoError(t, err)
		require.Len(t, res.Results, 1)
		assert.True(t, res.Results[0].Success)
		assert.Equal(t, "Security Cameras", res.Results[0].Title)
	}
	assert.Equal(t, int32(1), hits.Load(), "second run should be served from the page cache")
}
