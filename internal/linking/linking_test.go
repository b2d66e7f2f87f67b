package linking

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seosuite/internal/core"
)

var testPillar = core.PillarPage{
	Title:   "CCTV Kuwait - complete guide",
	URL:     "https://example.com/cameras-kuwait",
	Keyword: "cctv kuwait",
}

func makeArticles(keywords ...string) []core.Article {
	articles := make([]core.Article, len(keywords))
	for i, kw := range keywords {
		id := fmt.Sprint(i + 1)
		articles[i] = core.Article{
			ID:      id,
			Title:   "Article " + id,
			URL:     "https://example.com/a" + id,
			Keyword: kw,
		}
	}
	return articles
}

func targetIDs(entry core.LinkEntry) []string {
	out := make([]string, len(entry.LinkedArticles))
	for i, t := range entry.LinkedArticles {
		out[i] = t.ID
	}
	return out
}

func assertInvariants(t *testing.T, articles []core.Article, m core.LinkingMap, linksPerArticle int) {
	t.Helper()
	require.Equal(t, len(articles), m.Len(), "one entry per input article")

	for i, entry := range m.Entries {
		assert.Equal(t, articles[i].ID, entry.Article.ID, "entries keep input order")
		require.NotEmpty(t, entry.LinkedArticles)
		assert.Equal(t, testPillar.Target(), entry.LinkedArticles[0], "pillar first")
		assert.LessOrEqual(t, len(entry.LinkedArticles), linksPerArticle, "budget respected")

		seen := map[string]bool{}
		for _, target := range entry.LinkedArticles {
			assert.NotEqual(t, entry.Article.ID, target.ID, "no self link")
			assert.Falsef(t, seen[target.ID], "duplicate target %s in entry %s", target.ID, entry.Article.ID)
			seen[target.ID] = true
		}
	}
}

func TestBalancedStrideScenario(t *testing.T) {
	articles := makeArticles("a", "b", "c", "d", "e", "f")
	engine := NewEngine(WithSeed(1))

	m, err := engine.Generate(Request{
		Articles:        articles,
		Pillar:          testPillar,
		Strategy:        StrategyBalanced,
		LinksPerArticle: 3,
	})
	require.NoError(t, err)
	assertInvariants(t, articles, m, 3)

	expected := map[string][]string{
		"1": {"pillar", "2", "3"},
		"2": {"pillar", "3", "4"},
		"3": {"pillar", "5", "6"},
		"4": {"pillar", "1", "2"},
		"5": {"pillar", "3", "4"},
		"6": {"pillar", "5", "1"},
	}
	for id, want := range expected {
		entry, ok := m.Get(id)
		require.True(t, ok)
		assert.Equalf(t, want, targetIDs(entry), "entry %s", id)
	}
	assert.Equal(t, "balanced", m.Strategy)
	assert.Equal(t, 3, m.LinksPerArticle)
}

func TestAuthorityCapIncludesPillar(t *testing.T) {
	articles := makeArticles("a", "b", "c", "d", "e", "f")
	engine := NewEngine()

	m, err := engine.Generate(Request{
		Articles:        articles,
		Pillar:          testPillar,
		Strategy:        StrategyAuthority,
		LinksPerArticle: 5,
	})
	require.NoError(t, err)
	assertInvariants(t, articles, m, 5)

	first, _ := m.Get("1")
	assert.Equal(t, []string{"pillar", "2", "3", "4", "5"}, targetIDs(first))

	fourth, _ := m.Get("4")
	assert.Equal(t, []string{"pillar", "1", "2", "3", "5"}, targetIDs(fourth))

	for _, entry := range m.Entries {
		assert.Len(t, entry.LinkedArticles, 5, "authority fills up to the full cap")
	}
}

func TestAuthorityFewerThanThreeArticles(t *testing.T) {
	articles := makeArticles("a", "b")
	m, err := NewEngine().Generate(Request{
		Articles:        articles,
		Pillar:          testPillar,
		Strategy:        StrategyAuthority,
		LinksPerArticle: 2,
	})
	require.NoError(t, err)
	assertInvariants(t, articles, m, 2)

	second, _ := m.Get("2")
	assert.Equal(t, []string{"pillar", "1"}, targetIDs(second))
}

func TestClusterStrategyPrefersPeers(t *testing.T) {
	articles := makeArticles(
		"security cameras kuwait",
		"door locks smart",
		"security cameras price",
		"smart door locks install",
		"security cameras wireless",
		"fire alarm systems",
	)

	m, err := NewEngine(WithSeed(42)).Generate(Request{
		Articles:        articles,
		Pillar:          testPillar,
		Strategy:        StrategyCluster,
		LinksPerArticle: 4,
	})
	require.NoError(t, err)
	assertInvariants(t, articles, m, 4)

	first, _ := m.Get("1")
	assert.Equal(t, []string{"pillar", "3", "5"}, targetIDs(first)[:3], "cluster peers come first in cluster order")
	assert.Len(t, first.LinkedArticles, 4)
	assert.NotContains(t, []string{"1", "3", "5"}, first.LinkedArticles[3].ID, "fill comes from outside the cluster")

	alarm, _ := m.Get("6")
	assert.Len(t, alarm.LinkedArticles, 4, "singleton cluster fills entirely from the rest")
}

func TestClusterStrategyReproducibleWithSeed(t *testing.T) {
	articles := makeArticles("alpha one", "beta two", "gamma three", "delta four", "epsilon five", "zeta six", "eta seven")
	req := Request{Articles: articles, Pillar: testPillar, Strategy: StrategyCluster, LinksPerArticle: 4}

	a, err := NewEngine(WithSeed(7)).Generate(req)
	require.NoError(t, err)
	b, err := NewEngine(WithRand(rand.New(rand.NewSource(7)))).Generate(req)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestInvariantsAcrossStrategies(t *testing.T) {
	words := []string{"cameras", "security", "kuwait", "locks", "door", "smart", "alarm", "fire", "price"}
	rng := rand.New(rand.NewSource(99))

	for _, strategy := range Strategies() {
		for n := 1; n <= 12; n++ {
			for links := 1; links <= n; links++ {
				keywords := make([]string, n)
				for i := range keywords {
					keywords[i] = fmt.Sprintf("%s %s %s", words[rng.Intn(len(words))], words[rng.Intn(len(words))], words[rng.Intn(len(words))])
				}
				articles := makeArticles(keywords...)

				t.Run(fmt.Sprintf("%s/n=%d/links=%d", strategy, n, links), func(t *testing.T) {
					m, err := NewEngine(WithSeed(int64(n*100 + links))).Generate(Request{
						Articles:        articles,
						Pillar:          testPillar,
						Strategy:        strategy,
						LinksPerArticle: links,
					})
					require.NoError(t, err)
					assertInvariants(t, articles, m, links)
				})
			}
		}
	}
}

func TestValidation(t *testing.T) {
	articles := makeArticles("a", "b", "c")

	tests := []struct {
		name          string
		req           Request
		validation    bool
		configuration bool
	}{
		{
			name:          "zero links per article",
			req:           Request{Articles: articles, Pillar: testPillar, Strategy: StrategyBalanced, LinksPerArticle: 0},
			configuration: true,
		},
		{
			name:          "unknown strategy",
			req:           Request{Articles: articles, Pillar: testPillar, Strategy: "random", LinksPerArticle: 2},
			configuration: true,
		},
		{
			name:       "missing pillar url",
			req:        Request{Articles: articles, Pillar: core.PillarPage{Title: "t", Keyword: "k"}, Strategy: StrategyBalanced, LinksPerArticle: 2},
			validation: true,
		},
		{
			name:       "blank pillar keyword",
			req:        Request{Articles: articles, Pillar: core.PillarPage{Title: "t", URL: "u", Keyword: "  "}, Strategy: StrategyBalanced, LinksPerArticle: 2},
			validation: true,
		},
		{
			name:       "no articles",
			req:        Request{Pillar: testPillar, Strategy: StrategyBalanced, LinksPerArticle: 2},
			validation: true,
		},
		{
			name:       "too few articles",
			req:        Request{Articles: articles, Pillar: testPillar, Strategy: StrategyBalanced, LinksPerArticle: 4},
			validation: true,
		},
		{
			name: "duplicate ids",
			req: Request{
				Articles:        []core.Article{{ID: "1"}, {ID: "1"}},
				Pillar:          testPillar,
				Strategy:        StrategyBalanced,
				LinksPerArticle: 2,
			},
			validation: true,
		},
		{
			name: "reserved pillar id",
			req: Request{
				Articles:        []core.Article{{ID: "pillar"}, {ID: "2"}},
				Pillar:          testPillar,
				Strategy:        StrategyBalanced,
				LinksPerArticle: 2,
			},
			validation: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewEngine().Generate(tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.validation, core.IsValidation(err), "validation: %v", err)
			assert.Equal(t, tt.configuration, core.IsConfiguration(err), "configuration: %v", err)
			assert.Zero(t, m.Len())
		})
	}
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy(" Authority ")
	require.NoError(t, err)
	assert.Equal(t, StrategyAuthority, s)

	s, err = ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyBalanced, s)

	_, err = ParseStrategy("nope")
	assert.True(t, core.IsConfiguration(err))
}
