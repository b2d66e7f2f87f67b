package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seosuite/internal/core"
)

func phrases(candidates []core.KeywordCandidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Keyword
	}
	return out
}

func extract(t *testing.T, content core.PageContent, mutate func(*core.ExtractorConfig)) []core.KeywordCandidate {
	t.Helper()
	cfg := core.DefaultExtractorConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	out, err := Extract(content, cfg)
	require.NoError(t, err)
	return out
}

func TestExtractWeightsTitleAndPhrases(t *testing.T) {
	out := extract(t, core.PageContent{Title: "Security Cameras"}, nil)

	require.Len(t, out, 5)
	assert.Equal(t, core.KeywordCandidate{Keyword: "security cameras", Frequency: 3, Score: 5.25}, out[0])
	assert.Equal(t, core.KeywordCandidate{Keyword: "security cameras security", Frequency: 2, Score: 5}, out[1])
	assert.Equal(t, core.KeywordCandidate{Keyword: "cameras security cameras", Frequency: 2, Score: 5}, out[2])
	assert.Equal(t, core.KeywordCandidate{Keyword: "cameras security", Frequency: 2, Score: 3.5}, out[3])
	assert.Equal(t, core.KeywordCandidate{Keyword: "security", Frequency: 3, Score: 3}, out[4])
}

func TestExtractArabicStopWords(t *testing.T) {
	content := core.PageContent{MainContent: "كاميرات مراقبة هذا كاميرات مراقبة"}

	out := extract(t, content, nil)
	assert.Equal(t, []string{
		"كاميرات مراقبة",
		"مراقبة هذا كاميرات",
		"كاميرات",
		"مراقبة",
	}, phrases(out))
	assert.Equal(t, 3.5, out[0].Score)

	withCommon := extract(t, content, func(c *core.ExtractorConfig) {
		c.ExcludeCommonWords = false
		c.MaxKeywordsPerURL = 20
	})
	assert.Contains(t, phrases(withCommon), "هذا")
	assert.Contains(t, phrases(withCommon), "كاميرات مراقبة هذا")
}

func TestExtractNumbers(t *testing.T) {
	content := core.PageContent{MainContent: "cameras 2024 cameras"}

	out := extract(t, content, nil)
	assert.Equal(t, []core.KeywordCandidate{{Keyword: "cameras", Frequency: 2, Score: 2}}, out,
		"digits removed and identical bigram discarded")

	out = extract(t, content, func(c *core.ExtractorConfig) { c.ExcludeNumbers = false })
	assert.Equal(t, []string{
		"cameras 2024 cameras",
		"cameras",
		"cameras 2024",
		"2024 cameras",
		"2024",
	}, phrases(out))
}

func TestExtractStripsEmailsAndLinks(t *testing.T) {
	content := core.PageContent{
		MainContent: "contact sales@example.com or visit https://example.com/cameras-page for cameras",
	}
	out := extract(t, content, func(c *core.ExtractorConfig) { c.MaxKeywordsPerURL = 20 })

	for _, p := range phrases(out) {
		assert.NotContains(t, p, "example")
		assert.NotContains(t, p, "sales")
		assert.NotContains(t, p, "page")
	}
	assert.Contains(t, phrases(out), "contact")
}

func TestExtractFilters(t *testing.T) {
	content := core.PageContent{
		Title:       "Wireless Cameras Kuwait",
		MainContent: "wireless cameras for the home, wi-fi cameras.",
	}

	t.Run("manual exclusions are case insensitive", func(t *testing.T) {
		out := extract(t, content, func(c *core.ExtractorConfig) {
			c.ManualExcludedWords = []string{" Cameras "}
			c.MaxKeywordsPerURL = 20
		})
		for _, p := range phrases(out) {
			assert.NotContains(t, p, "cameras")
		}
	})

	t.Run("minimum word length applies to every word", func(t *testing.T) {
		out := extract(t, content, func(c *core.ExtractorConfig) {
			c.MinKeywordLength = 7
			c.MaxKeywordsPerURL = 20
		})
		for _, p := range phrases(out) {
			assert.Contains(t, []string{"wireless", "cameras", "wireless cameras"}, p)
		}
	})

	t.Run("domain suffix tokens dropped", func(t *testing.T) {
		out := extract(t, core.PageContent{MainContent: "info info org org cameras cameras"}, nil)
		assert.NotContains(t, phrases(out), "info")
		assert.NotContains(t, phrases(out), "org")
	})

	t.Run("singleton words dropped on request", func(t *testing.T) {
		out := extract(t, core.PageContent{MainContent: "cameras cameras alarms"}, func(c *core.ExtractorConfig) {
			c.DropSingletonWords = true
		})
		assert.Equal(t, []string{"cameras cameras alarms", "cameras", "cameras alarms"}, phrases(out))
	})
}

func TestExtractIsDeterministic(t *testing.T) {
	content := core.PageContent{
		Title:           "Smart Door Locks",
		MetaDescription: "Install smart door locks at home",
		Headings:        []string{"Door locks price", "Smart locks installation"},
		MainContent:     "Smart door locks keep your home secure. Smart locks are easy to install.",
	}
	first := extract(t, content, nil)
	second := extract(t, content, nil)
	assert.Equal(t, first, second)
}

func TestExtractMonotonicScore(t *testing.T) {
	out := extract(t, core.PageContent{MainContent: "cameras cameras cameras alarms alarms"}, func(c *core.ExtractorConfig) {
		c.MaxKeywordsPerURL = 20
	})
	byWord := map[string]core.KeywordCandidate{}
	for _, c := range out {
		byWord[c.Keyword] = c
	}
	assert.Greater(t, byWord["cameras"].Score, byWord["alarms"].Score)
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].Score, out[i].Score)
	}
}

func TestExtractEmptyContent(t *testing.T) {
	assert.Empty(t, extract(t, core.PageContent{}, nil))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*core.ExtractorConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*core.ExtractorConfig) {}},
		{name: "max too low", mutate: func(c *core.ExtractorConfig) { c.MaxKeywordsPerURL = 0 }, wantErr: true},
		{name: "max too high", mutate: func(c *core.ExtractorConfig) { c.MaxKeywordsPerURL = 21 }, wantErr: true},
		{name: "min length too low", mutate: func(c *core.ExtractorConfig) { c.MinKeywordLength = 1 }, wantErr: true},
		{name: "min length too high", mutate: func(c *core.ExtractorConfig) { c.MinKeywordLength = 51 }, wantErr: true},
		{name: "unknown input type", mutate: func(c *core.ExtractorConfig) { c.InputType = "feed" }, wantErr: true},
		{name: "sitemap input", mutate: func(c *core.ExtractorConfig) { c.InputType = core.InputSitemap }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := core.DefaultExtractorConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(cfg)
			if tt.wantErr {
				assert.True(t, core.IsConfiguration(err), "expected configuration error, got %v", err)
				_, err = NewExtractor(cfg)
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFromURL(t *testing.T) {
	assert.Equal(t,
		[]core.KeywordCandidate{{Keyword: "best cctv cameras", Frequency: 1, Score: 1}},
		FromURL("https://example.com/best-cctv-cameras"))
	assert.Nil(t, FromURL("https://example.com/"))
	assert.Nil(t, FromURL("not a url"))
}
