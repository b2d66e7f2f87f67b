package keywords

import (
	"sort"
	"strings"
	"unicode/utf8"

	"seosuite/internal/core"
	"seosuite/internal/slug"
)

const (
	// phraseBoost is the score bonus for every word beyond the first.
	phraseBoost = 0.75

	MinKeywordsPerURL = 1
	MaxKeywordsPerURL = 20
	MinWordLength     = 2
	MaxWordLength     = 50
)

// ValidateConfig rejects extractor settings outside their supported ranges.
func ValidateConfig(cfg core.ExtractorConfig) error {
	switch cfg.InputType {
	case "", core.InputURLs, core.InputSitemap:
	default:
		return core.NewConfigurationError("keywords.input_type", "unknown input type %q (supported: urls, sitemap)", cfg.InputType)
	}
	if cfg.MaxKeywordsPerURL < MinKeywordsPerURL || cfg.MaxKeywordsPerURL > MaxKeywordsPerURL {
		return core.NewConfigurationError("keywords.max_per_url",
			"must be between %d and %d, got %d", MinKeywordsPerURL, MaxKeywordsPerURL, cfg.MaxKeywordsPerURL)
	}
	if cfg.MinKeywordLength < MinWordLength || cfg.MinKeywordLength > MaxWordLength {
		return core.NewConfigurationError("keywords.min_length",
			"must be between %d and %d, got %d", MinWordLength, MaxWordLength, cfg.MinKeywordLength)
	}
	return nil
}

// Extractor ranks keyword phrases found in page content.
type Extractor struct {
	config    core.ExtractorConfig
	stopWords map[string]bool
	excluded  map[string]bool
}

// NewExtractor validates cfg and prepares an extractor for it.
func NewExtractor(cfg core.ExtractorConfig) (*Extractor, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	excluded := make(map[string]bool, len(cfg.ManualExcludedWords))
	for _, w := range cfg.ManualExcludedWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			excluded[w] = true
		}
	}

	return &Extractor{
		config:    cfg,
		stopWords: StopWords(),
		excluded:  excluded,
	}, nil
}

// Config returns the configuration the extractor was built with.
func (e *Extractor) Config() core.ExtractorConfig {
	return e.config
}

// Extract returns the top scoring keywords and phrases in content, highest
// score first. Phrases with equal scores keep the order they were first seen.
func (e *Extractor) Extract(content core.PageContent) []core.KeywordCandidate {
	tokens := Tokenize(weightedText(content), e.config.ExcludeNumbers)

	var candidates []string
	candidates = append(candidates, tokens...)
	candidates = append(candidates, NGrams(tokens, 2)...)
	candidates = append(candidates, NGrams(tokens, 3)...)

	freq := make(map[string]int)
	var order []string
	for _, phrase := range candidates {
		if !e.keep(phrase) {
			continue
		}
		if freq[phrase] == 0 {
			order = append(order, phrase)
		}
		freq[phrase]++
	}

	ranked := make([]core.KeywordCandidate, 0, len(order))
	for _, phrase := range order {
		words := strings.Count(phrase, " ") + 1
		if e.config.DropSingletonWords && words == 1 && freq[phrase] == 1 {
			continue
		}
		ranked = append(ranked, core.KeywordCandidate{
			Keyword:   phrase,
			Frequency: freq[phrase],
			Score:     Score(freq[phrase], words),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > e.config.MaxKeywordsPerURL {
		ranked = ranked[:e.config.MaxKeywordsPerURL]
	}
	return ranked
}

// keep applies the length, exclusion, stop-word and domain-suffix filters to a phrase.
func (e *Extractor) keep(phrase string) bool {
	words := strings.Split(phrase, " ")

	for _, w := range words {
		if utf8.RuneCountInString(w) < e.config.MinKeywordLength {
			return false
		}
		if e.excluded[w] {
			return false
		}
	}

	if e.config.ExcludeCommonWords {
		if e.stopWords[words[0]] || e.stopWords[words[len(words)-1]] {
			return false
		}
	}

	return !tldRegex.MatchString(phrase)
}

// Score weighs a phrase's frequency by its length in words.
func Score(frequency, wordCount int) float64 {
	return float64(frequency) * (1 + phraseBoost*float64(wordCount-1))
}

// weightedText repeats the title three times and the meta description twice
// so that they outweigh body text.
func weightedText(c core.PageContent) string {
	parts := make([]string, 0, 6+len(c.Headings))
	for i := 0; i < 3; i++ {
		parts = append(parts, c.Title)
	}
	for i := 0; i < 2; i++ {
		parts = append(parts, c.MetaDescription)
	}
	parts = append(parts, c.Headings...)
	parts = append(parts, c.MainContent)
	return strings.Join(parts, " ")
}

// FromURL derives a single keyword from the last path segment of rawURL.
// It returns nil when the URL has no usable segment.
func FromURL(rawURL string) []core.KeywordCandidate {
	kw := slug.Keyword(rawURL)
	if kw == "" {
		return nil
	}
	return []core.KeywordCandidate{{Keyword: kw, Frequency: 1, Score: 1}}
}

// Extract is a convenience wrapper that builds an Extractor for a single call.
func Extract(content core.PageContent, cfg core.ExtractorConfig) ([]core.KeywordCandidate, error) {
	e, err := NewExtractor(cfg)
	if err != nil {
		return nil, err
	}
	return e.Extract(content), nil
}
