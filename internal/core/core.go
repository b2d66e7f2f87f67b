package core

import "time"

// PillarID is the identifier reported for the pillar page wherever a target ID is needed.
const PillarID = "pillar"

// Article is a single piece of content that takes part in internal linking.
type Article struct {
	ID      string `json:"id" yaml:"id"`           // Unique within one run ("1", "2", "manual_0", ...)
	Title   string `json:"title" yaml:"title"`     // Article title
	URL     string `json:"url" yaml:"url"`         // Canonical article URL
	Keyword string `json:"keyword" yaml:"keyword"` // Focus keyword, used as anchor text
}

// PillarPage is the hub page every article links to. It never links out itself.
type PillarPage struct {
	Title   string `json:"title" yaml:"title"`
	URL     string `json:"url" yaml:"url"`
	Keyword string `json:"keyword" yaml:"keyword"`
}

// Target is an entry in an article's outbound link list: either another article or the pillar page.
type Target struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	URL     string `json:"url" yaml:"url"`
	Keyword string `json:"keyword" yaml:"keyword"`
	Pillar  bool   `json:"pillar,omitempty" yaml:"pillar,omitempty"`
}

// TargetFromArticle converts an article into a link target.
func TargetFromArticle(a Article) Target {
	return Target{ID: a.ID, Title: a.Title, URL: a.URL, Keyword: a.Keyword}
}

// Target converts the pillar page into a link target.
func (p PillarPage) Target() Target {
	return Target{ID: PillarID, Title: p.Title, URL: p.URL, Keyword: p.Keyword, Pillar: true}
}

// LinkEntry holds the outbound links chosen for one article.
type LinkEntry struct {
	Article        Article  `json:"article" yaml:"article"`
	LinkedArticles []Target `json:"linked_articles" yaml:"linked_articles"`
}

// LinkingMap maps article IDs to their link entries. Entries keep input order.
type LinkingMap struct {
	Strategy        string      `json:"strategy" yaml:"strategy"`
	LinksPerArticle int         `json:"links_per_article" yaml:"links_per_article"`
	Entries         []LinkEntry `json:"entries" yaml:"entries"`
}

// Get returns the entry for the given article ID.
func (m LinkingMap) Get(id string) (LinkEntry, bool) {
	for _, e := range m.Entries {
		if e.Article.ID == id {
			return e, true
		}
	}
	return LinkEntry{}, false
}

// Len returns the number of entries in the map.
func (m LinkingMap) Len() int {
	return len(m.Entries)
}

// Cluster is a group of topically related articles. The first member is the seed.
type Cluster struct {
	Articles []Article `json:"articles" yaml:"articles"`
}

// Seed returns the article that started the cluster.
func (c Cluster) Seed() Article {
	if len(c.Articles) == 0 {
		return Article{}
	}
	return c.Articles[0]
}

// Contains reports whether the article with the given ID is a member of the cluster.
func (c Cluster) Contains(id string) bool {
	for _, a := range c.Articles {
		if a.ID == id {
			return true
		}
	}
	return false
}

// KeywordCandidate is a ranked keyword or phrase found in page content.
type KeywordCandidate struct {
	Keyword   string  `json:"keyword" yaml:"keyword"`
	Frequency int     `json:"frequency" yaml:"frequency"`
	Score     float64 `json:"score" yaml:"score"`
}

// InputType selects where keyword extraction gets its URLs from.
type InputType string

const (
	InputURLs    InputType = "urls"
	InputSitemap InputType = "sitemap"
)

// ExtractorConfig controls keyword extraction and scoring.
type ExtractorConfig struct {
	InputType           InputType `json:"input_type" yaml:"input_type" mapstructure:"input_type"`
	MaxKeywordsPerURL   int       `json:"max_keywords_per_url" yaml:"max_keywords_per_url" mapstructure:"max_per_url"`
	MinKeywordLength    int       `json:"min_keyword_length" yaml:"min_keyword_length" mapstructure:"min_length"`
	ExcludeNumbers      bool      `json:"exclude_numbers" yaml:"exclude_numbers" mapstructure:"exclude_numbers"`
	ExcludeCommonWords  bool      `json:"exclude_common_words" yaml:"exclude_common_words" mapstructure:"exclude_common_words"`
	ManualExcludedWords []string  `json:"manual_excluded_words" yaml:"manual_excluded_words" mapstructure:"excluded_words"`
	// DropSingletonWords removes single words seen only once before ranking.
	DropSingletonWords bool `json:"drop_singleton_words" yaml:"drop_singleton_words" mapstructure:"drop_singleton_words"`
}

// DefaultExtractorConfig returns the configuration used when nothing else is specified.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		InputType:          InputURLs,
		MaxKeywordsPerURL:  5,
		MinKeywordLength:   3,
		ExcludeNumbers:     true,
		ExcludeCommonWords: true,
	}
}

// PageContent is the text extracted from a fetched HTML page.
type PageContent struct {
	Title           string    `json:"title" yaml:"title"`
	MetaDescription string    `json:"meta_description" yaml:"meta_description"`
	Headings        []string  `json:"headings" yaml:"headings"`
	MainContent     string    `json:"main_content" yaml:"main_content"`
	FetchedAt       time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// URLResult is the outcome of keyword extraction for a single URL.
type URLResult struct {
	URL         string             `json:"url"`
	Success     bool               `json:"success"`
	Title       string             `json:"title,omitempty"`
	Keywords    []KeywordCandidate `json:"keywords"`
	Fallback    bool               `json:"fallback,omitempty"` // keywords came from the URL slug
	Error       string             `json:"error,omitempty"`
	ProcessedAt time.Time          `json:"processed_at"`
}

// BatchMetadata summarises an extraction batch.
type BatchMetadata struct {
	TotalURLs             int           `json:"total_urls"`
	SuccessfulExtractions int           `json:"successful_extractions"`
	FailedExtractions     int           `json:"failed_extractions"`
	Duration              time.Duration `json:"duration"`
}

// BatchResult is the outcome of a whole extraction run.
type BatchResult struct {
	Results  []URLResult   `json:"results"`
	Metadata BatchMetadata `json:"metadata"`
}
